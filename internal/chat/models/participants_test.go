package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParticipants_Includes(t *testing.T) {
	client := primitive.NewObjectID()
	hired := primitive.NewObjectID()
	applicant := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	p := &Participants{Client: client, Hired: []primitive.ObjectID{hired}, Applicants: []primitive.ObjectID{applicant}}

	assert.True(t, p.Includes(client))
	assert.True(t, p.Includes(hired))
	assert.True(t, p.Includes(applicant))
	assert.False(t, p.Includes(stranger))
	assert.False(t, p.Includes(primitive.NilObjectID))
}

func TestParticipants_Counterpart(t *testing.T) {
	client := primitive.NewObjectID()
	hired := primitive.NewObjectID()
	a1 := primitive.NewObjectID()
	a2 := primitive.NewObjectID()

	tests := []struct {
		name     string
		p        Participants
		sender   primitive.ObjectID
		expected primitive.ObjectID
		ok       bool
	}{
		{"freelancer writes to client", Participants{Client: client, Hired: []primitive.ObjectID{hired}}, hired, client, true},
		{"applicant writes to client", Participants{Client: client, Applicants: []primitive.ObjectID{a1}}, a1, client, true},
		{"client writes to hired freelancer", Participants{Client: client, Hired: []primitive.ObjectID{hired}, Applicants: []primitive.ObjectID{a1}}, client, hired, true},
		{"client writes to only applicant", Participants{Client: client, Applicants: []primitive.ObjectID{a1}}, client, a1, true},
		{"client with many applicants is ambiguous", Participants{Client: client, Applicants: []primitive.ObjectID{a1, a2}}, client, primitive.NilObjectID, false},
		{"job without client", Participants{Hired: []primitive.ObjectID{hired}}, hired, primitive.NilObjectID, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.p.Counterpart(tt.sender)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}
