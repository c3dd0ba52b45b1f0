package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Participants are the users of record for one job conversation.
type Participants struct {
	JobID  primitive.ObjectID
	Client primitive.ObjectID
	// Hired holds contracted freelancers and hired/accepted proposals.
	Hired []primitive.ObjectID
	// Applicants holds freelancers with any other proposal on the job.
	Applicants []primitive.ObjectID
}

func (p *Participants) Includes(userID primitive.ObjectID) bool {
	if userID.IsZero() {
		return false
	}
	if p.Client == userID {
		return true
	}
	for _, id := range p.Hired {
		if id == userID {
			return true
		}
	}
	for _, id := range p.Applicants {
		if id == userID {
			return true
		}
	}
	return false
}

// Counterpart picks the receiver for a message from sender. The client talks
// to the hired freelancer (or the only applicant); anyone else talks to the
// client. ok is false when nobody fits and the caller should fall back.
func (p *Participants) Counterpart(sender primitive.ObjectID) (primitive.ObjectID, bool) {
	if sender != p.Client {
		if p.Client.IsZero() {
			return primitive.NilObjectID, false
		}
		return p.Client, true
	}
	if len(p.Hired) > 0 {
		return p.Hired[0], true
	}
	if len(p.Applicants) == 1 {
		return p.Applicants[0], true
	}
	return primitive.NilObjectID, false
}
