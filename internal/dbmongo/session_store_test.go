package dbmongo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"skillnest/internal/common"
	"skillnest/internal/config"
)

const testSecret = "skillnest_secret"

func sessionConfig() config.SessionConfig {
	return config.SessionConfig{CookieName: "connect.sid", Secret: testSecret, Collection: "sessions"}
}

func requestWithSession(sid string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.AddCookie(&http.Cookie{Name: "connect.sid", Value: url.QueryEscape(SignCookie(sid, testSecret))})
	return r
}

func TestUnsignCookie(t *testing.T) {
	signed := SignCookie("abc123", testSecret)

	sid, ok := UnsignCookie(signed, testSecret)
	assert.True(t, ok)
	assert.Equal(t, "abc123", sid)

	tests := []struct {
		name  string
		value string
	}{
		{"wrong secret", SignCookie("abc123", "other")},
		{"unsigned", "abc123"},
		{"no mac", "s:abc123"},
		{"tampered id", "s:abd123" + signed[len("s:abc123"):]},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := UnsignCookie(tt.value, testSecret)
			assert.False(t, ok)
		})
	}
}

func TestSessionStore_Authenticate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := func(mt *mtest.T) string { return mt.DB.Name() + ".sessions" }
	future := time.Now().Add(time.Hour)
	userID := primitive.NewObjectID()

	mt.Run("json session", func(mt *mtest.T) {
		store := NewSessionStore(mt.DB, sessionConfig())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "sid-1"},
			{Key: "expires", Value: future},
			{Key: "session", Value: `{"cookie":{},"userId":"` + userID.Hex() + `","role":"client"}`},
		}))

		id, err := store.Authenticate(requestWithSession("sid-1"))
		require.NoError(mt, err)
		assert.Equal(mt, userID.Hex(), id.UserID)
		assert.Equal(mt, "client", id.Role)
	})

	mt.Run("embedded session with object id", func(mt *mtest.T) {
		store := NewSessionStore(mt.DB, sessionConfig())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "sid-2"},
			{Key: "expires", Value: future},
			{Key: "session", Value: bson.D{{Key: "userId", Value: userID}, {Key: "role", Value: "freelancer"}}},
		}))

		id, err := store.Authenticate(requestWithSession("sid-2"))
		require.NoError(mt, err)
		assert.Equal(mt, userID.Hex(), id.UserID)
		assert.Equal(mt, "freelancer", id.Role)
	})

	mt.Run("expired", func(mt *mtest.T) {
		store := NewSessionStore(mt.DB, sessionConfig())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "sid-3"},
			{Key: "expires", Value: time.Now().Add(-time.Minute)},
			{Key: "session", Value: `{"userId":"` + userID.Hex() + `"}`},
		}))

		_, err := store.Authenticate(requestWithSession("sid-3"))
		assert.ErrorIs(mt, err, common.ErrUnauthenticated)
	})

	mt.Run("logged out session", func(mt *mtest.T) {
		store := NewSessionStore(mt.DB, sessionConfig())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "sid-4"},
			{Key: "expires", Value: future},
			{Key: "session", Value: `{"cookie":{}}`},
		}))

		_, err := store.Authenticate(requestWithSession("sid-4"))
		assert.ErrorIs(mt, err, common.ErrUnauthenticated)
	})

	mt.Run("unknown session", func(mt *mtest.T) {
		store := NewSessionStore(mt.DB, sessionConfig())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))

		_, err := store.Authenticate(requestWithSession("missing"))
		assert.ErrorIs(mt, err, common.ErrUnauthenticated)
	})

	mt.Run("no cookie", func(mt *mtest.T) {
		store := NewSessionStore(mt.DB, sessionConfig())

		_, err := store.Authenticate(httptest.NewRequest(http.MethodGet, "/ws", nil))
		assert.ErrorIs(mt, err, common.ErrUnauthenticated)
	})

	mt.Run("bad signature", func(mt *mtest.T) {
		store := NewSessionStore(mt.DB, sessionConfig())
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		r.AddCookie(&http.Cookie{Name: "connect.sid", Value: url.QueryEscape(SignCookie("sid-5", "wrong"))})

		_, err := store.Authenticate(r)
		assert.ErrorIs(mt, err, common.ErrUnauthenticated)
	})

	mt.Run("store error", func(mt *mtest.T) {
		store := NewSessionStore(mt.DB, sessionConfig())
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "boom"}))

		_, err := store.Lookup(context.Background(), "sid-6")
		assert.Error(mt, err)
		assert.NotErrorIs(mt, err, common.ErrUnauthenticated)
	})
}
