package dbmongo

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"skillnest/internal/common"
	"skillnest/internal/config"
)

const signedPrefix = "s:"

// SessionStore resolves the web app's signed session cookie against the
// sessions collection that the login flow writes.
type SessionStore struct {
	sessions   *mongo.Collection
	cookieName string
	secret     string
	now        func() time.Time
}

func NewSessionStore(db *mongo.Database, cfg config.SessionConfig) *SessionStore {
	collection := cfg.Collection
	if collection == "" {
		collection = "sessions"
	}
	return &SessionStore{
		sessions:   db.Collection(collection),
		cookieName: cfg.CookieName,
		secret:     cfg.Secret,
		now:        time.Now,
	}
}

type sessionDocument struct {
	ID      string        `bson:"_id"`
	Expires time.Time     `bson:"expires,omitempty"`
	Session bson.RawValue `bson:"session"`
}

type sessionData struct {
	UserID interface{} `json:"userId" bson:"userId"`
	Role   string      `json:"role" bson:"role"`
}

func (s *SessionStore) Authenticate(r *http.Request) (*common.Identity, error) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		return nil, fmt.Errorf("no session cookie: %w", common.ErrUnauthenticated)
	}
	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil, fmt.Errorf("malformed session cookie: %w", common.ErrUnauthenticated)
	}
	sid, ok := UnsignCookie(raw, s.secret)
	if !ok {
		return nil, fmt.Errorf("bad session signature: %w", common.ErrUnauthenticated)
	}
	return s.Lookup(r.Context(), sid)
}

// Lookup loads the identity stored under session id sid.
func (s *SessionStore) Lookup(ctx context.Context, sid string) (*common.Identity, error) {
	var doc sessionDocument
	opts := options.FindOne().SetProjection(bson.M{"expires": 1, "session": 1})
	err := s.sessions.FindOne(ctx, bson.M{"_id": sid}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("session not found: %w", common.ErrUnauthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !doc.Expires.IsZero() && !doc.Expires.After(s.now()) {
		return nil, fmt.Errorf("session expired: %w", common.ErrUnauthenticated)
	}

	data, err := decodeSession(doc.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	userID := userIDString(data.UserID)
	if userID == "" {
		return nil, fmt.Errorf("session has no user: %w", common.ErrUnauthenticated)
	}
	return &common.Identity{UserID: userID, Role: data.Role}, nil
}

// The session field is a JSON string by default, or an embedded document
// when the store is configured with stringify off.
func decodeSession(v bson.RawValue) (*sessionData, error) {
	var data sessionData
	switch v.Type {
	case bson.TypeString:
		if err := json.Unmarshal([]byte(v.StringValue()), &data); err != nil {
			return nil, err
		}
	case bson.TypeEmbeddedDocument:
		if err := v.Unmarshal(&data); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unexpected session type %s", v.Type)
	}
	return &data, nil
}

func userIDString(v interface{}) string {
	switch id := v.(type) {
	case string:
		return id
	case primitive.ObjectID:
		if id.IsZero() {
			return ""
		}
		return id.Hex()
	default:
		return ""
	}
}

// SignCookie produces the "s:<sid>.<mac>" form the web app sets.
func SignCookie(sid, secret string) string {
	return signedPrefix + sid + "." + cookieMAC(sid, secret)
}

// UnsignCookie verifies a signed cookie value and returns the session id.
func UnsignCookie(value, secret string) (string, bool) {
	if !strings.HasPrefix(value, signedPrefix) {
		return "", false
	}
	value = strings.TrimPrefix(value, signedPrefix)
	dot := strings.LastIndexByte(value, '.')
	if dot <= 0 {
		return "", false
	}
	sid, mac := value[:dot], value[dot+1:]
	if !hmac.Equal([]byte(mac), []byte(cookieMAC(sid, secret))) {
		return "", false
	}
	return sid, true
}

func cookieMAC(sid, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(sid))
	return base64.RawStdEncoding.EncodeToString(h.Sum(nil))
}
