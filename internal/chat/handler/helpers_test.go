package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"skillnest/internal/chat/models"
	"skillnest/internal/common"
)

var discard = slog.New(slog.DiscardHandler)

func newTestClient(h *Hub, connID, userID string) *Client {
	c := NewClient(connID, userID, nil, 16)
	h.Register(c)
	return c
}

func nextFrame(t *testing.T, c *Client) models.Frame {
	t.Helper()
	select {
	case raw, ok := <-c.send:
		require.True(t, ok, "send queue closed")
		var f models.Frame
		require.NoError(t, json.Unmarshal(raw, &f))
		return f
	case <-time.After(time.Second):
		t.Fatalf("no frame for %s", c.ConnID)
		return models.Frame{}
	}
}

func noFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw := <-c.send:
		t.Fatalf("unexpected frame for %s: %s", c.ConnID, raw)
	default:
	}
}

func decodeData(t *testing.T, f models.Frame, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(f.Data, v))
}

type authFunc func(r *http.Request) (*common.Identity, error)

func (f authFunc) Authenticate(r *http.Request) (*common.Identity, error) { return f(r) }

// headerAuth trusts the X-User header.
var headerAuth = authFunc(func(r *http.Request) (*common.Identity, error) {
	if u := r.Header.Get("X-User"); u != "" {
		return &common.Identity{UserID: u}, nil
	}
	return nil, common.ErrUnauthenticated
})
