package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillnest/internal/common"
)

const jobHex = "64b7f0c2a1b2c3d4e5f60718"

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		expectErr bool
		check     func(t *testing.T, req Request)
	}{
		{
			name: "join room",
			raw:  `{"event":"joinRoom","data":{"conversationId":"` + jobHex + `"}}`,
			check: func(t *testing.T, req Request) {
				r, ok := req.(*JoinRoomRequest)
				require.True(t, ok)
				assert.Equal(t, jobHex, r.Conversation())
			},
		},
		{
			name: "join room with legacy jobId",
			raw:  `{"event":"joinRoom","data":{"jobId":"` + jobHex + `"}}`,
			check: func(t *testing.T, req Request) {
				assert.Equal(t, jobHex, req.Conversation())
			},
		},
		{
			name: "join room without id falls back later",
			raw:  `{"event":"joinRoom","data":{}}`,
			check: func(t *testing.T, req Request) {
				assert.Equal(t, "", req.Conversation())
			},
		},
		{
			name: "chat message with body",
			raw:  `{"event":"chatMessage","data":{"conversationId":"` + jobHex + `","body":"  hello  "}}`,
			check: func(t *testing.T, req Request) {
				r := req.(*ChatMessageRequest)
				assert.Equal(t, "hello", r.Body)
				assert.Equal(t, EventChatMessage, r.Event())
			},
		},
		{
			name: "chat message with legacy message field",
			raw:  `{"event":"chatMessage","data":{"jobId":"` + jobHex + `","message":"hi"}}`,
			check: func(t *testing.T, req Request) {
				r := req.(*ChatMessageRequest)
				assert.Equal(t, "hi", r.Body)
				assert.Equal(t, jobHex, r.ConversationID)
			},
		},
		{
			name:      "chat message missing body",
			raw:       `{"event":"chatMessage","data":{"conversationId":"` + jobHex + `"}}`,
			expectErr: true,
		},
		{
			name:      "chat message whitespace body",
			raw:       `{"event":"chatMessage","data":{"conversationId":"` + jobHex + `","body":"   "}}`,
			expectErr: true,
		},
		{
			name:      "malformed conversation id",
			raw:       `{"event":"markRead","data":{"conversationId":"not-an-id"}}`,
			expectErr: true,
		},
		{
			name: "presence without data",
			raw:  `{"event":"presence"}`,
			check: func(t *testing.T, req Request) {
				_, ok := req.(*PresenceRequest)
				assert.True(t, ok)
			},
		},
		{
			name: "typing",
			raw:  `{"event":"typing","data":{"conversationId":"` + jobHex + `"}}`,
			check: func(t *testing.T, req Request) {
				assert.Equal(t, EventTyping, req.Event())
			},
		},
		{
			name:      "unknown event",
			raw:       `{"event":"dropTables","data":{}}`,
			expectErr: true,
		},
		{
			name:      "payload of wrong shape",
			raw:       `{"event":"joinRoom","data":"` + jobHex + `"}`,
			expectErr: true,
		},
		{
			name:      "not json",
			raw:       `joinRoom`,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := DecodeRequest([]byte(tt.raw))
			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, req)
				return
			}
			require.NoError(t, err)
			tt.check(t, req)
		})
	}
}

func TestDecodeRequest_UnknownEventSentinel(t *testing.T) {
	_, err := DecodeRequest([]byte(`{"event":"nope"}`))
	assert.ErrorIs(t, err, common.ErrUnknownEvent)
}

func TestEncodeFrame(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	raw, err := EncodeFrame(EventUnreadUpdate, UnreadUpdate{
		ConversationID: jobHex,
		Receiver:       "r",
		MessageID:      "m",
		CreatedAt:      at,
	})
	require.NoError(t, err)

	var frame Frame
	require.NoError(t, json.Unmarshal(raw, &frame))
	assert.Equal(t, EventUnreadUpdate, frame.Event)

	var payload UnreadUpdate
	require.NoError(t, json.Unmarshal(frame.Data, &payload))
	assert.Equal(t, jobHex, payload.ConversationID)
	assert.True(t, at.Equal(payload.CreatedAt))
}
