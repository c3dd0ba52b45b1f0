package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"skillnest/internal/common"
)

type EventName string

// Inbound events.
const (
	EventJoinRoom    EventName = "joinRoom"
	EventChatMessage EventName = "chatMessage"
	EventMarkRead    EventName = "markRead"
	EventPresence    EventName = "presence"
	EventTyping      EventName = "typing"
)

// Outbound events. chatMessage and typing are shared with the inbound set.
const (
	EventRecentMessages EventName = "recentMessages"
	EventUnreadUpdate   EventName = "unreadUpdate"
	EventMessageRead    EventName = "messageRead"
	EventPresenceUpdate EventName = "presenceUpdate"
	EventNotification   EventName = "notification"
)

// Frame is the envelope for every message on the socket in both directions.
type Frame struct {
	Event EventName       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// EncodeFrame marshals data under the event name.
func EncodeFrame(event EventName, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}

// Request is one decoded, validated inbound event.
type Request interface {
	Event() EventName
	// Conversation is the requested conversation id, "" when omitted.
	Conversation() string
}

type JoinRoomRequest struct {
	ConversationID string `json:"conversationId" validate:"omitempty,mongodb"`
	JobID          string `json:"jobId,omitempty" validate:"-"`
}

func (r *JoinRoomRequest) Event() EventName     { return EventJoinRoom }
func (r *JoinRoomRequest) Conversation() string { return r.ConversationID }
func (r *JoinRoomRequest) normalize() {
	r.ConversationID = pick(r.ConversationID, r.JobID)
}

type ChatMessageRequest struct {
	ConversationID string `json:"conversationId" validate:"omitempty,mongodb"`
	JobID          string `json:"jobId,omitempty" validate:"-"`
	Body           string `json:"body" validate:"required"`
	Message        string `json:"message,omitempty" validate:"-"`
}

func (r *ChatMessageRequest) Event() EventName     { return EventChatMessage }
func (r *ChatMessageRequest) Conversation() string { return r.ConversationID }
func (r *ChatMessageRequest) normalize() {
	r.ConversationID = pick(r.ConversationID, r.JobID)
	r.Body = strings.TrimSpace(pick(r.Body, r.Message))
}

type MarkReadRequest struct {
	ConversationID string `json:"conversationId" validate:"omitempty,mongodb"`
	JobID          string `json:"jobId,omitempty" validate:"-"`
}

func (r *MarkReadRequest) Event() EventName     { return EventMarkRead }
func (r *MarkReadRequest) Conversation() string { return r.ConversationID }
func (r *MarkReadRequest) normalize() {
	r.ConversationID = pick(r.ConversationID, r.JobID)
}

type PresenceRequest struct{}

func (r *PresenceRequest) Event() EventName     { return EventPresence }
func (r *PresenceRequest) Conversation() string { return "" }
func (r *PresenceRequest) normalize()           {}

type TypingRequest struct {
	ConversationID string `json:"conversationId" validate:"omitempty,mongodb"`
	JobID          string `json:"jobId,omitempty" validate:"-"`
}

func (r *TypingRequest) Event() EventName     { return EventTyping }
func (r *TypingRequest) Conversation() string { return r.ConversationID }
func (r *TypingRequest) normalize() {
	r.ConversationID = pick(r.ConversationID, r.JobID)
}

type normalizer interface {
	Request
	normalize()
}

// DecodeRequest parses an inbound frame into its typed request. Unknown
// events, bad JSON and failed validation all return an error.
func DecodeRequest(raw []byte) (Request, error) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	var req normalizer
	switch frame.Event {
	case EventJoinRoom:
		req = &JoinRoomRequest{}
	case EventChatMessage:
		req = &ChatMessageRequest{}
	case EventMarkRead:
		req = &MarkReadRequest{}
	case EventPresence:
		req = &PresenceRequest{}
	case EventTyping:
		req = &TypingRequest{}
	default:
		return nil, fmt.Errorf("%q: %w", frame.Event, common.ErrUnknownEvent)
	}

	if len(frame.Data) > 0 && string(frame.Data) != "null" {
		if err := json.Unmarshal(frame.Data, req); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", frame.Event, err)
		}
	}
	req.normalize()
	if err := common.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", frame.Event, err)
	}
	return req, nil
}

func pick(primary, alias string) string {
	primary = strings.TrimSpace(primary)
	if primary != "" {
		return primary
	}
	return strings.TrimSpace(alias)
}

type UnreadUpdate struct {
	ConversationID string    `json:"conversationId"`
	Receiver       string    `json:"receiver"`
	MessageID      string    `json:"messageId"`
	CreatedAt      time.Time `json:"createdAt"`
}

type MessageRead struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
}

type PresenceUpdate struct {
	UserID string `json:"userId"`
	Online bool   `json:"online"`
}

type Typing struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
}
