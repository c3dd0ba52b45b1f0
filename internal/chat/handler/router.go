package handler

import (
	"context"
	"log/slog"

	"skillnest/internal/chat/models"
	"skillnest/internal/chat/service"
	"skillnest/internal/config"
)

// Router handles the inbound events of authenticated connections. Failures
// are logged and the event is dropped; nothing is reported back on the socket.
type Router struct {
	hub  *Hub
	chat service.ChatService
	cfg  config.ChatConfig
	log  *slog.Logger
}

func NewRouter(hub *Hub, chat service.ChatService, cfg config.ChatConfig, log *slog.Logger) *Router {
	return &Router{
		hub:  hub,
		chat: chat,
		cfg:  cfg,
		log:  log.With("component", "room_router"),
	}
}

// Dispatch decodes one frame and runs it to completion.
func (rt *Router) Dispatch(ctx context.Context, c *Client, raw []byte) {
	req, err := models.DecodeRequest(raw)
	if err != nil {
		rt.log.Warn("dropping malformed event", "conn_id", c.ConnID, "user_id", c.UserID, "error", err)
		return
	}

	if rt.cfg.StoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rt.cfg.StoreTimeout)
		defer cancel()
	}

	switch r := req.(type) {
	case *models.JoinRoomRequest:
		rt.joinRoom(ctx, c, r)
	case *models.ChatMessageRequest:
		rt.chatMessage(ctx, c, r)
	case *models.MarkReadRequest:
		rt.markRead(ctx, c, r)
	case *models.PresenceRequest:
		rt.presence(c)
	case *models.TypingRequest:
		rt.typing(c, r)
	}
}

// conversation falls back to the connection's active room.
func (rt *Router) conversation(c *Client, req models.Request) (string, bool) {
	if id := req.Conversation(); id != "" {
		return id, true
	}
	if room := rt.hub.Room(c); room != "" {
		return room, true
	}
	rt.log.Warn("dropping event without conversation", "conn_id", c.ConnID, "user_id", c.UserID, "event", req.Event())
	return "", false
}

func (rt *Router) joinRoom(ctx context.Context, c *Client, req *models.JoinRoomRequest) {
	convID, ok := rt.conversation(c, req)
	if !ok {
		return
	}
	if err := rt.chat.Authorize(ctx, convID, c.UserID); err != nil {
		rt.drop(c, req, convID, err)
		return
	}

	// Join before loading history so nothing sent meanwhile is missed.
	if prev := rt.hub.Join(c, convID); prev != convID {
		rt.log.Debug("joined room", "conn_id", c.ConnID, "user_id", c.UserID, "conversation_id", convID, "previous", prev)
	}

	history, err := rt.chat.History(ctx, convID, c.UserID)
	if err != nil {
		rt.drop(c, req, convID, err)
		return
	}
	rt.sendTo(c, models.EventRecentMessages, history)
}

func (rt *Router) chatMessage(ctx context.Context, c *Client, req *models.ChatMessageRequest) {
	convID, ok := rt.conversation(c, req)
	if !ok {
		return
	}
	delivery, err := rt.chat.SendMessage(ctx, models.Draft{
		ConversationID: convID,
		SenderID:       c.UserID,
		Body:           req.Body,
	})
	if err != nil {
		rt.drop(c, req, convID, err)
		return
	}
	rt.PublishMessage(delivery)
}

// PublishMessage fans a persisted message out to its room and tells the
// receiver about new unread content.
func (rt *Router) PublishMessage(d *models.Delivery) {
	convID := d.Message.JobID.Hex()
	if frame, ok := rt.encode(models.EventChatMessage, d.View); ok {
		rt.hub.BroadcastRoom(convID, frame, nil)
	}

	if d.Message.Receiver == d.Message.Sender {
		return
	}
	update := models.UnreadUpdate{
		ConversationID: convID,
		Receiver:       d.Message.Receiver.Hex(),
		MessageID:      d.Message.ID.Hex(),
		CreatedAt:      d.Message.CreatedAt,
	}
	if frame, ok := rt.encode(models.EventUnreadUpdate, update); ok {
		rt.hub.SendToUser(update.Receiver, frame)
	}
}

func (rt *Router) markRead(ctx context.Context, c *Client, req *models.MarkReadRequest) {
	convID, ok := rt.conversation(c, req)
	if !ok {
		return
	}
	n, err := rt.chat.MarkRead(ctx, convID, c.UserID)
	if err != nil {
		rt.drop(c, req, convID, err)
		return
	}
	rt.log.Debug("messages marked read", "conn_id", c.ConnID, "user_id", c.UserID, "conversation_id", convID, "count", n)

	if frame, ok := rt.encode(models.EventMessageRead, models.MessageRead{ConversationID: convID, UserID: c.UserID}); ok {
		rt.hub.BroadcastRoom(convID, frame, nil)
	}
}

func (rt *Router) presence(c *Client) {
	if frame, ok := rt.encode(models.EventPresenceUpdate, models.PresenceUpdate{UserID: c.UserID, Online: true}); ok {
		rt.hub.Broadcast(frame)
	}
}

// typing is only relayed inside the room the connection has joined.
func (rt *Router) typing(c *Client, req *models.TypingRequest) {
	convID, ok := rt.conversation(c, req)
	if !ok {
		return
	}
	if rt.hub.Room(c) != convID {
		rt.log.Debug("dropping typing outside joined room", "conn_id", c.ConnID, "user_id", c.UserID, "conversation_id", convID)
		return
	}
	if frame, ok := rt.encode(models.EventTyping, models.Typing{ConversationID: convID, UserID: c.UserID}); ok {
		rt.hub.BroadcastRoom(convID, frame, c)
	}
}

func (rt *Router) sendTo(c *Client, event models.EventName, data interface{}) {
	if frame, ok := rt.encode(event, data); ok {
		rt.hub.Send(c, frame)
	}
}

func (rt *Router) encode(event models.EventName, data interface{}) ([]byte, bool) {
	frame, err := models.EncodeFrame(event, data)
	if err != nil {
		rt.log.Error("encode frame", "event", event, "error", err)
		return nil, false
	}
	return frame, true
}

func (rt *Router) drop(c *Client, req models.Request, convID string, err error) {
	rt.log.Warn("dropping event",
		"conn_id", c.ConnID,
		"user_id", c.UserID,
		"event", req.Event(),
		"conversation_id", convID,
		"error", err,
	)
}
