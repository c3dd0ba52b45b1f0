package handler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"skillnest/internal/config"
)

// Client is one live websocket connection. A user may hold several.
type Client struct {
	ConnID string
	UserID string

	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	// guarded by Hub.mu
	room       string
	registered bool

	closeOnce sync.Once
}

func NewClient(connID, userID string, conn *websocket.Conn, sendQueueSize int) *Client {
	if sendQueueSize <= 0 {
		sendQueueSize = 1
	}
	return &Client{
		ConnID: connID,
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
}

// Close tears down the transport. The read loop then exits and the gateway
// unregisters the client. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

// Done is closed once Close has been called.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// readPump reads frames until the connection fails and hands each one to
// dispatch in arrival order.
func (c *Client) readPump(ctx context.Context, cfg config.ChatConfig, log *slog.Logger, dispatch func(context.Context, *Client, []byte)) {
	defer c.Close()

	if cfg.MaxFrameBytes > 0 {
		c.conn.SetReadLimit(cfg.MaxFrameBytes)
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})

	for {
		msgType, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) &&
				!errors.Is(err, websocket.ErrReadLimit) {
				log.Debug("websocket read ended", "conn_id", c.ConnID, "user_id", c.UserID, "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		dispatch(ctx, c, raw)
	}
}

// writePump is the only writer on the connection.
func (c *Client) writePump(cfg config.ChatConfig, log *slog.Logger) {
	ticker := time.NewTicker(cfg.PongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Debug("websocket write failed", "conn_id", c.ConnID, "user_id", c.UserID, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
