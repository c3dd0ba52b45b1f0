package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"skillnest/internal/common"
	"skillnest/internal/config"
	"skillnest/internal/presence"
)

// Gateway upgrades authenticated requests to websocket connections and
// keeps the hub and the presence tracker in step with them.
type Gateway struct {
	auth     common.Authenticator
	hub      *Hub
	tracker  *presence.Tracker
	router   *Router
	upgrader websocket.Upgrader
	cfg      config.ChatConfig
	log      *slog.Logger
}

func NewGateway(
	auth common.Authenticator,
	hub *Hub,
	tracker *presence.Tracker,
	router *Router,
	cfg *config.Config,
	log *slog.Logger,
) *Gateway {
	allowed := make(map[string]bool, len(cfg.Server.AllowedOrigins))
	for _, o := range cfg.Server.AllowedOrigins {
		allowed[o] = true
	}

	return &Gateway{
		auth:    auth,
		hub:     hub,
		tracker: tracker,
		router:  router,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
		cfg: cfg.Chat,
		log: log.With("component", "gateway"),
	}
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := g.auth.Authenticate(r)
	if err != nil {
		g.log.Debug("websocket handshake rejected", "remote", r.RemoteAddr, "error", err)
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("websocket upgrade failed", "user_id", id.UserID, "error", err)
		return
	}

	c := NewClient(uuid.NewString(), id.UserID, conn, g.cfg.SendBuffer)
	g.hub.Register(c)
	count, _ := g.tracker.Connect(c.UserID)
	g.log.Info("connection opened", "conn_id", c.ConnID, "user_id", c.UserID, "connections", count)

	ctx := common.WithIdentity(context.WithoutCancel(r.Context()), id)
	go c.writePump(g.cfg, g.log)
	c.readPump(ctx, g.cfg, g.log, g.router.Dispatch)

	g.hub.Unregister(c)
	count, _ = g.tracker.Disconnect(c.UserID)
	g.log.Info("connection closed", "conn_id", c.ConnID, "user_id", c.UserID, "connections", count)
}
