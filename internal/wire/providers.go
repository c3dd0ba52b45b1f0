package wire

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"skillnest/internal/chat/handler"
	"skillnest/internal/chat/repository"
	"skillnest/internal/chat/service"
	"skillnest/internal/common"
	"skillnest/internal/config"
	"skillnest/internal/dbmongo"
	"skillnest/internal/dbmysql"
	"skillnest/internal/health"
	"skillnest/internal/media"
	"skillnest/internal/notif"
	"skillnest/internal/presence"
	"skillnest/internal/user"
)

const (
	tokenTTL       = 24 * time.Hour
	healthInterval = 15 * time.Second
	closeTimeout   = 5 * time.Second
)

// ChatApplication is everything cmd/chat-svc serves.
type ChatApplication struct {
	Config        *config.Config
	Logger        *slog.Logger
	Mongo         *dbmongo.MongoClient
	Chats         repository.ChatRepository
	Auth          common.Authenticator
	Hub           *handler.Hub
	Gateway       *handler.Gateway
	ChatHTTP      *handler.HTTPHandler
	Presence      *presence.Handler
	Users         *user.Handler
	Media         *media.HTTPServer
	Notifications *notif.NotificationHandler
	Health        *health.Monitor
}

// NotifsApplication is the standalone notification inbox API.
type NotifsApplication struct {
	Config        *config.Config
	Logger        *slog.Logger
	Auth          common.Authenticator
	Notifications *notif.NotificationHandler
	Health        *health.Monitor
}

func ProvideConfig() *config.Config {
	return config.LoadConfig()
}

func ProvideLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	return common.NewLogger(cfg.Logging)
}

func ProvideMongo(cfg *config.Config, log *slog.Logger) (*dbmongo.MongoClient, func(), error) {
	client, err := dbmongo.NewMongoConnection(cfg)
	if err != nil {
		return nil, nil, err
	}
	log.Info("connected to MongoDB", "database", cfg.MongoDB.Database)

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := client.Close(ctx); err != nil {
			log.Warn("mongo disconnect failed", "error", err)
		}
	}
	return client, cleanup, nil
}

func ProvideMongoDatabase(client *dbmongo.MongoClient) *mongo.Database {
	return client.Database
}

func ProvideMySQL(cfg *config.Config, log *slog.Logger) (*gorm.DB, func(), error) {
	db, err := dbmysql.NewMySQL(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("sql.DB error: %w", err)
	}
	return db, func() { _ = sqlDB.Close() }, nil
}

func ProvideUserDirectory(repo user.UserRepository) service.UserDirectory {
	return repo
}

// ProvideAuthenticator accepts the web session cookie, and bearer tokens
// when a JWT secret is configured.
func ProvideAuthenticator(sessions *dbmongo.SessionStore, cfg config.SessionConfig) common.Authenticator {
	chain := common.ChainAuthenticator{sessions}
	if cfg.JWTSecret != "" {
		tokens := common.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, tokenTTL)
		chain = append(chain, common.NewTokenAuthenticator(tokens))
	}
	return chain
}

// ProvideTracker announces presence transitions through the hub.
func ProvideTracker(hub *handler.Hub) *presence.Tracker {
	tracker := presence.NewTracker()
	tracker.Subscribe(hub)
	return tracker
}

// ProvideRealtimeManager persists notifications and pushes them to open
// connections.
func ProvideRealtimeManager(
	cfg config.NotificationConfig,
	repo dbmysql.NotificationRepository,
	hub *handler.Hub,
	log *slog.Logger,
) (*notif.NotificationManager, func()) {
	manager := notif.NewNotificationManager(cfg, log)
	manager.Subscribe(notif.NewDatabaseNotificationObserver(repo))
	manager.Subscribe(notif.NewRealtimeNotificationObserver(hub))
	return manager, manager.Shutdown
}

// ProvideInboxManager only persists; the standalone API has no sockets.
func ProvideInboxManager(
	cfg config.NotificationConfig,
	repo dbmysql.NotificationRepository,
	log *slog.Logger,
) (*notif.NotificationManager, func()) {
	manager := notif.NewNotificationManager(cfg, log)
	manager.Subscribe(notif.NewDatabaseNotificationObserver(repo))
	return manager, manager.Shutdown
}

func ProvideHealthMonitor(client *dbmongo.MongoClient, log *slog.Logger) *health.Monitor {
	return health.NewMonitor(client, healthInterval, log, "skillnest.chat", "skillnest.notifications")
}
