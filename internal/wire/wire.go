//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

	"skillnest/internal/chat/handler"
	"skillnest/internal/chat/repository"
	"skillnest/internal/chat/service"
	"skillnest/internal/config"
	"skillnest/internal/dbmongo"
	"skillnest/internal/dbmysql"
	"skillnest/internal/media"
	"skillnest/internal/notif"
	"skillnest/internal/presence"
	"skillnest/internal/user"
)

var baseSet = wire.NewSet(
	ProvideConfig,
	ProvideLogger,
	ProvideMongo,
	ProvideMongoDatabase,
	ProvideMySQL,
	wire.FieldsOf(new(*config.Config), "Chat", "Session", "Notification"),
	dbmongo.NewSessionStore,
	ProvideAuthenticator,
	dbmysql.NewNotificationRepository,
	notif.NewNotificationService,
	notif.NewNotificationHandler,
	wire.Bind(new(notif.NotificationServiceInterface), new(*notif.NotificationService)),
	ProvideHealthMonitor,
)

func InitializeChatApplication() (*ChatApplication, func(), error) {
	wire.Build(
		baseSet,
		repository.NewChatRepository,
		repository.NewJobRepository,
		user.NewUserRepository,
		ProvideUserDirectory,
		handler.NewHub,
		ProvideTracker,
		ProvideRealtimeManager,
		wire.Bind(new(service.MessageNotifier), new(*notif.NotificationService)),
		service.NewChatService,
		handler.NewRouter,
		handler.NewGateway,
		dbmongo.NewAttachmentStorage,
		wire.Bind(new(handler.AttachmentStore), new(*dbmongo.AttachmentStorage)),
		wire.Bind(new(media.AttachmentReader), new(*dbmongo.AttachmentStorage)),
		handler.NewHTTPHandler,
		presence.NewHandler,
		wire.Bind(new(user.OnlineChecker), new(*presence.Tracker)),
		user.NewHandler,
		media.NewHTTPServer,
		wire.Struct(new(ChatApplication), "*"),
	)
	return nil, nil, nil
}

func InitializeNotifsApplication() (*NotifsApplication, func(), error) {
	wire.Build(
		baseSet,
		ProvideInboxManager,
		wire.Struct(new(NotifsApplication), "*"),
	)
	return nil, nil, nil
}
