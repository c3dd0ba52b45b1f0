package notif

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"skillnest/internal/chat/models"
	"skillnest/internal/common"
	"skillnest/internal/config"
	"skillnest/internal/dbmysql"
)

const inboxLimit = 50

type NotificationManager struct {
	observers    map[string]common.Observer
	eventChannel chan common.NotificationEvent
	workerPool   int
	ctx          context.Context
	cancel       context.CancelFunc
	mu           sync.RWMutex
	wg           sync.WaitGroup
	shutdownOnce sync.Once
	log          *slog.Logger
}

func NewNotificationManager(cfg config.NotificationConfig, log *slog.Logger) *NotificationManager {
	ctx, cancel := context.WithCancel(context.Background())

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	buffer := cfg.ChannelBufferSize
	if buffer <= 0 {
		buffer = 1000
	}

	nm := &NotificationManager{
		observers:    make(map[string]common.Observer),
		eventChannel: make(chan common.NotificationEvent, buffer),
		workerPool:   workers,
		ctx:          ctx,
		cancel:       cancel,
		log:          log.With("component", "notification_manager"),
	}

	for i := 0; i < workers; i++ {
		nm.wg.Add(1)
		go nm.processEvents()
	}

	return nm
}

func (nm *NotificationManager) Subscribe(observer common.Observer) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	nm.observers[observer.Name()] = observer
	nm.log.Info("observer subscribed", "observer", observer.Name())
}

func (nm *NotificationManager) Unsubscribe(observer common.Observer) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	delete(nm.observers, observer.Name())
	nm.log.Info("observer unsubscribed", "observer", observer.Name())
}

// Notify runs every observer on the calling goroutine. One observer failing
// does not stop the others.
func (nm *NotificationManager) Notify(event common.NotificationEvent) {
	nm.mu.RLock()
	observers := make([]common.Observer, 0, len(nm.observers))
	for _, obs := range nm.observers {
		observers = append(observers, obs)
	}
	nm.mu.RUnlock()

	for _, observer := range observers {
		if err := observer.Update(event); err != nil {
			nm.log.Error("observer update failed",
				"observer", observer.Name(),
				"type", event.Type,
				"user_id", event.UserID,
				"error", err,
			)
		}
	}
}

// NotifyAsync queues event for the worker pool and drops it when the queue
// is full or the manager has shut down.
func (nm *NotificationManager) NotifyAsync(event common.NotificationEvent) {
	select {
	case <-nm.ctx.Done():
		return
	default:
	}

	select {
	case nm.eventChannel <- event:
	case <-nm.ctx.Done():
	default:
		nm.log.Warn("notification channel full, dropping event", "type", event.Type, "user_id", event.UserID)
	}
}

func (nm *NotificationManager) processEvents() {
	defer nm.wg.Done()

	for {
		select {
		case event := <-nm.eventChannel:
			nm.Notify(event)
		case <-nm.ctx.Done():
			return
		}
	}
}

// Shutdown stops the workers. Queued events that no worker picked up are
// dropped. The channel stays open so late NotifyAsync calls cannot panic.
func (nm *NotificationManager) Shutdown() {
	nm.shutdownOnce.Do(func() {
		nm.cancel()
		nm.wg.Wait()
		nm.log.Info("notification manager shutdown complete")
	})
}

type NotificationService struct {
	manager *NotificationManager
	repo    dbmysql.NotificationRepository
	enabled bool
	log     *slog.Logger
	now     func() time.Time
}

func NewNotificationService(
	cfg config.NotificationConfig,
	manager *NotificationManager,
	repo dbmysql.NotificationRepository,
	log *slog.Logger,
) *NotificationService {
	return &NotificationService{
		manager: manager,
		repo:    repo,
		enabled: cfg.Enabled,
		log:     log.With("component", "notification_service"),
		now:     time.Now,
	}
}

// SendNotification validates event and fans it out synchronously.
func (s *NotificationService) SendNotification(ctx context.Context, event common.NotificationEvent) error {
	if err := common.ValidateStruct(event); err != nil {
		return fmt.Errorf("invalid notification event: %w", err)
	}
	if !s.enabled {
		return nil
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now().UTC()
	}

	s.manager.Notify(event)
	s.log.Debug("notification sent", "type", event.Type, "user_id", event.UserID)
	return nil
}

// MessageReceived queues an inbox entry for the receiver of a chat message.
// It never blocks the caller.
func (s *NotificationService) MessageReceived(msg *models.Message, senderName string) {
	if !s.enabled || msg.Receiver == msg.Sender {
		return
	}
	if senderName == "" {
		senderName = "User"
	}

	link := "/chat/" + msg.JobID.Hex()
	event := common.NotificationEvent{
		Type:      common.MessageType,
		UserID:    msg.Receiver.Hex(),
		Message:   fmt.Sprintf("New message from %s", senderName),
		Link:      &link,
		CreatedAt: msg.CreatedAt,
		Metadata: common.NotificationMetadata{
			"conversation_id": msg.JobID.Hex(),
			"message_id":      msg.ID.Hex(),
			"sender_id":       msg.Sender.Hex(),
		},
	}
	if err := common.ValidateStruct(event); err != nil {
		s.log.Warn("skipping message notification", "message_id", msg.ID.Hex(), "error", err)
		return
	}
	s.manager.NotifyAsync(event)
}

func (s *NotificationService) GetUserNotifications(ctx context.Context, userID string) ([]*common.NotificationResponse, error) {
	notifications, err := s.repo.ByUserID(ctx, userID, inboxLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}

	responses := make([]*common.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = toResponse(n)
	}
	return responses, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID uint64, userID string) (*common.NotificationResponse, error) {
	n, err := s.repo.MarkAsRead(ctx, notificationID, userID)
	if err != nil {
		return nil, err
	}
	return toResponse(n), nil
}

func (s *NotificationService) MarkManyAsRead(ctx context.Context, ids []uint64, userID string) (int64, error) {
	return s.repo.MarkManyAsRead(ctx, ids, userID)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *NotificationService) Shutdown() {
	s.manager.Shutdown()
	s.log.Info("notification service shutdown complete")
}

func toResponse(n *dbmysql.Notification) *common.NotificationResponse {
	return &common.NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Message:   n.Message,
		Link:      n.Link,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
		ReadAt:    n.ReadAt,
	}
}
