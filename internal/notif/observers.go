package notif

import (
	"context"
	"fmt"
	"time"

	"skillnest/internal/chat/models"
	"skillnest/internal/common"
	"skillnest/internal/dbmysql"
)

const observerTimeout = 5 * time.Second

type DatabaseNotificationObserver struct {
	repo dbmysql.NotificationRepository
}

func NewDatabaseNotificationObserver(repo dbmysql.NotificationRepository) *DatabaseNotificationObserver {
	return &DatabaseNotificationObserver{
		repo: repo,
	}
}

func (d *DatabaseNotificationObserver) Name() string {
	return "database_observer"
}

func (d *DatabaseNotificationObserver) Update(event common.NotificationEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), observerTimeout)
	defer cancel()

	notification := &dbmysql.Notification{
		UserID:    event.UserID,
		Type:      string(event.Type),
		Message:   event.Message,
		Link:      event.Link,
		CreatedAt: event.CreatedAt,
	}

	if err := d.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

// UserSender delivers a frame to every live connection of a user.
type UserSender interface {
	SendToUser(userID string, frame []byte)
}

// RealtimePayload is the data of the outbound notification frame.
type RealtimePayload struct {
	Type      common.NotificationType `json:"type"`
	Message   string                  `json:"message"`
	Link      *string                 `json:"link,omitempty"`
	CreatedAt time.Time               `json:"createdAt"`
}

// RealtimeNotificationObserver pushes a notification frame to the user's
// open connections. Offline users simply miss it.
type RealtimeNotificationObserver struct {
	sender UserSender
}

func NewRealtimeNotificationObserver(sender UserSender) *RealtimeNotificationObserver {
	return &RealtimeNotificationObserver{
		sender: sender,
	}
}

func (r *RealtimeNotificationObserver) Name() string {
	return "realtime_observer"
}

func (r *RealtimeNotificationObserver) Update(event common.NotificationEvent) error {
	frame, err := models.EncodeFrame(models.EventNotification, RealtimePayload{
		Type:      event.Type,
		Message:   event.Message,
		Link:      event.Link,
		CreatedAt: event.CreatedAt,
	})
	if err != nil {
		return err
	}
	r.sender.SendToUser(event.UserID, frame)
	return nil
}
