package common

import (
	"time"
)

type NotificationType string

const (
	MessageType   NotificationType = "message"
	ChatType      NotificationType = "chat"
	ReviewType    NotificationType = "review"
	JobType       NotificationType = "job"
	ProposalType  NotificationType = "proposal"
	JobUpdateType NotificationType = "job_update"
	PaymentType   NotificationType = "payment_release"
	SystemType    NotificationType = "system"
)

type NotificationMetadata map[string]interface{}

type NotificationEvent struct {
	Type      NotificationType `validate:"required"`
	UserID    string           `validate:"required,mongodb"`
	Message   string           `validate:"required,max=1000"`
	Link      *string
	CreatedAt time.Time
	Metadata  NotificationMetadata
}

type NotificationResponse struct {
	ID        uint64     `json:"id"`
	Type      string     `json:"type"`
	Message   string     `json:"message"`
	Link      *string    `json:"link,omitempty"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
}
