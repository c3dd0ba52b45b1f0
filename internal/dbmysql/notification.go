package dbmysql

import "time"

// Notification is one entry in a user's in-app inbox.
type Notification struct {
	ID        uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string     `gorm:"not null;size:24;index:idx_user_read,priority:1;index:idx_user_created,priority:1" json:"user"`
	Type      string     `gorm:"not null;size:50" json:"type"`
	Message   string     `gorm:"not null;type:text" json:"message"`
	Link      *string    `gorm:"size:512" json:"link,omitempty"`
	Read      bool       `gorm:"not null;default:false;index:idx_user_read,priority:2" json:"read"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index:idx_user_created,priority:2" json:"createdAt"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}
