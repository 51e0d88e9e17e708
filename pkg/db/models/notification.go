package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/youscore/youscore-backend/pkg/enums"
)

// Notification is one entry in a user's append-only event feed.
type Notification struct {
	ID        uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Type      enums.NotificationType `gorm:"column:type;type:notification_type;not null" json:"type"`
	Message   string                 `gorm:"column:message;type:text;not null" json:"message"`
	IsRead    bool                   `gorm:"column:is_read;not null;default:false" json:"is_read"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
