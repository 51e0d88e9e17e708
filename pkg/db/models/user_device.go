package models

import (
	"time"

	"github.com/google/uuid"
)

// UserDevice is one admitted login slot. Rows are capped per user by the
// configured device limit and removed most-recent-first on logout.
type UserDevice struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	DeviceID  string    `gorm:"column:device_id;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
