package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/youscore/youscore-backend/pkg/enums"
)

// User is the canonical identity entity: credentials plus the embedded
// subscription lifecycle columns and per-segment free-access grants.
type User struct {
	ID                 uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email              string                   `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash       string                   `gorm:"column:password_hash;not null" json:"-"`
	Role               enums.Role               `gorm:"column:role;type:user_role;not null;default:'user'" json:"role"`
	SubscriptionPlan   enums.SubscriptionPlan   `gorm:"column:subscription_plan;type:subscription_plan;not null;default:'none'" json:"subscription_plan"`
	SubscriptionStatus enums.SubscriptionStatus `gorm:"column:subscription_status;type:subscription_status;not null;default:'inactive'" json:"subscription_status"`
	SubscriptionStart  *time.Time               `gorm:"column:subscription_start" json:"subscription_start,omitempty"`
	SubscriptionExpiry *time.Time               `gorm:"column:subscription_expiry" json:"subscription_expiry,omitempty"`
	PaymentProofRef    *string                  `gorm:"column:payment_proof_ref" json:"payment_proof_ref,omitempty"`
	FreeAccessMidWeek  *time.Time               `gorm:"column:free_access_mid_week" json:"free_access_mid_week,omitempty"`
	FreeAccessWeekend  *time.Time               `gorm:"column:free_access_weekend" json:"free_access_weekend,omitempty"`
	CreatedAt          time.Time                `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time                `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
