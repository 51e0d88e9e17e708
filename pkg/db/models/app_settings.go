package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/youscore/youscore-backend/pkg/types"
)

// SettingsRowID pins the settings aggregate to a single row.
var SettingsRowID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// AppSettings is the singleton site configuration aggregate.
type AppSettings struct {
	ID                 uuid.UUID                `gorm:"type:uuid;primaryKey" json:"id"`
	PageTitle          string                   `gorm:"column:page_title;type:text" json:"page_title"`
	LogoURL            *string                  `gorm:"column:logo_url;type:text" json:"logo_url,omitempty"`
	SupportedLeagues   []string                 `gorm:"column:supported_leagues;type:jsonb;serializer:json" json:"supported_leagues"`
	LandingSections    []types.LandingSection   `gorm:"column:landing_sections;type:jsonb;serializer:json" json:"landing_sections"`
	SubscriptionPrices types.SubscriptionPrices `gorm:"column:subscription_prices;type:jsonb;serializer:json" json:"subscription_prices"`
	BankAccounts       pq.StringArray           `gorm:"column:bank_accounts;type:text[];default:ARRAY[]::text[]" json:"bank_accounts"`
	CryptoWallets      pq.StringArray           `gorm:"column:crypto_wallets;type:text[];default:ARRAY[]::text[]" json:"crypto_wallets"`
	UpdatedAt          time.Time                `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (AppSettings) TableName() string { return "app_settings" }
