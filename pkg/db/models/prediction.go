package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/youscore/youscore-backend/pkg/enums"
)

// Prediction is a published tip. MatchDate drives all week/segment
// bucketing; odds and prob_max keep full numeric precision in storage.
type Prediction struct {
	ID               uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MatchDate        time.Time              `gorm:"column:match_date;not null;index" json:"match_date"`
	League           string                 `gorm:"column:league;type:text;not null" json:"league"`
	Match            string                 `gorm:"column:match;type:text;not null" json:"match"`
	Tip              string                 `gorm:"column:tip;type:text;not null" json:"tip"`
	Odds             decimal.Decimal        `gorm:"column:odds;type:numeric(8,4);not null" json:"odds"`
	Result           enums.PredictionResult `gorm:"column:result;type:prediction_result;not null;default:'Pending'" json:"result"`
	Type             enums.PredictionType   `gorm:"column:prediction_type;type:prediction_type;not null;default:'small'" json:"type"`
	Confidence       *int                   `gorm:"column:confidence" json:"confidence,omitempty"`
	RecommendedStake *int                   `gorm:"column:recommended_stake" json:"recommended_stake,omitempty"`
	ProbMax          *decimal.Decimal       `gorm:"column:prob_max;type:numeric(6,4)" json:"prob_max,omitempty"`
	FinalScore       *string                `gorm:"column:final_score;type:text" json:"final_score,omitempty"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
