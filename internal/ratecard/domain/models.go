// Package domain holds the rate card catalogue models and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// RateCard is a versioned, time-bounded pricing catalogue scoped to one
// organization. At most one active default card should be effective at any
// date; its absence is a resolvable pricing failure, not a crash.
type RateCard struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID          snowflake.ID `gorm:"not null;index" json:"org_id"`
	Name           string       `gorm:"type:text;not null" json:"name"`
	Currency       string       `gorm:"type:text;not null" json:"currency"`
	EffectiveFrom  time.Time    `gorm:"not null" json:"effective_from"`
	EffectiveUntil *time.Time   `json:"effective_until,omitempty"`
	IsDefault      bool         `gorm:"not null" json:"is_default"`
	IsActive       bool         `gorm:"not null" json:"is_active"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (RateCard) TableName() string { return "rate_cards" }

// EffectiveAt reports whether the card covers the given date.
func (c RateCard) EffectiveAt(at time.Time) bool {
	if at.Before(c.EffectiveFrom) {
		return false
	}
	return c.EffectiveUntil == nil || !at.After(*c.EffectiveUntil)
}

// RateCardItem is one priced line of a card. Items belong to exactly one
// card and deactivate independently of it.
type RateCardItem struct {
	ID                snowflake.ID    `gorm:"primaryKey" json:"id"`
	RateCardID        snowflake.ID    `gorm:"not null;index" json:"rate_card_id"`
	OrgID             snowflake.ID    `gorm:"not null;index" json:"org_id"`
	ServiceCategoryID *snowflake.ID   `gorm:"index" json:"service_category_id,omitempty"`
	ItemCode          *string         `gorm:"type:text;index" json:"item_code,omitempty"`
	Description       string          `gorm:"type:text;not null" json:"description"`
	Unit              string          `gorm:"type:text;not null" json:"unit"`
	BaseRate          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"base_rate"`
	Currency          string          `gorm:"type:text;not null" json:"currency"`
	TaxClass          string          `gorm:"type:text;not null" json:"tax_class"`
	IsActive          bool            `gorm:"not null" json:"is_active"`
	CreatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (RateCardItem) TableName() string { return "rate_card_items" }
