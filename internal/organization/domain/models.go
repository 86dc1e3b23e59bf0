// Package domain holds the organization model, its settings document and
// the persistence contract.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrOrgNotFound  = errors.New("organization not found")
	ErrOrgNotActive = errors.New("organization is not active")
)

type Organization struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"type:text;not null" json:"name"`
	CountryCode  string       `gorm:"type:text;not null" json:"country_code"`
	BaseCurrency string       `gorm:"type:text;not null" json:"base_currency"`
	IsActive     bool         `gorm:"not null" json:"is_active"`
	// Settings is the serialized Settings document.
	Settings  string    `gorm:"type:text" json:"settings"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Organization) TableName() string { return "organizations" }

// Settings is the tenant-tunable configuration document cached under the
// org-settings key.
type Settings struct {
	DefaultTaxRate    string `json:"default_tax_rate,omitempty"`
	QuoteNumberPrefix string `json:"quote_number_prefix,omitempty"`
	InvoiceDueDays    int    `json:"invoice_due_days,omitempty"`
}

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Organization, error)
	UpdateSettings(ctx context.Context, db *gorm.DB, id snowflake.ID, settings string) error
}

// Gate guards tenant-scoped operations behind the org's active flag.
type Gate interface {
	MustBeActive(ctx context.Context, orgID snowflake.ID) error
}

// Service is the cached settings surface.
type Service interface {
	GetSettings(ctx context.Context, orgID snowflake.ID) (*Settings, error)
	UpdateSettings(ctx context.Context, orgID snowflake.ID, settings Settings) error
}
