package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrRateCardNotFound = errors.New("rate card not found")
	ErrItemNotFound     = errors.New("rate card item not found")
)

// Repository is the persistence boundary for cards and items. Lookups
// return (nil, nil) when nothing matches; callers decide whether that is
// an error.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, card *RateCard) error
	Update(ctx context.Context, db *gorm.DB, card *RateCard) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*RateCard, error)
	// FindActiveDefault returns the active default card effective at the
	// given date.
	FindActiveDefault(ctx context.Context, db *gorm.DB, orgID snowflake.ID, at time.Time) (*RateCard, error)

	InsertItem(ctx context.Context, db *gorm.DB, item *RateCardItem) error
	UpdateItem(ctx context.Context, db *gorm.DB, item *RateCardItem) error
	// FindItemByCode searches active items by code across all cards active
	// and effective at the given date.
	FindItemByCode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, code string, at time.Time) (*RateCardItem, error)
	ListItems(ctx context.Context, db *gorm.DB, orgID, cardID snowflake.ID) ([]RateCardItem, error)
	DeactivateItem(ctx context.Context, db *gorm.DB, orgID, itemID snowflake.ID) error
}

// Service is the cached read/write surface the pricing resolver consumes.
type Service interface {
	ActiveDefaultCard(ctx context.Context, orgID snowflake.ID, at time.Time) (*RateCard, error)
	ItemByCode(ctx context.Context, orgID snowflake.ID, code string, at time.Time) (*RateCardItem, error)
	CardItems(ctx context.Context, orgID, cardID snowflake.ID) ([]RateCardItem, error)

	CreateRateCard(ctx context.Context, card *RateCard) error
	UpdateRateCard(ctx context.Context, card *RateCard) error
	DeactivateRateCard(ctx context.Context, orgID, cardID snowflake.ID) error
	UpsertItem(ctx context.Context, item *RateCardItem) error
	DeactivateItem(ctx context.Context, orgID, cardID, itemID snowflake.ID) error
}
