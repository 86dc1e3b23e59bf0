package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	ratecarddomain "github.com/pivotalhq/pivotal/internal/ratecard/domain"
)

type repo struct{}

func Provide() ratecarddomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, card *ratecarddomain.RateCard) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO rate_cards (
			id, org_id, name, currency, effective_from, effective_until,
			is_default, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		card.ID,
		card.OrgID,
		card.Name,
		card.Currency,
		card.EffectiveFrom,
		card.EffectiveUntil,
		card.IsDefault,
		card.IsActive,
		card.CreatedAt,
		card.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, card *ratecarddomain.RateCard) error {
	return db.WithContext(ctx).Exec(
		`UPDATE rate_cards SET
			name = ?, currency = ?, effective_from = ?, effective_until = ?,
			is_default = ?, is_active = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		card.Name,
		card.Currency,
		card.EffectiveFrom,
		card.EffectiveUntil,
		card.IsDefault,
		card.IsActive,
		card.UpdatedAt,
		card.OrgID,
		card.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*ratecarddomain.RateCard, error) {
	var card ratecarddomain.RateCard
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, name, currency, effective_from, effective_until,
		 is_default, is_active, created_at, updated_at
		 FROM rate_cards WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&card).Error
	if err != nil {
		return nil, err
	}
	if card.ID == 0 {
		return nil, nil
	}
	return &card, nil
}

func (r *repo) FindActiveDefault(ctx context.Context, db *gorm.DB, orgID snowflake.ID, at time.Time) (*ratecarddomain.RateCard, error) {
	var card ratecarddomain.RateCard
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, name, currency, effective_from, effective_until,
		 is_default, is_active, created_at, updated_at
		 FROM rate_cards
		 WHERE org_id = ? AND is_default = ? AND is_active = ?
		   AND effective_from <= ?
		   AND (effective_until IS NULL OR effective_until >= ?)
		 ORDER BY effective_from DESC
		 LIMIT 1`,
		orgID,
		true,
		true,
		at,
		at,
	).Scan(&card).Error
	if err != nil {
		return nil, err
	}
	if card.ID == 0 {
		return nil, nil
	}
	return &card, nil
}

func (r *repo) InsertItem(ctx context.Context, db *gorm.DB, item *ratecarddomain.RateCardItem) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO rate_card_items (
			id, rate_card_id, org_id, service_category_id, item_code,
			description, unit, base_rate, currency, tax_class, is_active,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.RateCardID,
		item.OrgID,
		item.ServiceCategoryID,
		item.ItemCode,
		item.Description,
		item.Unit,
		item.BaseRate,
		item.Currency,
		item.TaxClass,
		item.IsActive,
		item.CreatedAt,
		item.UpdatedAt,
	).Error
}

func (r *repo) UpdateItem(ctx context.Context, db *gorm.DB, item *ratecarddomain.RateCardItem) error {
	return db.WithContext(ctx).Exec(
		`UPDATE rate_card_items SET
			service_category_id = ?, item_code = ?, description = ?, unit = ?,
			base_rate = ?, currency = ?, tax_class = ?, is_active = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		item.ServiceCategoryID,
		item.ItemCode,
		item.Description,
		item.Unit,
		item.BaseRate,
		item.Currency,
		item.TaxClass,
		item.IsActive,
		item.UpdatedAt,
		item.OrgID,
		item.ID,
	).Error
}

func (r *repo) FindItemByCode(ctx context.Context, db *gorm.DB, orgID snowflake.ID, code string, at time.Time) (*ratecarddomain.RateCardItem, error) {
	var item ratecarddomain.RateCardItem
	err := db.WithContext(ctx).Raw(
		`SELECT i.id, i.rate_card_id, i.org_id, i.service_category_id, i.item_code,
		 i.description, i.unit, i.base_rate, i.currency, i.tax_class, i.is_active,
		 i.created_at, i.updated_at
		 FROM rate_card_items i
		 JOIN rate_cards c ON c.id = i.rate_card_id
		 WHERE i.org_id = ? AND i.item_code = ? AND i.is_active = ?
		   AND c.is_active = ?
		   AND c.effective_from <= ?
		   AND (c.effective_until IS NULL OR c.effective_until >= ?)
		 ORDER BY c.is_default DESC, c.effective_from DESC
		 LIMIT 1`,
		orgID,
		code,
		true,
		true,
		at,
		at,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, orgID, cardID snowflake.ID) ([]ratecarddomain.RateCardItem, error) {
	var items []ratecarddomain.RateCardItem
	err := db.WithContext(ctx).Raw(
		`SELECT id, rate_card_id, org_id, service_category_id, item_code,
		 description, unit, base_rate, currency, tax_class, is_active,
		 created_at, updated_at
		 FROM rate_card_items
		 WHERE org_id = ? AND rate_card_id = ? AND is_active = ?
		 ORDER BY item_code, description`,
		orgID,
		cardID,
		true,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) DeactivateItem(ctx context.Context, db *gorm.DB, orgID, itemID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE rate_card_items SET is_active = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		false,
		time.Now().UTC(),
		orgID,
		itemID,
	).Error
}
