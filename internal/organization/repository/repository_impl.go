package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	orgdomain "github.com/pivotalhq/pivotal/internal/organization/domain"
)

type repo struct{}

func Provide() orgdomain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*orgdomain.Organization, error) {
	var org orgdomain.Organization
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, country_code, base_currency, is_active, settings,
		 created_at, updated_at
		 FROM organizations WHERE id = ?`,
		id,
	).Scan(&org).Error
	if err != nil {
		return nil, err
	}
	if org.ID == 0 {
		return nil, nil
	}
	return &org, nil
}

func (r *repo) UpdateSettings(ctx context.Context, db *gorm.DB, id snowflake.ID, settings string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE organizations SET settings = ?, updated_at = ? WHERE id = ?`,
		settings,
		time.Now().UTC(),
		id,
	).Error
}
