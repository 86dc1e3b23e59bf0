// Package service implements the organization gate and the cached
// settings surface. UpdateSettings busts the org's derived keys in the
// same logical operation as the write.
package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	cacheservice "github.com/pivotalhq/pivotal/internal/cache/service"
	orgdomain "github.com/pivotalhq/pivotal/internal/organization/domain"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  orgdomain.Repository
	cache *cacheservice.Wrapper
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Repo  orgdomain.Repository
	Cache *cacheservice.Wrapper
}

func NewService(p ServiceParam) *Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("organization.service"),
		repo:  p.Repo,
		cache: p.Cache,
	}
}

func ProvideService(s *Service) orgdomain.Service { return s }
func ProvideGate(s *Service) orgdomain.Gate       { return s }

func (s *Service) MustBeActive(ctx context.Context, orgID snowflake.ID) error {
	if orgID == 0 {
		return orgdomain.ErrOrgNotFound
	}
	org, err := s.repo.FindByID(ctx, s.db, orgID)
	if err != nil {
		return err
	}
	if org == nil {
		return orgdomain.ErrOrgNotFound
	}
	if !org.IsActive {
		return fmt.Errorf("%w: org=%s", orgdomain.ErrOrgNotActive, orgID)
	}
	return nil
}

func (s *Service) GetSettings(ctx context.Context, orgID snowflake.ID) (*orgdomain.Settings, error) {
	key := s.cache.Keys().ForOrgSettings(orgID)
	return cacheservice.GetOrSet(ctx, s.cache, key, 0, func(ctx context.Context) (*orgdomain.Settings, error) {
		org, err := s.repo.FindByID(ctx, s.db, orgID)
		if err != nil {
			return nil, err
		}
		if org == nil {
			return nil, orgdomain.ErrOrgNotFound
		}

		settings := &orgdomain.Settings{}
		if org.Settings != "" {
			if err := json.Unmarshal([]byte(org.Settings), settings); err != nil {
				return nil, fmt.Errorf("decode settings for org %s: %w", orgID, err)
			}
		}
		return settings, nil
	})
}

func (s *Service) UpdateSettings(ctx context.Context, orgID snowflake.ID, settings orgdomain.Settings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.repo.UpdateSettings(ctx, s.db, orgID, string(raw)); err != nil {
		return err
	}
	s.cache.BustOrgCache(ctx, orgID)
	return nil
}
