// Package service implements the cached rate card surface. Reads go
// through the cache wrapper; every write busts the derived rate card keys
// in the same logical operation, which is what keeps pricing reads
// coherent.
package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	cacheservice "github.com/pivotalhq/pivotal/internal/cache/service"
	"github.com/pivotalhq/pivotal/internal/config"
	ratecarddomain "github.com/pivotalhq/pivotal/internal/ratecard/domain"
)

const dateKeyFormat = "2006-01-02"

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  ratecarddomain.Repository
	cache *cacheservice.Wrapper

	activeCardTTL time.Duration
	itemTTL       time.Duration
}

type ServiceParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   ratecarddomain.Repository
	Cache  *cacheservice.Wrapper
	Config config.Config
}

func NewService(p ServiceParam) ratecarddomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ratecard.service"),
		genID: p.GenID,
		repo:  p.Repo,
		cache: p.Cache,

		activeCardTTL: p.Config.Cache.ActiveRateCardTTL,
		itemTTL:       p.Config.Cache.RateCardItemTTL,
	}
}

// ActiveDefaultCard returns the active default card effective at the given
// date, or nil when none exists. Cached with a short TTL so admin edits
// surface near real time.
func (s *Service) ActiveDefaultCard(ctx context.Context, orgID snowflake.ID, at time.Time) (*ratecarddomain.RateCard, error) {
	key := s.cache.Keys().ForActiveRateCard(orgID, at.UTC().Format(dateKeyFormat))
	return cacheservice.GetOrSet(ctx, s.cache, key, s.activeCardTTL, func(ctx context.Context) (*ratecarddomain.RateCard, error) {
		return s.repo.FindActiveDefault(ctx, s.db, orgID, at)
	})
}

// ItemByCode looks an active item up by code across all cards effective at
// the given date. Cached with the longer catalogue TTL.
func (s *Service) ItemByCode(ctx context.Context, orgID snowflake.ID, code string, at time.Time) (*ratecarddomain.RateCardItem, error) {
	key := s.cache.Keys().ForRateCardItemByCode(orgID, code, at.UTC().Format(dateKeyFormat))
	return cacheservice.GetOrSet(ctx, s.cache, key, s.itemTTL, func(ctx context.Context) (*ratecarddomain.RateCardItem, error) {
		return s.repo.FindItemByCode(ctx, s.db, orgID, code, at)
	})
}

// CardItems returns the active items of one card.
func (s *Service) CardItems(ctx context.Context, orgID, cardID snowflake.ID) ([]ratecarddomain.RateCardItem, error) {
	key := s.cache.Keys().ForRateCardItems(orgID, cardID)
	return cacheservice.GetOrSet(ctx, s.cache, key, s.itemTTL, func(ctx context.Context) ([]ratecarddomain.RateCardItem, error) {
		return s.repo.ListItems(ctx, s.db, orgID, cardID)
	})
}

func (s *Service) CreateRateCard(ctx context.Context, card *ratecarddomain.RateCard) error {
	now := time.Now().UTC()
	if card.ID == 0 {
		card.ID = s.genID.Generate()
	}
	card.CreatedAt = now
	card.UpdatedAt = now

	if err := s.repo.Insert(ctx, s.db, card); err != nil {
		return err
	}
	s.cache.BustRateCardCache(ctx, card.OrgID, card.ID)
	return nil
}

func (s *Service) UpdateRateCard(ctx context.Context, card *ratecarddomain.RateCard) error {
	card.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, card); err != nil {
		return err
	}
	s.cache.BustRateCardCache(ctx, card.OrgID, card.ID)
	return nil
}

func (s *Service) DeactivateRateCard(ctx context.Context, orgID, cardID snowflake.ID) error {
	card, err := s.repo.FindByID(ctx, s.db, orgID, cardID)
	if err != nil {
		return err
	}
	if card == nil {
		return ratecarddomain.ErrRateCardNotFound
	}

	card.IsActive = false
	card.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, card); err != nil {
		return err
	}
	s.cache.BustRateCardCache(ctx, orgID, cardID)
	return nil
}

func (s *Service) UpsertItem(ctx context.Context, item *ratecarddomain.RateCardItem) error {
	now := time.Now().UTC()
	item.UpdatedAt = now

	if item.ID == 0 {
		item.ID = s.genID.Generate()
		item.CreatedAt = now
		if err := s.repo.InsertItem(ctx, s.db, item); err != nil {
			return err
		}
	} else if err := s.repo.UpdateItem(ctx, s.db, item); err != nil {
		return err
	}

	s.cache.BustRateCardCache(ctx, item.OrgID, item.RateCardID)
	return nil
}

func (s *Service) DeactivateItem(ctx context.Context, orgID, cardID, itemID snowflake.ID) error {
	if err := s.repo.DeactivateItem(ctx, s.db, orgID, itemID); err != nil {
		return err
	}
	s.cache.BustRateCardCache(ctx, orgID, cardID)
	return nil
}
