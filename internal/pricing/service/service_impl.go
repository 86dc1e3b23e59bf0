// Package service implements the 4-tier pricing resolver. Tier order per
// line: explicit override (permission-gated), item-code match across
// active cards, service-category match in the default card, description
// fallback in the default card. Lines that miss every tier are reported,
// not fatal; the batch always attempts every line.
package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/pivotalhq/pivotal/internal/clock"
	"github.com/pivotalhq/pivotal/internal/money"
	orgdomain "github.com/pivotalhq/pivotal/internal/organization/domain"
	pricingdomain "github.com/pivotalhq/pivotal/internal/pricing/domain"
	ratecarddomain "github.com/pivotalhq/pivotal/internal/ratecard/domain"
)

type Service struct {
	log     *zap.Logger
	cards   ratecarddomain.Service
	gate    pricingdomain.PermissionGate
	orgGate orgdomain.Gate
	clock   clock.Clock
	cfg     pricingdomain.Config
}

type ServiceParam struct {
	fx.In

	Log     *zap.Logger
	Cards   ratecarddomain.Service
	Gate    pricingdomain.PermissionGate
	OrgGate orgdomain.Gate
	Clock   clock.Clock
	Config  pricingdomain.Config
}

func NewService(p ServiceParam) pricingdomain.Service {
	return &Service{
		log:     p.Log.Named("pricing.service"),
		cards:   p.Cards,
		gate:    p.Gate,
		orgGate: p.OrgGate,
		clock:   p.Clock,
		cfg:     p.Config,
	}
}

func (s *Service) Resolve(ctx context.Context, orgID, userID snowflake.ID, lines []pricingdomain.LineItemInput, effectiveDate time.Time) (*pricingdomain.Resolution, error) {
	if effectiveDate.IsZero() {
		effectiveDate = s.clock.Now(ctx)
	}

	if err := s.orgGate.MustBeActive(ctx, orgID); err != nil {
		return nil, err
	}

	// One permission query per batch. A gate failure closes the override
	// tier rather than failing the batch: the lines still price from the
	// rate cards.
	canOverride := false
	decision, err := s.gate.CanOverridePrice(ctx, userID)
	if err != nil {
		s.log.Warn("permission gate unavailable, overrides disabled for batch",
			zap.String("user_id", userID.String()), zap.Error(err))
	} else {
		canOverride = decision.Allowed
	}

	card, err := s.cards.ActiveDefaultCard(ctx, orgID, effectiveDate)
	if err != nil {
		return nil, err
	}
	if card == nil {
		// Systemic condition: fail the whole batch without per-line work.
		resolution := &pricingdomain.Resolution{}
		for _, line := range lines {
			resolution.Failures = append(resolution.Failures, pricingdomain.LineFailure{
				LineNumber:  line.LineNumber,
				Description: line.Description,
				Reason:      pricingdomain.ReasonNoActiveRateCard,
			})
		}
		s.log.Warn("no active rate card for organization",
			zap.String("org_id", orgID.String()),
			zap.Time("effective_date", effectiveDate),
			zap.Int("lines", len(lines)))
		return resolution, nil
	}

	// The default card's item list backs tiers 3 and 4; fetched once per
	// batch through the cache.
	var defaultItems []ratecarddomain.RateCardItem
	loadDefaultItems := func() ([]ratecarddomain.RateCardItem, error) {
		if defaultItems != nil {
			return defaultItems, nil
		}
		items, err := s.cards.CardItems(ctx, orgID, card.ID)
		if err != nil {
			return nil, err
		}
		defaultItems = items
		return items, nil
	}

	resolution := &pricingdomain.Resolution{}
	for _, line := range lines {
		result, err := s.resolveLine(ctx, orgID, card, line, canOverride, effectiveDate, loadDefaultItems)
		if err != nil {
			return nil, err
		}
		if result == nil {
			resolution.Failures = append(resolution.Failures, pricingdomain.LineFailure{
				LineNumber:  line.LineNumber,
				Description: line.Description,
				Reason:      pricingdomain.ReasonNoMatch,
			})
			continue
		}
		resolution.Lines = append(resolution.Lines, *result)
	}
	return resolution, nil
}

// resolveLine walks the tiers for one line. A nil result with nil error
// means no tier matched.
func (s *Service) resolveLine(
	ctx context.Context,
	orgID snowflake.ID,
	card *ratecarddomain.RateCard,
	line pricingdomain.LineItemInput,
	canOverride bool,
	effectiveDate time.Time,
	loadDefaultItems func() ([]ratecarddomain.RateCardItem, error),
) (*pricingdomain.PricingResult, error) {
	// Tier 1: explicit override. Without the permission the tier is
	// skipped entirely and the line prices from tiers 2-4; the caller's
	// number is superseded, never rejected.
	if canOverride && line.UnitPrice != nil {
		unit := line.Unit
		if unit == "" {
			unit = "each"
		}
		return &pricingdomain.PricingResult{
			LineNumber:  line.LineNumber,
			Description: line.Description,
			UnitPrice:   money.New(*line.UnitPrice, card.Currency).Value(),
			Currency:    card.Currency,
			TaxRate:     s.cfg.DefaultTaxRate,
			Unit:        unit,
			Source:      pricingdomain.SourceExplicit,
		}, nil
	}

	// Tier 2: item-code match across all active cards at the date.
	if line.ItemCode != nil && *line.ItemCode != "" {
		item, err := s.cards.ItemByCode(ctx, orgID, *line.ItemCode, effectiveDate)
		if err != nil {
			return nil, err
		}
		if item != nil {
			return s.resultFromItem(line, item, pricingdomain.SourceRateCard), nil
		}
	}

	// Tier 3: service-category match in the default card, best
	// description among the category's items.
	if line.ServiceCategoryID != nil {
		items, err := loadDefaultItems()
		if err != nil {
			return nil, err
		}
		candidates := itemsInCategory(items, *line.ServiceCategoryID)
		if len(candidates) > 0 {
			item := bestDescriptionMatch(candidates, line.Description)
			if item == nil {
				// Category alone is a match when no description scores.
				item = &candidates[0]
			}
			return s.resultFromItem(line, item, pricingdomain.SourceRateCard), nil
		}
	}

	// Tier 4: description fallback within the default card.
	items, err := loadDefaultItems()
	if err != nil {
		return nil, err
	}
	if item := bestDescriptionMatch(items, line.Description); item != nil {
		return s.resultFromItem(line, item, pricingdomain.SourceDefault), nil
	}

	return nil, nil
}

func (s *Service) resultFromItem(line pricingdomain.LineItemInput, item *ratecarddomain.RateCardItem, source pricingdomain.Source) *pricingdomain.PricingResult {
	cardID := item.RateCardID
	itemID := item.ID
	return &pricingdomain.PricingResult{
		LineNumber:     line.LineNumber,
		Description:    line.Description,
		UnitPrice:      money.New(item.BaseRate, item.Currency).Value(),
		Currency:       item.Currency,
		TaxRate:        s.cfg.TaxRateFor(item.TaxClass),
		Unit:           item.Unit,
		Source:         source,
		RateCardID:     &cardID,
		RateCardItemID: &itemID,
	}
}
