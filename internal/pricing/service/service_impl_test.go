package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pivotalhq/pivotal/internal/clock"
	pricingdomain "github.com/pivotalhq/pivotal/internal/pricing/domain"
	ratecarddomain "github.com/pivotalhq/pivotal/internal/ratecard/domain"
)

type stubCards struct {
	card        *ratecarddomain.RateCard
	cardErr     error
	itemsByCode map[string]*ratecarddomain.RateCardItem
	items       []ratecarddomain.RateCardItem
	itemsCalls  int
}

func (s *stubCards) ActiveDefaultCard(ctx context.Context, orgID snowflake.ID, at time.Time) (*ratecarddomain.RateCard, error) {
	return s.card, s.cardErr
}

func (s *stubCards) ItemByCode(ctx context.Context, orgID snowflake.ID, code string, at time.Time) (*ratecarddomain.RateCardItem, error) {
	return s.itemsByCode[code], nil
}

func (s *stubCards) CardItems(ctx context.Context, orgID, cardID snowflake.ID) ([]ratecarddomain.RateCardItem, error) {
	s.itemsCalls++
	return s.items, nil
}

func (s *stubCards) CreateRateCard(ctx context.Context, card *ratecarddomain.RateCard) error {
	return errors.New("not implemented")
}

func (s *stubCards) UpdateRateCard(ctx context.Context, card *ratecarddomain.RateCard) error {
	return errors.New("not implemented")
}

func (s *stubCards) DeactivateRateCard(ctx context.Context, orgID, cardID snowflake.ID) error {
	return errors.New("not implemented")
}

func (s *stubCards) UpsertItem(ctx context.Context, item *ratecarddomain.RateCardItem) error {
	return errors.New("not implemented")
}

func (s *stubCards) DeactivateItem(ctx context.Context, orgID, cardID, itemID snowflake.ID) error {
	return errors.New("not implemented")
}

type stubGate struct {
	allowed bool
	err     error
	calls   int
}

func (g *stubGate) CanOverridePrice(ctx context.Context, userID snowflake.ID) (pricingdomain.Decision, error) {
	g.calls++
	if g.err != nil {
		return pricingdomain.Decision{}, g.err
	}
	return pricingdomain.Decision{Allowed: g.allowed}, nil
}

type stubOrgGate struct {
	err error
}

func (g stubOrgGate) MustBeActive(ctx context.Context, orgID snowflake.ID) error {
	return g.err
}

var (
	testOrgID  = snowflake.ID(100)
	testUserID = snowflake.ID(200)
	testCardID = snowflake.ID(300)
	testDate   = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
)

func testCard() *ratecarddomain.RateCard {
	return &ratecarddomain.RateCard{
		ID:            testCardID,
		OrgID:         testOrgID,
		Name:          "Standard 2026",
		Currency:      "NZD",
		EffectiveFrom: testDate.AddDate(0, -2, 0),
		IsDefault:     true,
		IsActive:      true,
	}
}

func devHourlyItem() *ratecarddomain.RateCardItem {
	code := "DEV-HOURLY"
	return &ratecarddomain.RateCardItem{
		ID:          snowflake.ID(301),
		RateCardID:  testCardID,
		OrgID:       testOrgID,
		ItemCode:    &code,
		Description: "Development work",
		Unit:        "hour",
		BaseRate:    decimal.RequireFromString("150.00"),
		Currency:    "NZD",
		TaxClass:    "standard",
		IsActive:    true,
	}
}

func newTestService(cards *stubCards, gate *stubGate, orgGate stubOrgGate) pricingdomain.Service {
	return NewService(ServiceParam{
		Log:     zap.NewNop(),
		Cards:   cards,
		Gate:    gate,
		OrgGate: orgGate,
		Clock:   clock.Fixed{At: testDate},
		Config: pricingdomain.Config{
			DefaultTaxRate: decimal.RequireFromString("15"),
			TaxRates: map[string]decimal.Decimal{
				"standard": decimal.RequireFromString("15"),
				"zero":     decimal.Zero,
			},
		},
	})
}

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestResolveItemCodeMatch(t *testing.T) {
	cards := &stubCards{
		card:        testCard(),
		itemsByCode: map[string]*ratecarddomain.RateCardItem{"DEV-HOURLY": devHourlyItem()},
	}
	svc := newTestService(cards, &stubGate{}, stubOrgGate{})

	res, err := svc.Resolve(context.Background(), testOrgID, testUserID, []pricingdomain.LineItemInput{
		{LineNumber: 1, Description: "Development work", ItemCode: strPtr("DEV-HOURLY"), Quantity: decimal.NewFromInt(10)},
	}, testDate)
	require.NoError(t, err)
	require.True(t, res.OK())
	require.Len(t, res.Lines, 1)

	line := res.Lines[0]
	assert.Equal(t, pricingdomain.SourceRateCard, line.Source)
	assert.Equal(t, "150.00", line.UnitPrice.StringFixed(2))
	assert.Equal(t, "NZD", line.Currency)
	assert.Equal(t, "hour", line.Unit)
	assert.True(t, line.TaxRate.Equal(decimal.RequireFromString("15")))
	require.NotNil(t, line.RateCardID)
	assert.Equal(t, testCardID, *line.RateCardID)
	require.NotNil(t, line.RateCardItemID)
}

func TestResolveExplicitOverrideWithPermission(t *testing.T) {
	cards := &stubCards{
		card:        testCard(),
		itemsByCode: map[string]*ratecarddomain.RateCardItem{"DEV-HOURLY": devHourlyItem()},
	}
	gate := &stubGate{allowed: true}
	svc := newTestService(cards, gate, stubOrgGate{})

	res, err := svc.Resolve(context.Background(), testOrgID, testUserID, []pricingdomain.LineItemInput{
		{LineNumber: 1, Description: "Development work", ItemCode: strPtr("DEV-HOURLY"), UnitPrice: decPtr("200.00"), Quantity: decimal.NewFromInt(10), Unit: "hour"},
	}, testDate)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)

	line := res.Lines[0]
	assert.Equal(t, pricingdomain.SourceExplicit, line.Source)
	assert.Equal(t, "200.00", line.UnitPrice.StringFixed(2))
	assert.Nil(t, line.RateCardID)
	assert.Nil(t, line.RateCardItemID)
}

func TestResolveOverrideSupersededWithoutPermission(t *testing.T) {
	cards := &stubCards{
		card:        testCard(),
		itemsByCode: map[string]*ratecarddomain.RateCardItem{"DEV-HOURLY": devHourlyItem()},
	}
	gate := &stubGate{allowed: false}
	svc := newTestService(cards, gate, stubOrgGate{})

	res, err := svc.Resolve(context.Background(), testOrgID, testUserID, []pricingdomain.LineItemInput{
		{LineNumber: 1, Description: "Development work", ItemCode: strPtr("DEV-HOURLY"), UnitPrice: decPtr("200.00"), Quantity: decimal.NewFromInt(10)},
	}, testDate)
	require.NoError(t, err)
	require.True(t, res.OK())
	require.Len(t, res.Lines, 1)

	// The caller's 200.00 is superseded, not rejected: the line prices
	// from the rate card.
	line := res.Lines[0]
	assert.Equal(t, pricingdomain.SourceRateCard, line.Source)
	assert.Equal(t, "150.00", line.UnitPrice.StringFixed(2))
}

func TestResolveGateQueriedOncePerBatch(t *testing.T) {
	cards := &stubCards{
		card:        testCard(),
		itemsByCode: map[string]*ratecarddomain.RateCardItem{"DEV-HOURLY": devHourlyItem()},
	}
	gate := &stubGate{allowed: true}
	svc := newTestService(cards, gate, stubOrgGate{})

	lines := make([]pricingdomain.LineItemInput, 0, 5)
	for i := 1; i <= 5; i++ {
		lines = append(lines, pricingdomain.LineItemInput{
			LineNumber: i, Description: "Development work", UnitPrice: decPtr("99.00"), Quantity: decimal.NewFromInt(1),
		})
	}

	res, err := svc.Resolve(context.Background(), testOrgID, testUserID, lines, testDate)
	require.NoError(t, err)
	require.Len(t, res.Lines, 5)
	assert.Equal(t, 1, gate.calls)
}

func TestResolveGateFailureDisablesOverrides(t *testing.T) {
	cards := &stubCards{
		card:        testCard(),
		itemsByCode: map[string]*ratecarddomain.RateCardItem{"DEV-HOURLY": devHourlyItem()},
	}
	gate := &stubGate{err: errors.New("enforcer unavailable")}
	svc := newTestService(cards, gate, stubOrgGate{})

	res, err := svc.Resolve(context.Background(), testOrgID, testUserID, []pricingdomain.LineItemInput{
		{LineNumber: 1, Description: "Development work", ItemCode: strPtr("DEV-HOURLY"), UnitPrice: decPtr("200.00"), Quantity: decimal.NewFromInt(1)},
	}, testDate)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, pricingdomain.SourceRateCard, res.Lines[0].Source)
	assert.Equal(t, "150.00", res.Lines[0].UnitPrice.StringFixed(2))
}

func TestResolveNoActiveRateCardFailsAllLines(t *testing.T) {
	cards := &stubCards{card: nil}
	svc := newTestService(cards, &stubGate{}, stubOrgGate{})

	res, err := svc.Resolve(context.Background(), testOrgID, testUserID, []pricingdomain.LineItemInput{
		{LineNumber: 1, Description: "Development work", Quantity: decimal.NewFromInt(1)},
		{LineNumber: 2, Description: "Design review", Quantity: decimal.NewFromInt(1)},
	}, testDate)
	require.NoError(t, err)
	assert.Empty(t, res.Lines)
	require.Len(t, res.Failures, 2)
	for _, failure := range res.Failures {
		assert.Equal(t, pricingdomain.ReasonNoActiveRateCard, failure.Reason)
	}
	assert.False(t, res.OK())
}

func TestResolveUnmatchedLineFailsIndependently(t *testing.T) {
	cards := &stubCards{
		card:        testCard(),
		itemsByCode: map[string]*ratecarddomain.RateCardItem{"DEV-HOURLY": devHourlyItem()},
		items:       []ratecarddomain.RateCardItem{*devHourlyItem()},
	}
	svc := newTestService(cards, &stubGate{}, stubOrgGate{})

	res, err := svc.Resolve(context.Background(), testOrgID, testUserID, []pricingdomain.LineItemInput{
		{LineNumber: 1, Description: "Development work", ItemCode: strPtr("DEV-HOURLY"), Quantity: decimal.NewFromInt(1)},
		{LineNumber: 2, Description: "Quantum flux calibration", ItemCode: strPtr("UNKNOWN-CODE"), Quantity: decimal.NewFromInt(1)},
	}, testDate)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, 1, res.Lines[0].LineNumber)

	require.Len(t, res.Failures, 1)
	assert.Equal(t, 2, res.Failures[0].LineNumber)
	assert.Equal(t, pricingdomain.ReasonNoMatch, res.Failures[0].Reason)
}

func TestResolveServiceCategoryTier(t *testing.T) {
	categoryID := snowflake.ID(400)
	design := ratecarddomain.RateCardItem{
		ID: snowflake.ID(302), RateCardID: testCardID, OrgID: testOrgID,
		ServiceCategoryID: &categoryID,
		Description:       "Design consultation", Unit: "hour",
		BaseRate: decimal.RequireFromString("120.00"), Currency: "NZD",
		TaxClass: "standard", IsActive: true,
	}
	review := ratecarddomain.RateCardItem{
		ID: snowflake.ID(303), RateCardID: testCardID, OrgID: testOrgID,
		ServiceCategoryID: &categoryID,
		Description:       "Design review session", Unit: "hour",
		BaseRate: decimal.RequireFromString("95.00"), Currency: "NZD",
		TaxClass: "standard", IsActive: true,
	}
	cards := &stubCards{
		card:  testCard(),
		items: []ratecarddomain.RateCardItem{design, review},
	}
	svc := newTestService(cards, &stubGate{}, stubOrgGate{})

	res, err := svc.Resolve(context.Background(), testOrgID, testUserID, []pricingdomain.LineItemInput{
		{LineNumber: 1, Description: "Design review session", ServiceCategoryID: &categoryID, Quantity: decimal.NewFromInt(2)},
	}, testDate)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, pricingdomain.SourceRateCard, res.Lines[0].Source)
	assert.Equal(t, "95.00", res.Lines[0].UnitPrice.StringFixed(2))
}

func TestResolveDescriptionFallback(t *testing.T) {
	cards := &stubCards{
		card:  testCard(),
		items: []ratecarddomain.RateCardItem{*devHourlyItem()},
	}
	svc := newTestService(cards, &stubGate{}, stubOrgGate{})

	res, err := svc.Resolve(context.Background(), testOrgID, testUserID, []pricingdomain.LineItemInput{
		{LineNumber: 1, Description: "development work on portal", Quantity: decimal.NewFromInt(3)},
	}, testDate)
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, pricingdomain.SourceDefault, res.Lines[0].Source)
	assert.Equal(t, "150.00", res.Lines[0].UnitPrice.StringFixed(2))
}

func TestResolveDefaultItemsLoadedOncePerBatch(t *testing.T) {
	cards := &stubCards{
		card:  testCard(),
		items: []ratecarddomain.RateCardItem{*devHourlyItem()},
	}
	svc := newTestService(cards, &stubGate{}, stubOrgGate{})

	res, err := svc.Resolve(context.Background(), testOrgID, testUserID, []pricingdomain.LineItemInput{
		{LineNumber: 1, Description: "development work", Quantity: decimal.NewFromInt(1)},
		{LineNumber: 2, Description: "more development work", Quantity: decimal.NewFromInt(1)},
		{LineNumber: 3, Description: "development work again", Quantity: decimal.NewFromInt(1)},
	}, testDate)
	require.NoError(t, err)
	require.Len(t, res.Lines, 3)
	assert.Equal(t, 1, cards.itemsCalls)
}

func TestResolveInactiveOrganization(t *testing.T) {
	cards := &stubCards{card: testCard()}
	svc := newTestService(cards, &stubGate{}, stubOrgGate{err: errors.New("organization is not active")})

	_, err := svc.Resolve(context.Background(), testOrgID, testUserID, []pricingdomain.LineItemInput{
		{LineNumber: 1, Description: "Development work", Quantity: decimal.NewFromInt(1)},
	}, testDate)
	require.Error(t, err)
}

func TestResolveZeroDateUsesClock(t *testing.T) {
	cards := &stubCards{
		card:        testCard(),
		itemsByCode: map[string]*ratecarddomain.RateCardItem{"DEV-HOURLY": devHourlyItem()},
	}
	svc := newTestService(cards, &stubGate{}, stubOrgGate{})

	res, err := svc.Resolve(context.Background(), testOrgID, testUserID, []pricingdomain.LineItemInput{
		{LineNumber: 1, Description: "Development work", ItemCode: strPtr("DEV-HOURLY"), Quantity: decimal.NewFromInt(1)},
	}, time.Time{})
	require.NoError(t, err)
	require.True(t, res.OK())
}
