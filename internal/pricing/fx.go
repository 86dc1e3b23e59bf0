package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"

	"github.com/pivotalhq/pivotal/internal/config"
	pricingdomain "github.com/pivotalhq/pivotal/internal/pricing/domain"
	"github.com/pivotalhq/pivotal/internal/pricing/service"
)

var Module = fx.Module("pricing.service",
	fx.Provide(NewConfig),
	fx.Provide(service.NewService),
)

func NewConfig(cfg config.Config) (pricingdomain.Config, error) {
	defaultRate, err := decimal.NewFromString(cfg.Pricing.DefaultTaxRate)
	if err != nil {
		return pricingdomain.Config{}, fmt.Errorf("parse default tax rate %q: %w", cfg.Pricing.DefaultTaxRate, err)
	}

	rates := make(map[string]decimal.Decimal, len(cfg.Pricing.TaxRates))
	for class, raw := range cfg.Pricing.TaxRates {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return pricingdomain.Config{}, fmt.Errorf("parse tax rate for class %q: %w", class, err)
		}
		rates[class] = rate
	}

	return pricingdomain.Config{
		DefaultTaxRate: defaultRate,
		TaxRates:       rates,
	}, nil
}
