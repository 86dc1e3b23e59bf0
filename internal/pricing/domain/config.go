package domain

import "github.com/shopspring/decimal"

// Config carries the tax table. Rates are percentages (15 means 15%).
type Config struct {
	// DefaultTaxRate applies to explicit overrides and to items whose tax
	// class has no entry in TaxRates.
	DefaultTaxRate decimal.Decimal
	TaxRates       map[string]decimal.Decimal
}

// TaxRateFor maps a rate card item's tax class to its rate.
func (c Config) TaxRateFor(taxClass string) decimal.Decimal {
	if rate, ok := c.TaxRates[taxClass]; ok {
		return rate
	}
	return c.DefaultTaxRate
}
