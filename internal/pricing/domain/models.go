// Package domain defines the pricing resolution contracts: line inputs,
// per-line results and failures, and the permission gate consulted for
// explicit price overrides.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Source records which resolution tier priced a line.
type Source string

const (
	// SourceExplicit is a caller-supplied price accepted under the
	// override permission.
	SourceExplicit Source = "explicit"
	// SourceRateCard is an item-code or service-category match.
	SourceRateCard Source = "rate_card"
	// SourceDefault is the description-similarity fallback within the
	// active default card.
	SourceDefault Source = "default"
)

// Failure reasons are part of the API contract; quote creation surfaces
// them verbatim in 422 responses.
const (
	ReasonNoActiveRateCard = "No active rate card found for organization"
	ReasonNoMatch          = "No matching rate found for item code or description"
)

// LineItemInput is the resolver's unit of work.
type LineItemInput struct {
	LineNumber        int
	Description       string
	ItemCode          *string
	ServiceCategoryID *snowflake.ID
	// UnitPrice is the caller's explicit override, honoured only when the
	// override permission is granted.
	UnitPrice *decimal.Decimal
	Quantity  decimal.Decimal
	Unit      string
}

// PricingResult is one resolved line. Prices and tax rates are exact
// decimals end to end; no float ever crosses this boundary.
type PricingResult struct {
	LineNumber     int
	Description    string
	UnitPrice      decimal.Decimal
	Currency       string
	TaxRate        decimal.Decimal
	Unit           string
	Source         Source
	RateCardID     *snowflake.ID
	RateCardItemID *snowflake.ID
}

// LineFailure reports one line that could not be resolved.
type LineFailure struct {
	LineNumber  int
	Description string
	Reason      string
}

// Resolution aggregates the batch outcome. Lines holds one entry per
// successfully resolved input, in input order; Failures lists the rest.
// The resolver never short-circuits: every line is attempted.
type Resolution struct {
	Lines    []PricingResult
	Failures []LineFailure
}

// OK reports whether every line resolved.
func (r *Resolution) OK() bool { return len(r.Failures) == 0 }

// Decision is the permission gate's answer for a resolution batch.
type Decision struct {
	Allowed bool
	Reason  string
}

// PermissionGate decides whether a user may supply explicit unit prices.
// Queried once per resolution batch, not per line.
type PermissionGate interface {
	CanOverridePrice(ctx context.Context, userID snowflake.ID) (Decision, error)
}

// Service resolves a batch of quote lines against the org's rate cards at
// an effective date.
type Service interface {
	Resolve(ctx context.Context, orgID, userID snowflake.ID, lines []LineItemInput, effectiveDate time.Time) (*Resolution, error)
}
