// Package permission implements the price-override permission gate on a
// casbin enforcer with policies stored in the database.
package permission

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	pricingdomain "github.com/pivotalhq/pivotal/internal/pricing/domain"
)

const (
	objectQuote         = "quote"
	actionPriceOverride = "price:override"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// CasbinGate answers override queries from the stored policy set. Users
// gain the permission directly or through a role grouping.
type CasbinGate struct {
	enforcer *casbin.Enforcer
	log      *zap.Logger
}

func NewCasbinGate(db *gorm.DB, log *zap.Logger) (*CasbinGate, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("create casbin adapter: %w", err)
	}

	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	return &CasbinGate{
		enforcer: enforcer,
		log:      log.Named("permission.gate"),
	}, nil
}

func (g *CasbinGate) CanOverridePrice(_ context.Context, userID snowflake.ID) (pricingdomain.Decision, error) {
	allowed, err := g.enforcer.Enforce(userID.String(), objectQuote, actionPriceOverride)
	if err != nil {
		return pricingdomain.Decision{}, fmt.Errorf("enforce override policy: %w", err)
	}
	if !allowed {
		return pricingdomain.Decision{
			Allowed: false,
			Reason:  "user lacks the price override permission",
		}, nil
	}
	return pricingdomain.Decision{Allowed: true}, nil
}

// StaticGate answers every query with a fixed decision; used by the CLI
// harness and tests.
type StaticGate struct {
	Allowed bool
}

func (s StaticGate) CanOverridePrice(context.Context, snowflake.ID) (pricingdomain.Decision, error) {
	if !s.Allowed {
		return pricingdomain.Decision{Allowed: false, Reason: "overrides disabled"}, nil
	}
	return pricingdomain.Decision{Allowed: true}, nil
}
