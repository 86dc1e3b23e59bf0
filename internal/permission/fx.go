package permission

import (
	"go.uber.org/fx"

	pricingdomain "github.com/pivotalhq/pivotal/internal/pricing/domain"
)

var Module = fx.Module("permission",
	fx.Provide(NewCasbinGate),
	fx.Provide(func(g *CasbinGate) pricingdomain.PermissionGate { return g }),
)
