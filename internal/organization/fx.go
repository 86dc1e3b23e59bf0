package organization

import (
	"go.uber.org/fx"

	"github.com/pivotalhq/pivotal/internal/organization/repository"
	"github.com/pivotalhq/pivotal/internal/organization/service"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	fx.Provide(service.ProvideService),
	fx.Provide(service.ProvideGate),
)
