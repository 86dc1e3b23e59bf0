package ratecard

import (
	"go.uber.org/fx"

	"github.com/pivotalhq/pivotal/internal/ratecard/repository"
	"github.com/pivotalhq/pivotal/internal/ratecard/service"
)

var Module = fx.Module("ratecard.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
