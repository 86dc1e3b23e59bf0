package service

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/pivotalhq/pivotal/internal/cache/domain"
	"github.com/pivotalhq/pivotal/internal/cache/keys"
)

type Param struct {
	fx.In

	Provider  domain.Provider
	Keys      *keys.Builder
	Collector domain.Collector `optional:"true"`
	Config    domain.Config
	Log       *zap.Logger
}

func Provide(p Param) *Wrapper {
	return NewWrapper(p.Provider, p.Keys, p.Collector, p.Config, p.Log)
}
