// Package db provides the gorm handle with tracing and metrics plugins.
package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormprometheus "gorm.io/plugin/prometheus"

	"github.com/pivotalhq/pivotal/internal/config"
)

var Module = fx.Module("db",
	fx.Provide(New),
)

func New(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Use(otelgorm.NewPlugin()); err != nil {
		return nil, fmt.Errorf("install otel plugin: %w", err)
	}
	if err := db.Use(gormprometheus.New(gormprometheus.Config{DBName: "pivotal"})); err != nil {
		return nil, fmt.Errorf("install prometheus plugin: %w", err)
	}

	log.Named("db").Info("database connected", zap.String("driver", cfg.Database.Driver))
	return db, nil
}
