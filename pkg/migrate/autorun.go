package migrate

import (
	"context"
	"fmt"

	"github.com/forkline/storefront/pkg/config"
	"github.com/forkline/storefront/pkg/db"
	"github.com/forkline/storefront/pkg/db/models"
	"github.com/forkline/storefront/pkg/logger"
)

// Models lists every table owned by the storefront, in dependency order.
func Models() []any {
	return []any{
		&models.Restaurant{},
		&models.MenuItem{},
		&models.DeliveryRequest{},
	}
}

// MaybeRunDev migrates the schema automatically when running in dev mode with
// the auto-migrate flag enabled. SQLite databases are migrated from the gorm
// models since the SQL files target Postgres.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": cfg.DB.Driver, "dir": DefaultDir})

	if cfg.FeatureFlags.UseSQLite || cfg.DB.Driver == db.DriverSQLite {
		logg.Info(ctx, "running gorm auto-migrate (sqlite)")
		if err := client.DB().WithContext(ctx).AutoMigrate(Models()...); err != nil {
			return fmt.Errorf("auto-migrating sqlite: %w", err)
		}
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	logg.Info(ctx, "running goose migrations (dev auto-run)")
	if err := Run(ctx, sqlDB, DialectFor(cfg.DB.Driver), DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	logg.Info(ctx, "goose migrations completed")
	return nil
}
