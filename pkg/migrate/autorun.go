package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/medsupply/cotizaciones-api/pkg/config"
	"github.com/medsupply/cotizaciones-api/pkg/db"
	"github.com/medsupply/cotizaciones-api/pkg/logger"
)

// MaybeRunDev applies the embedded migrations when the auto-migrate flag is on
// and the app runs in dev mode or against the local SQLite file.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	if !cfg.App.IsDev() && !cfg.FeatureFlags.UseSQLite {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": client.Dialect()})
	logg.Info(ctx, "running goose migrations (dev auto-run)")

	if err := Up(ctx, sqlDB, client.Dialect()); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}

// Up applies the embedded migrations for driver. Used by the dev autorun and
// by tests that need a real schema.
func Up(ctx context.Context, db *sql.DB, driver string) error {
	runner, err := NewRunner(db, driver, "")
	if err != nil {
		return err
	}
	_, err = runner.Up(ctx)
	return err
}
