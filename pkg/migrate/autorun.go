package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/wishboard-backend/pkg/config"
	"github.com/angelmondragon/wishboard-backend/pkg/db"
	"github.com/angelmondragon/wishboard-backend/pkg/db/models"
	"github.com/angelmondragon/wishboard-backend/pkg/logger"
)

// MaybeRunDev brings the schema up to date when running in dev with the
// auto-migrate flag on. Postgres goes through goose; the sqlite dev driver
// cannot run the Postgres SQL so it is migrated from the models instead.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	if cfg.DB.IsSQLite() {
		ctx = logg.WithField(ctx, "env", cfg.App.Env)
		logg.Info(ctx, "auto-migrating sqlite schema (dev auto-run)")
		if err := AutoMigrateModels(client); err != nil {
			return err
		}
		logg.Info(ctx, "sqlite schema ready")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "source": "embedded"})
	logg.Info(ctx, "running goose migrations (dev auto-run)")

	if err := RunEmbedded(ctx, sqlDB, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}

// AutoMigrateModels creates the tables straight from the GORM models.
func AutoMigrateModels(client *db.Client) error {
	if client == nil {
		return fmt.Errorf("db client is required")
	}
	if err := client.DB().AutoMigrate(&models.User{}, &models.Wishboard{}, &models.Image{}); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}
	return nil
}
