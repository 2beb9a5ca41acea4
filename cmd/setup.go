package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/festlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the run history database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
}

// SetupConfig writes the embedded example config to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	r.logger.Info("config file created", "path", r.configPath)
	r.writePlain("✓ Config written to %s\n\n", r.configPath)
	r.writePlain("Next steps:\n")
	r.writePlain("1. Add your Spotify app's client_id and client_secret\n")
	r.writePlain("2. Run `festlist auth login`\n")
	return nil
}
