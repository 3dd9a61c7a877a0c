package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/iptvx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the config template when missing and applies database migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); err == nil {
		r.logger.Info("using existing config", "path", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		config, err := shared.LoadConfig(configPath)
		if err != nil {
			return err
		}
		r.config = config
		r.writePlain("✓ Config written to %s\n", configPath)
	}

	if r.config.Database.Path == "" {
		r.writePlain("Run history is disabled (database.path is empty)\n")
		return nil
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)
	if _, err := r.history(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	versions, err := shared.AppliedVersions(r.db)
	if err != nil {
		return err
	}
	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ Database ready at %s (%d migrations applied)\n", r.config.Database.Path, len(versions))
}
