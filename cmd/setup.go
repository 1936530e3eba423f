package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/duesync/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the example configuration file.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); err == nil {
		if !cmd.Bool("force") {
			return fmt.Errorf("%w: %s already exists (use --force to overwrite)", shared.ErrInvalidArgument, configPath)
		}
		if err := os.Remove(configPath); err != nil {
			return fmt.Errorf("failed to remove existing config: %w", err)
		}
	}

	if err := shared.CreateConfigFile(configPath); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	r.logger.Info("config file created", "path", configPath)
	r.writePlain("✓ Configuration written to %s\n", configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set credentials.canvas.api_key and credentials.todoist.api_key (or CANVAS_API_KEY / TODOIST_API_KEY)\n")
	r.writePlain("2. Set sync.target_project_id to the Todoist project that receives assignments\n")
	r.writePlain("3. Run 'duesync courses' to find course IDs for sync.exclude_courses\n")
	return nil
}

// SetupDatabase initializes the journal database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config, err := r.loadConfig(cmd)
	if errors.Is(err, shared.ErrMissingConfig) {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		config, err = r.loadConfig(cmd)
	}
	if err != nil {
		return err
	}

	dbConfig := config.Database
	if path := cmd.String("path"); path != "" {
		dbConfig.Path = path
	}

	r.logger.Info("initializing database", "path", dbConfig.Path)

	db, err := shared.OpenJournal(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", dbConfig.Path)
	r.writePlain("✓ Journal database ready at %s\n", dbConfig.Path)
	if config.Database.Path != dbConfig.Path {
		r.writePlain("Set database.path = %q in %s to record runs\n", dbConfig.Path, r.configPath)
	}
	return nil
}
