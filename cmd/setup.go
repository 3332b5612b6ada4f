package main

import (
	"context"

	"github.com/desertthunder/sheetstats/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		path = "config.toml"
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Configuration written to %s\n", path)
	r.writePlain("Set %s (or stats.token) and %s before running a job.\n", shared.EnvToken, shared.EnvSpreadsheetID)
	return nil
}

// SetupDatabase initializes the database and runs migrations, or rolls the latest one back.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if cmd.Bool("rollback") {
		if err := shared.RollbackMigration(db); err != nil {
			return err
		}
		return r.writePlain("✓ Rolled back the latest migration of %s\n", r.config.Database.Path)
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.Path)
	return r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
}

// requireSQLite explains that a command only reads the local database.
func (r *Runner) requireSQLite() {
	if r.config.Store.Driver != shared.DriverSQLite {
		r.logger.Warn("jobs will not read this database", "driver", r.config.Store.Driver)
	}
}
