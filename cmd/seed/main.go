package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"dropzone/internal/config"
	"dropzone/internal/repository"
	"dropzone/internal/repository/postgres"
	"dropzone/internal/seed"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "seed",
		Usage: "Load, clear or reset DropZone storage",
		Commands: []*cli.Command{
			loadCmd,
			schemaCmd,
			clearCmd,
			dropCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

var loadCmd = &cli.Command{
	Name:  "load",
	Usage: "Replace all folders and files with the seed data",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "folders",
			Value: "seed/folders.yaml",
			Usage: "Folder seed file (YAML or JSON)",
		},
		&cli.StringFlag{
			Name:  "files",
			Value: "seed/files.yaml",
			Usage: "File seed file (YAML or JSON)",
		},
	},
	Action: func(c *cli.Context) error {
		data, err := seed.LoadFiles(c.String("folders"), c.String("files"))
		if err != nil {
			return err
		}
		return withStorage(c.Context, false, func(env *seedEnv) error {
			return seed.Apply(c.Context, data, env.storage.Folders, env.storage.Files, env.storage.TxManager, env.logger)
		})
	},
}

var schemaCmd = &cli.Command{
	Name:  "schema",
	Usage: "Create the postgres tables if missing",
	Action: func(c *cli.Context) error {
		return withStorage(c.Context, false, func(env *seedEnv) error {
			if env.storage.Postgres == nil {
				env.logger.Info("schema is managed by postgres only; nothing to do", "storage", env.storage.Backend)
			}
			return nil
		})
	},
}

var clearCmd = &cli.Command{
	Name:  "clear",
	Usage: "Remove all folders and files (keep schema)",
	Action: func(c *cli.Context) error {
		return withStorage(c.Context, true, func(env *seedEnv) error {
			// Apply replaces everything, so an empty data set clears the store
			return seed.Apply(c.Context, &seed.Data{}, env.storage.Folders, env.storage.Files, env.storage.TxManager, env.logger)
		})
	},
}

var dropCmd = &cli.Command{
	Name:  "drop",
	Usage: "Drop and recreate the postgres tables",
	Action: func(c *cli.Context) error {
		return withStorage(c.Context, true, func(env *seedEnv) error {
			if env.storage.Postgres == nil {
				return fmt.Errorf("drop requires the postgres backend")
			}
			if err := postgres.DropSchema(c.Context, env.storage.Postgres); err != nil {
				return err
			}
			env.logger.Info("tables dropped")
			return postgres.EnsureSchema(c.Context, env.storage.Postgres)
		})
	},
}

type seedEnv struct {
	storage *repository.Storage
	logger  *slog.Logger
}

// withStorage opens the configured backend, ensures the postgres schema and
// runs fn. Destructive commands are refused in production.
func withStorage(ctx context.Context, destructive bool, fn func(env *seedEnv) error) error {
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if destructive && cfg.Environment == "prod" {
		return fmt.Errorf("BLOCKED: cannot run destructive operations in production environment")
	}

	if cfg.StorageBackend == config.StorageMemory {
		return fmt.Errorf("the memory backend is seeded by the server on startup (SEED_FOLDERS/SEED_FILES); set STORAGE_BACKEND to postgres or leveldb")
	}

	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	logger.Info("seed command",
		"environment", cfg.Environment,
		"storage", cfg.StorageBackend,
		"table_prefix", cfg.TablePrefix,
	)

	storage, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer storage.Close()

	if storage.Postgres != nil {
		if err := postgres.EnsureSchema(ctx, storage.Postgres); err != nil {
			return err
		}
	}

	return fn(&seedEnv{storage: storage, logger: logger})
}
