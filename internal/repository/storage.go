package repository

import (
	"context"
	"fmt"
	"log/slog"

	"dropzone/internal/config"
	"dropzone/internal/domain/repositories"
	driveRepo "dropzone/internal/domain/repositories/drive"
	"dropzone/internal/repository/leveldb"
	"dropzone/internal/repository/memory"
	"dropzone/internal/repository/postgres"
)

// Storage bundles the repositories of one backend
type Storage struct {
	Backend   string
	Folders   driveRepo.FolderRepository
	Files     driveRepo.FileRepository
	Sessions  driveRepo.UploadSessionRepository
	TxManager repositories.TransactionManager

	// Postgres is set for the postgres backend so callers can manage the schema
	Postgres *postgres.RepositoryConfig

	closeFn func() error
}

// Close releases the backend's connections or file handles
func (s *Storage) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// Open connects the storage backend named by cfg.StorageBackend
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageMemory:
		store := memory.NewStore()
		return &Storage{
			Backend:   cfg.StorageBackend,
			Folders:   memory.NewFolderRepository(store),
			Files:     memory.NewFileRepository(store),
			Sessions:  memory.NewUploadSessionRepository(store),
			TxManager: memory.NewTransactionManager(store),
		}, nil

	case config.StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		}
		logger.Info("database connected", "table_prefix", cfg.TablePrefix)

		return &Storage{
			Backend:   cfg.StorageBackend,
			Folders:   postgres.NewFolderRepository(repoConfig),
			Files:     postgres.NewFileRepository(repoConfig),
			Sessions:  postgres.NewUploadSessionRepository(repoConfig),
			TxManager: postgres.NewTransactionManager(pool, logger),
			Postgres:  repoConfig,
			closeFn: func() error {
				pool.Close()
				return nil
			},
		}, nil

	case config.StorageLevelDB:
		store, err := leveldb.Open(ctx, cfg.LevelDBPath)
		if err != nil {
			return nil, err
		}
		logger.Info("leveldb opened", "path", cfg.LevelDBPath)

		return &Storage{
			Backend:   cfg.StorageBackend,
			Folders:   leveldb.NewFolderRepository(store),
			Files:     leveldb.NewFileRepository(store),
			Sessions:  leveldb.NewUploadSessionRepository(store),
			TxManager: leveldb.NewTransactionManager(store),
			closeFn:   store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
