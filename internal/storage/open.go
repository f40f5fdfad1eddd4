package storage

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/nsac-scraper/internal/config"
)

// Backend bundles the stores one storage configuration provides.
type Backend struct {
	History HistoryStore
	Runs    RunLog
	closer  io.Closer
}

func (b *Backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

const recentRunsKept = 50

// Open builds the history store and run log selected by cfg.Storage.Backend.
func Open(cfg *config.Config) (*Backend, error) {
	switch cfg.Storage.Backend {
	case "", "file":
		return &Backend{
			History: NewFileStore(
				filepath.Join(cfg.Storage.DataDir, cfg.Storage.HistoryFile),
				filepath.Join(cfg.Storage.DataDir, cfg.Storage.LatestFile),
			),
			Runs: NewMemoryRunLog(recentRunsKept),
		}, nil
	case "postgres", "sqlite":
		db, err := NewDatabase(cfg.Storage.Backend, &cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return &Backend{
			History: NewSnapshotRepository(db),
			Runs:    NewRunRepository(db),
			closer:  db,
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
