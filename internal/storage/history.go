package storage

import (
	"context"
	"errors"

	"github.com/nsac-scraper/internal/model"
)

var (
	// ErrHistoryNotFound means no snapshot has ever been written.
	ErrHistoryNotFound = errors.New("history not found")
	// ErrHistoryCorrupt means the stored history could not be decoded.
	ErrHistoryCorrupt = errors.New("history is corrupt")
)

// HistoryStore keeps the append-only log of snapshots and the latest one on its own.
// It does not serialize writers; callers must not append concurrently.
type HistoryStore interface {
	Append(ctx context.Context, snap model.Snapshot) error
	ReadAll(ctx context.Context) (model.HistoryLog, error)
	WriteLatest(ctx context.Context, snap model.Snapshot) error
	ReadLatest(ctx context.Context) (*model.Snapshot, error)
}

// RunLog records scrape runs for status reporting.
type RunLog interface {
	Create(ctx context.Context, run *model.Run) error
	Finish(ctx context.Context, run *model.Run) error
	FindRecent(ctx context.Context, limit int) ([]model.Run, error)
}
