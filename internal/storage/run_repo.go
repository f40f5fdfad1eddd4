package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/nsac-scraper/internal/model"
)

type RunRepository struct {
	db *Database
}

func NewRunRepository(db *Database) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) Create(ctx context.Context, run *model.Run) error {
	query := r.db.Rebind(`
		INSERT INTO scrape_runs (id, status, triggered_by, started_at)
		VALUES (?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query, run.ID, run.Status, run.TriggeredBy, run.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

func (r *RunRepository) Finish(ctx context.Context, run *model.Run) error {
	query := r.db.Rebind(`
		UPDATE scrape_runs
		SET status = ?, finished_at = ?, duration_ms = ?, challenge_count = ?, failed_count = ?, snapshot_timestamp = ?, error = ?
		WHERE id = ?
	`)
	_, err := r.db.ExecContext(ctx, query,
		run.Status, run.FinishedAt, run.Duration, run.ChallengeCount, run.FailedCount, run.SnapshotTime, run.Error, run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

func (r *RunRepository) FindRecent(ctx context.Context, limit int) ([]model.Run, error) {
	runs := []model.Run{}
	query := r.db.Rebind(`
		SELECT id, status, triggered_by, started_at, finished_at, duration_ms, challenge_count, failed_count, snapshot_timestamp, error
		FROM scrape_runs ORDER BY started_at DESC LIMIT ?
	`)
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to find recent runs: %w", err)
	}
	return runs, nil
}

// MemoryRunLog keeps the most recent runs in memory for the file backend.
type MemoryRunLog struct {
	mu   sync.Mutex
	size int
	runs []model.Run // newest last
}

func NewMemoryRunLog(size int) *MemoryRunLog {
	if size < 1 {
		size = 1
	}
	return &MemoryRunLog{size: size}
}

func (l *MemoryRunLog) Create(ctx context.Context, run *model.Run) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.runs = append(l.runs, *run)
	if len(l.runs) > l.size {
		l.runs = l.runs[len(l.runs)-l.size:]
	}
	return nil
}

func (l *MemoryRunLog) Finish(ctx context.Context, run *model.Run) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.runs {
		if l.runs[i].ID == run.ID {
			l.runs[i] = *run
			return nil
		}
	}
	return fmt.Errorf("run %s not found", run.ID)
}

func (l *MemoryRunLog) FindRecent(ctx context.Context, limit int) ([]model.Run, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	runs := []model.Run{}
	for i := len(l.runs) - 1; i >= 0 && len(runs) < limit; i-- {
		runs = append(runs, l.runs[i])
	}
	return runs, nil
}
