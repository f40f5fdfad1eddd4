package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nsac-scraper/internal/model"
)

// SnapshotRepository is the SQL-backed HistoryStore. Each snapshot is one row;
// row id order is history order. The single history_log row records that the
// log has been started, so an emptied log reads as empty rather than missing.
type SnapshotRepository struct {
	db *Database
}

func NewSnapshotRepository(db *Database) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Append(ctx context.Context, snap model.Snapshot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to append snapshot: %w", err)
	}
	defer tx.Rollback()

	marker := tx.Rebind(`INSERT INTO history_log (id, created_at) VALUES (1, ?) ON CONFLICT (id) DO NOTHING`)
	if _, err := tx.ExecContext(ctx, marker, snap.Timestamp); err != nil {
		return fmt.Errorf("failed to append snapshot: %w", err)
	}

	query := tx.Rebind(`INSERT INTO snapshots (taken_at, challenges) VALUES (?, ?)`)
	if _, err := tx.ExecContext(ctx, query, snap.Timestamp, snap.Challenges); err != nil {
		return fmt.Errorf("failed to append snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to append snapshot: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) ReadAll(ctx context.Context) (model.HistoryLog, error) {
	history := model.HistoryLog{}
	query := `SELECT taken_at, challenges FROM snapshots ORDER BY id`
	if err := r.db.SelectContext(ctx, &history, query); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if len(history) > 0 {
		return history, nil
	}

	var started int
	if err := r.db.GetContext(ctx, &started, `SELECT COUNT(*) FROM history_log`); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if started == 0 {
		return nil, ErrHistoryNotFound
	}
	return history, nil
}

func (r *SnapshotRepository) WriteLatest(ctx context.Context, snap model.Snapshot) error {
	query := r.db.Rebind(`
		INSERT INTO latest_snapshot (id, taken_at, challenges) VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET taken_at = excluded.taken_at, challenges = excluded.challenges
	`)
	if _, err := r.db.ExecContext(ctx, query, snap.Timestamp, snap.Challenges); err != nil {
		return fmt.Errorf("failed to write latest snapshot: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) ReadLatest(ctx context.Context) (*model.Snapshot, error) {
	var snap model.Snapshot
	query := `SELECT taken_at, challenges FROM latest_snapshot WHERE id = 1`
	err := r.db.GetContext(ctx, &snap, query)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHistoryNotFound
		}
		return nil, fmt.Errorf("failed to read latest snapshot: %w", err)
	}
	return &snap, nil
}
