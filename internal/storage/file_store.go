package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nsac-scraper/internal/model"
)

// FileStore keeps history as a pretty-printed JSON array and the latest snapshot
// in a second file. Every write replaces the file atomically.
type FileStore struct {
	historyPath string
	latestPath  string
}

func NewFileStore(historyPath, latestPath string) *FileStore {
	return &FileStore{historyPath: historyPath, latestPath: latestPath}
}

func (s *FileStore) HistoryPath() string { return s.historyPath }

func (s *FileStore) Append(ctx context.Context, snap model.Snapshot) error {
	history, err := s.ReadAll(ctx)
	if err != nil && !errors.Is(err, ErrHistoryNotFound) {
		return err
	}
	history = append(history, snap)

	if err := writeJSONAtomic(s.historyPath, history); err != nil {
		return fmt.Errorf("failed to append snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) ReadAll(ctx context.Context) (model.HistoryLog, error) {
	data, err := os.ReadFile(s.historyPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrHistoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	history := model.HistoryLog{}
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrHistoryCorrupt, s.historyPath, err)
	}
	return history, nil
}

func (s *FileStore) WriteLatest(ctx context.Context, snap model.Snapshot) error {
	if err := writeJSONAtomic(s.latestPath, snap); err != nil {
		return fmt.Errorf("failed to write latest snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) ReadLatest(ctx context.Context) (*model.Snapshot, error) {
	data, err := os.ReadFile(s.latestPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrHistoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read latest snapshot: %w", err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrHistoryCorrupt, s.latestPath, err)
	}
	return &snap, nil
}

// writeJSONAtomic writes v next to path and renames it into place, so readers
// see either the old file or the new one.
func writeJSONAtomic(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
