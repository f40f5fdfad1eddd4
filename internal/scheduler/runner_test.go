package scheduler

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsac-scraper/internal/config"
	"github.com/nsac-scraper/internal/model"
	"github.com/nsac-scraper/internal/storage"
)

var discardLogger = log.New(io.Discard)

// blockingScraper waits on release before answering, so tests can observe a running scrape.
type blockingScraper struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
	started chan struct{}
	err     error
	panics  bool
}

func (s *blockingScraper) Run(ctx context.Context, urls []string, xpath string) ([]model.ChallengeResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.started != nil {
		s.started <- struct{}{}
	}
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.panics {
		panic("browser crashed")
	}
	if s.err != nil {
		return nil, s.err
	}

	results := make([]model.ChallengeResult, len(urls))
	for i := range urls {
		results[i] = model.ChallengeResult{Challenge: "Test", TeamCount: 10 + i}
	}
	return results, nil
}

type failingStore struct {
	storage.HistoryStore
}

func (failingStore) Append(ctx context.Context, snap model.Snapshot) error {
	return errors.New("disk full")
}

func staticTargets(urls ...string) TargetsFunc {
	return func() (config.Targets, error) {
		return config.Targets{URLs: urls, XPath: "//p"}, nil
	}
}

func newTestRunner(t *testing.T, scraper Scraper, history storage.HistoryStore) *Runner {
	t.Helper()
	if history == nil {
		dir := t.TempDir()
		history = storage.NewFileStore(filepath.Join(dir, "history.json"), filepath.Join(dir, "teams.json"))
	}
	r := NewRunner(scraper, history, storage.NewMemoryRunLog(10), staticTargets("https://x/challenges/test/"), time.Minute, discardLogger)
	r.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		r.Shutdown(ctx)
	})
	return r
}

func waitIdle(t *testing.T, r *Runner) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Wait(ctx))
}

func TestRunner_TriggerPersistsSnapshot(t *testing.T) {
	dir := t.TempDir()
	history := storage.NewFileStore(filepath.Join(dir, "history.json"), filepath.Join(dir, "teams.json"))
	r := newTestRunner(t, &blockingScraper{}, history)

	run, err := r.Trigger("api")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.Equal(t, "api", run.TriggeredBy)
	assert.NotEmpty(t, run.ID)
	waitIdle(t, r)

	entries, err := history.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2025-01-01T00:00:00Z", entries[0].Timestamp)
	assert.Equal(t, model.ChallengeResults{{Challenge: "Test", TeamCount: 10}}, entries[0].Challenges)

	latest, err := history.ReadLatest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entries[0], *latest)

	status := r.Status()
	assert.Equal(t, model.RunnerStatusIdle, status.Status)
	require.NotNil(t, status.LastRun)
	assert.Equal(t, run.ID, status.LastRun.ID)
	assert.Equal(t, model.RunStatusCompleted, status.LastRun.Status)
	assert.Equal(t, 1, status.LastRun.ChallengeCount)
}

func TestRunner_SingleFlight(t *testing.T) {
	scraper := &blockingScraper{release: make(chan struct{}), started: make(chan struct{}, 1)}
	r := newTestRunner(t, scraper, nil)

	first, err := r.Trigger("api")
	require.NoError(t, err)
	<-scraper.started

	assert.Equal(t, model.RunnerStatusRunning, r.Status().Status)

	second, err := r.Trigger("api")
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)

	_, err = r.RunNow(context.Background(), "cli")
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	close(scraper.release)
	waitIdle(t, r)

	assert.Equal(t, 1, scraper.calls)
	assert.Equal(t, model.RunnerStatusIdle, r.Status().Status)
}

func TestRunner_IdleAfterScrapeError(t *testing.T) {
	r := newTestRunner(t, &blockingScraper{err: errors.New("failed to launch browser")}, nil)

	_, err := r.Trigger("api")
	require.NoError(t, err)
	waitIdle(t, r)

	status := r.Status()
	assert.Equal(t, model.RunnerStatusIdle, status.Status)
	require.NotNil(t, status.LastRun)
	assert.Equal(t, model.RunStatusFailed, status.LastRun.Status)
	assert.Contains(t, *status.LastRun.Error, "failed to launch browser")
}

func TestRunner_IdleAfterPanic(t *testing.T) {
	r := newTestRunner(t, &blockingScraper{panics: true}, nil)

	_, err := r.Trigger("api")
	require.NoError(t, err)
	waitIdle(t, r)

	status := r.Status()
	assert.Equal(t, model.RunnerStatusIdle, status.Status)
	assert.Contains(t, *status.LastRun.Error, "browser crashed")

	_, err = r.Trigger("api")
	assert.NoError(t, err)
}

func TestRunner_StoreFailureReported(t *testing.T) {
	r := newTestRunner(t, &blockingScraper{}, failingStore{})

	finished, err := r.RunNow(context.Background(), "cli")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, model.RunStatusFailed, finished.Status)
	assert.Equal(t, model.RunnerStatusIdle, r.Status().Status)
}

func TestRunner_TargetsErrorReported(t *testing.T) {
	r := newTestRunner(t, &blockingScraper{}, nil)
	r.targets = func() (config.Targets, error) { return config.Targets{}, errors.New("bad config") }

	_, err := r.RunNow(context.Background(), "cli")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load targets")
}

func TestRunner_ShutdownCancelsAndRejects(t *testing.T) {
	scraper := &blockingScraper{release: make(chan struct{}), started: make(chan struct{}, 1)}
	r := newTestRunner(t, scraper, nil)

	_, err := r.Trigger("api")
	require.NoError(t, err)
	<-scraper.started

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Shutdown(ctx))

	status := r.Status()
	assert.Equal(t, model.RunnerStatusIdle, status.Status)
	assert.Equal(t, model.RunStatusFailed, status.LastRun.Status)

	_, err = r.Trigger("api")
	assert.ErrorIs(t, err, ErrRunnerClosed)
}

func TestRunner_RecentRuns(t *testing.T) {
	r := newTestRunner(t, &blockingScraper{}, nil)

	_, err := r.RunNow(context.Background(), "cli")
	require.NoError(t, err)
	_, err = r.RunNow(context.Background(), "cli")
	require.NoError(t, err)

	runs, err := r.RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, run := range runs {
		assert.Equal(t, model.RunStatusCompleted, run.Status)
		assert.Equal(t, "cli", run.TriggeredBy)
	}
}
