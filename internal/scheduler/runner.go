package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nsac-scraper/internal/config"
	"github.com/nsac-scraper/internal/model"
	"github.com/nsac-scraper/internal/storage"
)

var (
	ErrAlreadyRunning = errors.New("scraper is already running")
	ErrRunnerClosed   = errors.New("scraper runner is shut down")
)

// Scraper turns a target list into one result per url.
type Scraper interface {
	Run(ctx context.Context, urls []string, xpath string) ([]model.ChallengeResult, error)
}

// TargetsFunc loads the targets at the start of each run.
type TargetsFunc func() (config.Targets, error)

// Runner allows at most one scrape at a time and tracks whether one is in progress.
type Runner struct {
	scraper    Scraper
	history    storage.HistoryStore
	runs       storage.RunLog
	targets    TargetsFunc
	runTimeout time.Duration
	logger     *log.Logger
	now        func() time.Time

	mu      sync.Mutex
	current *model.Run
	last    *model.Run
	closed  bool
	cancel  context.CancelFunc
	done    chan struct{}

	baseCtx    context.Context
	baseCancel context.CancelFunc
}

func NewRunner(
	scraper Scraper,
	history storage.HistoryStore,
	runs storage.RunLog,
	targets TargetsFunc,
	runTimeout time.Duration,
	logger *log.Logger,
) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	if runs == nil {
		runs = storage.NewMemoryRunLog(1)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		scraper:    scraper,
		history:    history,
		runs:       runs,
		targets:    targets,
		runTimeout: runTimeout,
		logger:     logger.WithPrefix("runner"),
		now:        time.Now,
		baseCtx:    ctx,
		baseCancel: cancel,
	}
}

// Trigger starts a scrape in the background and returns its run record. If a
// scrape is already in progress it returns that run with ErrAlreadyRunning.
func (r *Runner) Trigger(triggeredBy string) (*model.Run, error) {
	run, ctx, err := r.begin(r.baseCtx, triggeredBy)
	if err != nil {
		return run, err
	}

	started := *run
	go r.execute(ctx, run)
	return &started, nil
}

// RunNow performs a scrape synchronously under the same single-flight guard.
func (r *Runner) RunNow(ctx context.Context, triggeredBy string) (*model.Run, error) {
	run, runCtx, err := r.begin(ctx, triggeredBy)
	if err != nil {
		return run, err
	}

	finished := r.execute(runCtx, run)
	if finished.Error != nil {
		return &finished, errors.New(*finished.Error)
	}
	return &finished, nil
}

// begin performs the idle → running transition.
func (r *Runner) begin(parent context.Context, triggeredBy string) (*model.Run, context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, nil, ErrRunnerClosed
	}
	if r.current != nil {
		current := *r.current
		return &current, nil, ErrAlreadyRunning
	}

	run := &model.Run{
		ID:          uuid.NewString(),
		Status:      model.RunStatusRunning,
		TriggeredBy: triggeredBy,
		StartedAt:   r.now().UTC(),
	}

	var ctx context.Context
	var cancel context.CancelFunc
	if r.runTimeout > 0 {
		ctx, cancel = context.WithTimeout(parent, r.runTimeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	if parent != r.baseCtx {
		// Shutdown must reach synchronous runs too.
		stop := context.AfterFunc(r.baseCtx, cancel)
		prev := cancel
		cancel = func() {
			stop()
			prev()
		}
	}

	r.current = run
	r.cancel = cancel
	r.done = make(chan struct{})
	return run, ctx, nil
}

type outcome struct {
	challenges   int
	failed       int
	snapshotTime *string
}

// execute runs one scrape. Every exit path, panics included, goes through
// finish, which returns the runner to idle.
func (r *Runner) execute(ctx context.Context, run *model.Run) (finished model.Run) {
	logger := r.logger.With("run_id", run.ID, "triggered_by", run.TriggeredBy)

	started := *run
	if err := r.runs.Create(ctx, &started); err != nil {
		logger.Warn("failed to record run start", "err", err)
	}
	logger.Info("scrape started")

	var res outcome
	var err error
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("scrape panicked: %v", p)
		}
		finished = r.finish(run, res, err, logger)
	}()

	res, err = r.scrape(ctx)
	return finished
}

func (r *Runner) scrape(ctx context.Context) (outcome, error) {
	var res outcome

	targets, err := r.targets()
	if err != nil {
		return res, fmt.Errorf("failed to load targets: %w", err)
	}

	results, err := r.scraper.Run(ctx, targets.URLs, targets.XPath)
	if err != nil {
		return res, err
	}

	snap := model.NewSnapshot(r.now(), results)
	res.challenges = len(snap.Challenges)
	res.failed = snap.Challenges.Failures()

	// Persistence outlives the run timeout so a finished scrape is not lost at the last step.
	storeCtx := context.WithoutCancel(ctx)
	if err := r.history.Append(storeCtx, snap); err != nil {
		return res, fmt.Errorf("failed to save history: %w", err)
	}
	res.snapshotTime = &snap.Timestamp
	if err := r.history.WriteLatest(storeCtx, snap); err != nil {
		return res, fmt.Errorf("failed to save latest snapshot: %w", err)
	}
	return res, nil
}

func (r *Runner) finish(run *model.Run, res outcome, err error, logger *log.Logger) model.Run {
	r.mu.Lock()
	run.ChallengeCount = res.challenges
	run.FailedCount = res.failed
	run.SnapshotTime = res.snapshotTime
	run.Finish(r.now().UTC(), err)
	finished := *run
	r.last = &finished
	r.current = nil
	r.cancel()
	r.cancel = nil
	close(r.done)
	r.mu.Unlock()

	if err != nil {
		logger.Error("scrape failed", "err", err, "duration_ms", *finished.Duration)
	} else {
		logger.Info("scrape completed", "challenges", finished.ChallengeCount, "failed", finished.FailedCount, "duration_ms", *finished.Duration)
	}
	if rerr := r.runs.Finish(context.Background(), &finished); rerr != nil {
		logger.Warn("failed to record run result", "err", rerr)
	}
	return finished
}

// Status reports idle or running, with the current and last finished run.
func (r *Runner) Status() model.StatusReport {
	r.mu.Lock()
	defer r.mu.Unlock()

	report := model.StatusReport{Status: model.RunnerStatusIdle}
	if r.current != nil {
		current := *r.current
		report.Status = model.RunnerStatusRunning
		report.CurrentRun = &current
	}
	if r.last != nil {
		last := *r.last
		report.LastRun = &last
	}
	return report
}

func (r *Runner) RecentRuns(ctx context.Context, limit int) ([]model.Run, error) {
	return r.runs.FindRecent(ctx, limit)
}

// Wait blocks until no scrape is in progress or ctx is done.
func (r *Runner) Wait(ctx context.Context) error {
	r.mu.Lock()
	done := r.done
	running := r.current != nil
	r.mu.Unlock()

	if !running {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown refuses new runs, cancels the one in progress and waits for it to wind down.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.baseCancel()
	return r.Wait(ctx)
}
