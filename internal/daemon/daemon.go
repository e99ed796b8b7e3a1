// Package daemon wires the monitoring core into a long-running process: a
// gocron-driven poll schedule, a state-file watcher that picks up CLI edits
// immediately, and a small HTTP surface for status and metrics.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/favwatch/internal/config"
	"git.home.luguber.info/inful/favwatch/internal/history"
	"git.home.luguber.info/inful/favwatch/internal/logfields"
	"git.home.luguber.info/inful/favwatch/internal/metrics"
	"git.home.luguber.info/inful/favwatch/internal/notify"
	"git.home.luguber.info/inful/favwatch/internal/presence"
	"git.home.luguber.info/inful/favwatch/internal/state"
	"git.home.luguber.info/inful/favwatch/internal/watch"
)

// HistoryFileName is the transition history database inside the data dir.
const HistoryFileName = "history.db"

// Daemon owns the watcher session for the lifetime of the process.
type Daemon struct {
	cfg      *config.Config
	store    *state.FileStore
	watcher  *watch.Watcher
	hist     *history.SQLiteStore
	natsSink *notify.NATSNotifier
	registry *prom.Registry

	scheduler gocron.Scheduler
	job       gocron.Job
	workers   WorkerGroup

	stateWatcher *StateWatcher
	httpServer   *http.Server

	runCtx    context.Context
	runCancel context.CancelFunc

	mu              sync.Mutex
	currentInterval time.Duration
	lastReport      watch.CycleReport
	lastCycleAt     time.Time
	startedAt       time.Time
}

// New assembles a daemon from configuration. The returned daemon is not
// running until Start is called.
func New(cfg *config.Config) (*Daemon, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	store := state.NewFileStore(cfg.DataDir)

	hist, err := history.NewSQLiteStore(filepath.Join(cfg.DataDir, HistoryFileName))
	if err != nil {
		return nil, fmt.Errorf("open transition history: %w", err)
	}

	d := &Daemon{
		cfg:      cfg,
		store:    store,
		hist:     hist,
		registry: prom.NewRegistry(),
	}

	notifiers := notify.Multi{notify.LogNotifier{}}
	if cfg.Notify.NATSURL != "" {
		sink, err := notify.NewNATSNotifier(cfg.Notify.NATSURL, cfg.Notify.NATSSubject)
		if err != nil {
			_ = hist.Close()
			return nil, fmt.Errorf("notification transport: %w", err)
		}
		d.natsSink = sink
		notifiers = append(notifiers, sink)
		slog.Info("Publishing notifications to NATS", logfields.Subject(cfg.Notify.NATSSubject))
	}

	recorder := metrics.NewPrometheusRecorder(d.registry)

	sourceOpts := []presence.TibiaDataOption{
		presence.WithRetryPolicy(cfg.Presence.Retry.Policy()),
	}
	if cfg.Presence.BaseURL != "" {
		sourceOpts = append(sourceOpts, presence.WithBaseURL(cfg.Presence.BaseURL))
	}
	source := presence.NewTibiaDataClient(sourceOpts...)

	d.watcher = watch.New(store, source,
		watch.WithNotifier(notifiers),
		watch.WithTransitionSink(hist),
		watch.WithRecorder(recorder),
		watch.WithQueryTimeout(cfg.QueryTimeout()),
	)

	return d, nil
}

// Store exposes the shared state store (used by the start guard).
func (d *Daemon) Store() state.Store {
	return d.store
}

// History exposes the transition history store.
func (d *Daemon) History() *history.SQLiteStore {
	return d.hist
}

// Start brings up the schedule, the state-file watcher and the HTTP
// surface. It returns once everything is running; the work itself happens
// on scheduler and worker goroutines until Stop.
func (d *Daemon) Start(ctx context.Context) error {
	d.runCtx, d.runCancel = context.WithCancel(ctx)
	d.startedAt = time.Now()

	interval := state.Default().PollInterval()
	if m, err := d.store.Load(); err == nil {
		interval = m.PollInterval()
	}
	d.currentInterval = interval

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	d.scheduler = scheduler

	job, err := scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(d.runCycle),
		gocron.WithName("poll-cycle"),
		// Reschedule mode guarantees the next cycle starts no earlier than
		// one interval after the previous cycle's start, and never overlaps.
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("schedule poll cycle: %w", err)
	}
	d.job = job

	scheduler.Start()
	slog.Info("Watcher schedule started", logfields.Interval(interval.String()))

	sw, err := NewStateWatcher(d.store.Path(), d.onStateFileChanged)
	if err != nil {
		return fmt.Errorf("create state watcher: %w", err)
	}
	d.stateWatcher = sw
	if err := sw.Start(d.runCtx, &d.workers); err != nil {
		return fmt.Errorf("start state watcher: %w", err)
	}

	if d.cfg.ListenAddr != "" {
		d.httpServer = d.newHTTPServer()
		d.workers.Go(func() {
			slog.Info("Status server listening", slog.String("addr", d.cfg.ListenAddr))
			if err := d.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Status server failed", logfields.Error(err))
			}
		})
	}

	return nil
}

// Stop tears the daemon down with bounded latency: in-flight queries are
// cancelled via context, the scheduler drains, and workers are waited for
// no longer than ctx allows.
func (d *Daemon) Stop(ctx context.Context) error {
	slog.Info("Stopping watcher daemon")

	if d.runCancel != nil {
		d.runCancel()
	}

	var firstErr error
	if d.scheduler != nil {
		if err := d.scheduler.Shutdown(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shutdown scheduler: %w", err)
		}
	}
	if d.stateWatcher != nil {
		if err := d.stateWatcher.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close state watcher: %w", err)
		}
	}
	if d.httpServer != nil {
		if err := d.httpServer.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shutdown status server: %w", err)
		}
	}
	if err := d.workers.StopAndWait(ctx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("wait for workers: %w", err)
	}
	if d.hist != nil {
		if err := d.hist.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close history: %w", err)
		}
	}
	if d.natsSink != nil {
		d.natsSink.Close()
	}

	return firstErr
}

// runCycle executes one polling pass and applies any interval change the
// CLI made since the last pass.
func (d *Daemon) runCycle() {
	if d.runCtx.Err() != nil {
		return
	}

	report := d.watcher.RunCycle(d.runCtx)

	d.mu.Lock()
	d.lastReport = report
	d.lastCycleAt = time.Now()
	previous := d.currentInterval
	d.mu.Unlock()

	if report.SkipReason != "" {
		slog.Debug("Cycle skipped", logfields.CycleID(report.CycleID), slog.String("reason", report.SkipReason))
	} else {
		slog.Info("Cycle completed",
			logfields.CycleID(report.CycleID),
			logfields.Favorites(report.Polled),
			slog.Int("transitions", report.Transitions))
	}

	if report.Interval > 0 && report.Interval != previous {
		d.reschedule(report.Interval)
	}
}

func (d *Daemon) reschedule(interval time.Duration) {
	d.mu.Lock()
	jobID := d.job.ID()
	d.mu.Unlock()

	job, err := d.scheduler.Update(
		jobID,
		gocron.DurationJob(interval),
		gocron.NewTask(d.runCycle),
		gocron.WithName("poll-cycle"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		slog.Error("Failed to apply new poll interval", logfields.Interval(interval.String()), logfields.Error(err))
		return
	}

	d.mu.Lock()
	d.job = job
	d.currentInterval = interval
	d.mu.Unlock()

	slog.Info("Poll interval updated", logfields.Interval(interval.String()))
}

// onStateFileChanged runs a cycle ahead of schedule after the CLI process
// wrote the state file, so adds/removes and toggles take effect right away.
// The job handle is read under the lock: reschedule swaps it concurrently
// when an interval change and a state-file write land together.
func (d *Daemon) onStateFileChanged() {
	d.mu.Lock()
	job := d.job
	d.mu.Unlock()

	slog.Info("State file changed externally; polling now")
	if err := job.RunNow(); err != nil {
		slog.Warn("Failed to trigger immediate cycle", logfields.Error(err))
	}
}

// snapshot returns the last cycle report and its wall-clock time.
func (d *Daemon) snapshot() (watch.CycleReport, time.Time, time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastReport, d.lastCycleAt, d.currentInterval
}
