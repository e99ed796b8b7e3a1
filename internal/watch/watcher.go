package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/favwatch/internal/logfields"
	"git.home.luguber.info/inful/favwatch/internal/metrics"
	"git.home.luguber.info/inful/favwatch/internal/notify"
	"git.home.luguber.info/inful/favwatch/internal/presence"
	"git.home.luguber.info/inful/favwatch/internal/state"
)

// DefaultQueryTimeout bounds a single presence query within a cycle.
const DefaultQueryTimeout = 12 * time.Second

// Cycle skip reasons reported in metrics and logs.
const (
	SkipDisabled     = "disabled"
	SkipNoFavorites  = "no_favorites"
	SkipCorruptState = "corrupt_state"
)

// Transition is a detected presence change handed to sinks (history log,
// event publishers).
type Transition struct {
	CycleID    string
	Character  string
	Event      Event
	Presence   state.Presence
	ObservedAt time.Time
}

// TransitionSink receives detected transitions. Sink failures are logged and
// dropped; they never affect the cycle.
type TransitionSink interface {
	Record(ctx context.Context, t Transition) error
}

// Watcher runs poll cycles: it drives the presence source for every
// favorite, feeds the detector, requests notifications, and persists each
// favorite's updated state immediately so a crash mid-cycle cannot lose a
// detected transition.
type Watcher struct {
	store        state.Store
	source       presence.Source
	notifier     notify.Notifier
	sink         TransitionSink
	recorder     metrics.Recorder
	queryTimeout time.Duration
	now          func() time.Time
}

// Option customizes a Watcher.
type Option func(*Watcher)

// WithNotifier sets the notification sink (default: structured log).
func WithNotifier(n notify.Notifier) Option {
	return func(w *Watcher) { w.notifier = n }
}

// WithTransitionSink attaches a transition history sink.
func WithTransitionSink(s TransitionSink) Option {
	return func(w *Watcher) { w.sink = s }
}

// WithRecorder sets the metrics recorder (default: noop).
func WithRecorder(r metrics.Recorder) Option {
	return func(w *Watcher) { w.recorder = r }
}

// WithQueryTimeout bounds each presence query.
func WithQueryTimeout(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.queryTimeout = d
		}
	}
}

// WithClock substitutes the wall clock for tests.
func WithClock(now func() time.Time) Option {
	return func(w *Watcher) {
		if now != nil {
			w.now = now
		}
	}
}

// New builds a Watcher over the injected store and presence source.
func New(store state.Store, source presence.Source, opts ...Option) *Watcher {
	w := &Watcher{
		store:        store,
		source:       source,
		notifier:     notify.LogNotifier{},
		recorder:     metrics.NoopRecorder{},
		queryTimeout: DefaultQueryTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// CycleReport summarizes one poll cycle for the scheduler and status surface.
type CycleReport struct {
	CycleID     string
	SkipReason  string // empty when favorites were polled
	Polled      int
	Transitions int
	// Interval is the currently configured poll interval, re-read every
	// cycle so the scheduler can pick up changes made by the CLI process.
	Interval time.Duration
}

// RunCycle executes one full polling pass. It never returns an error: every
// failure kind is absorbed locally and at worst shortens the cycle. Only
// context cancellation cuts a pass short.
func (w *Watcher) RunCycle(ctx context.Context) CycleReport {
	report := CycleReport{
		CycleID:  uuid.NewString(),
		Interval: state.Default().PollInterval(),
	}
	start := w.now()

	m, err := w.store.Load()
	if err != nil {
		slog.Warn("Skipping cycle: state unreadable",
			logfields.CycleID(report.CycleID), logfields.Error(err))
		w.recorder.IncCycleSkipped(SkipCorruptState)
		report.SkipReason = SkipCorruptState
		return report
	}
	report.Interval = m.PollInterval()

	if !m.MonitoringEnabled {
		w.recorder.IncCycleSkipped(SkipDisabled)
		report.SkipReason = SkipDisabled
		return report
	}
	if !m.HasFavorites() {
		w.recorder.IncCycleSkipped(SkipNoFavorites)
		report.SkipReason = SkipNoFavorites
		return report
	}

	w.recorder.SetFavorites(len(m.Favorites))

	for _, name := range m.Favorites {
		if state.Key(name) == "" {
			continue
		}
		if ctx.Err() != nil {
			slog.Info("Cycle cancelled mid-pass", logfields.CycleID(report.CycleID))
			break
		}
		report.Transitions += w.pollOne(ctx, m, name, report.CycleID)
		report.Polled++
	}

	w.recorder.ObserveCycleDuration(w.now().Sub(start))
	return report
}

// pollOne queries, detects and persists a single favorite. Failures are
// isolated here so one favorite can never abort the cycle for the rest.
// Reports the number of detected events.
func (w *Watcher) pollOne(ctx context.Context, m *state.MonitorState, name, cycleID string) int {
	qctx, cancel := context.WithTimeout(ctx, w.queryTimeout)
	qstart := w.now()
	snap := w.source.Query(qctx, name)
	cancel()

	w.recorder.ObserveQueryDuration(w.now().Sub(qstart), snap.Observation.String())
	w.recorder.IncObservation(snap.Observation.String())

	prev := m.FavoriteState(name)
	next, events := Detect(prev, snap, w.now())

	slog.Debug("Favorite polled",
		logfields.CycleID(cycleID),
		logfields.Character(name),
		logfields.Presence(snap.Observation.String()),
		slog.Int("events", len(events)))

	if !snap.Observation.Succeeded() {
		// Observation failures leave stored state untouched.
		return 0
	}

	// Keep the in-cycle view consistent and persist immediately, not
	// batched. The closure re-checks membership so a favorite removed by
	// the CLI mid-cycle never gets stale state resurrected.
	m.SetFavoriteState(name, next)
	if err := w.store.Update(func(cur *state.MonitorState) error {
		if !cur.IsFavorite(name) {
			return nil
		}
		cur.SetFavoriteState(name, next)
		return nil
	}); err != nil {
		slog.Warn("State save failed; will retry next cycle",
			logfields.CycleID(cycleID), logfields.Character(name), logfields.Error(err))
		w.recorder.IncStateSaveFailure()
	}

	for _, event := range events {
		w.recorder.IncTransition(event.String())
		w.recordTransition(ctx, Transition{
			CycleID:    cycleID,
			Character:  name,
			Event:      event,
			Presence:   next.LastKnown,
			ObservedAt: next.LastObserved,
		})

		if event.Notifiable() && alertEnabled(m, event) {
			w.post(ctx, name, event, next.Level, cycleID)
		}
	}
	return len(events)
}

// alertEnabled applies the per-kind notification mutes. History and metrics
// record muted events anyway; mutes only silence delivery.
func alertEnabled(m *state.MonitorState, event Event) bool {
	switch event {
	case EventWentOnline, EventWentOffline:
		return !m.MuteOnlineAlerts
	case EventLevelUp:
		return !m.MuteLevelAlerts
	case EventDied:
		return !m.MuteDeathAlerts
	default:
		return false
	}
}

func (w *Watcher) recordTransition(ctx context.Context, t Transition) {
	if w.sink == nil {
		return
	}
	if err := w.sink.Record(ctx, t); err != nil {
		slog.Warn("Transition history write failed",
			logfields.CycleID(t.CycleID), logfields.Character(t.Character), logfields.Error(err))
	}
}

// post delivers a notification with a bounded timeout. Delivery failures are
// counted and dropped, never retried.
func (w *Watcher) post(ctx context.Context, name string, event Event, level int, cycleID string) {
	title, body := notificationFor(name, event, level)

	nctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := w.notifier.Post(nctx, title, body); err != nil {
		slog.Warn("Notification delivery failed",
			logfields.CycleID(cycleID), logfields.Character(name), logfields.Error(err))
		w.recorder.IncNotifyFailure()
	}
}

// notificationFor renders the user-facing message for an event.
func notificationFor(name string, event Event, level int) (title, body string) {
	switch event {
	case EventWentOnline:
		return "Login", fmt.Sprintf("%s is now online.", name)
	case EventLevelUp:
		return "Level Up", fmt.Sprintf("%s reached level %d!", name, level)
	case EventDied:
		return "Death", fmt.Sprintf("%s has died recently.", name)
	default:
		return "Logout", fmt.Sprintf("%s is now offline.", name)
	}
}
