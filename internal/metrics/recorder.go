package metrics

import "time"

// Recorder defines observability hooks for poll cycles and transitions.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All methods
// must be safe for nil receivers when using the NoopRecorder (allowing
// optional injection).
type Recorder interface {
	ObserveQueryDuration(d time.Duration, result string) // result: online|offline|failed
	IncObservation(result string)
	IncTransition(event string) // event: first_observation|went_online|went_offline
	ObserveCycleDuration(d time.Duration)
	IncCycleSkipped(reason string) // reason: disabled|no_favorites|corrupt_state
	SetFavorites(n int)
	IncStateSaveFailure()
	IncNotifyFailure()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveQueryDuration(time.Duration, string) {}
func (NoopRecorder) IncObservation(string)                      {}
func (NoopRecorder) IncTransition(string)                       {}
func (NoopRecorder) ObserveCycleDuration(time.Duration)         {}
func (NoopRecorder) IncCycleSkipped(string)                     {}
func (NoopRecorder) SetFavorites(int)                           {}
func (NoopRecorder) IncStateSaveFailure()                       {}
func (NoopRecorder) IncNotifyFailure()                          {}
