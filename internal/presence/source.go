// Package presence answers "is this character currently online?". The
// watcher only depends on the Source interface; the TibiaData client is one
// pluggable transport behind it.
package presence

// Observation classifies the outcome of a single presence query. A failed
// query is a first-class outcome, never an error that escalates: the watcher
// must be able to tell "observed offline" apart from "could not observe"
// so transient network failures never flip stored state.
type Observation int

const (
	ObservationFailed Observation = iota
	ObservedOnline
	ObservedOffline
)

func (o Observation) String() string {
	switch o {
	case ObservedOnline:
		return "online"
	case ObservedOffline:
		return "offline"
	default:
		return "failed"
	}
}

// Succeeded reports whether the query produced a usable presence value.
func (o Observation) Succeeded() bool {
	return o == ObservedOnline || o == ObservedOffline
}

// Snapshot is the full result of one presence query. Level and LastDeath are
// best-effort extras riding along with the presence answer; either may be
// absent (zero) even when the observation itself succeeded.
type Snapshot struct {
	Observation Observation
	// Level is the reported character level, 0 when unreported.
	Level int
	// LastDeath identifies the newest reported death (timestamp plus first
	// killer), empty when the character has no recent deaths.
	LastDeath string
}
