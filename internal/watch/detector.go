package watch

import (
	"time"

	"git.home.luguber.info/inful/favwatch/internal/presence"
	"git.home.luguber.info/inful/favwatch/internal/state"
)

// Event classifies an outcome of comparing a fresh snapshot against the
// last known record.
type Event int

const (
	EventNone Event = iota
	// EventFirstObservation is the first successful sighting of a favorite
	// whose prior state was unknown. It establishes state but fires no
	// notification, so newly added favorites never cause a storm.
	EventFirstObservation
	EventWentOnline
	EventWentOffline
	EventLevelUp
	EventDied
)

func (e Event) String() string {
	switch e {
	case EventFirstObservation:
		return "first_observation"
	case EventWentOnline:
		return "went_online"
	case EventWentOffline:
		return "went_offline"
	case EventLevelUp:
		return "level_up"
	case EventDied:
		return "died"
	default:
		return "none"
	}
}

// Notifiable reports whether the event warrants a user notification.
func (e Event) Notifiable() bool {
	switch e {
	case EventWentOnline, EventWentOffline, EventLevelUp, EventDied:
		return true
	default:
		return false
	}
}

// Detect compares prev against a fresh snapshot taken at now and returns the
// updated record plus the detected events.
//
// A failed observation leaves the record completely untouched, including the
// last-observed timestamp: stored state is sticky under failure so transient
// network errors can never flip presence or trigger notifications. Since is
// only advanced on an actual presence change, never on identical repeats,
// and never by level or death updates.
//
// The first successful sighting records everything the snapshot carries as
// baseline and yields only FirstObservation: no level or death alerts fire
// without a prior value to compare against. Afterwards a presence flip, a
// level increase and a new death key are detected independently, so one
// cycle can yield several events for the same favorite.
func Detect(prev state.FavoriteState, snap presence.Snapshot, now time.Time) (state.FavoriteState, []Event) {
	if !snap.Observation.Succeeded() {
		return prev, nil
	}

	observed := state.PresenceOffline
	if snap.Observation == presence.ObservedOnline {
		observed = state.PresenceOnline
	}

	next := prev
	next.LastObserved = now

	if !prev.LastKnown.Known() {
		next.LastKnown = observed
		next.Since = now
		next.Level = snap.Level
		next.LastDeath = snap.LastDeath
		return next, []Event{EventFirstObservation}
	}

	var events []Event

	if prev.LastKnown != observed {
		next.LastKnown = observed
		next.Since = now
		if observed == state.PresenceOnline {
			events = append(events, EventWentOnline)
		} else {
			events = append(events, EventWentOffline)
		}
	}

	// Missing extras carry the previous value forward rather than resetting
	// the baseline, so a sparse snapshot never fakes a later change.
	if snap.Level > 0 {
		if prev.Level > 0 && snap.Level > prev.Level {
			events = append(events, EventLevelUp)
		}
		next.Level = snap.Level
	}
	if snap.LastDeath != "" {
		if prev.LastDeath != "" && snap.LastDeath != prev.LastDeath {
			events = append(events, EventDied)
		}
		next.LastDeath = snap.LastDeath
	}

	return next, events
}
