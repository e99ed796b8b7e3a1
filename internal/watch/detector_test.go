package watch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/favwatch/internal/presence"
	"git.home.luguber.info/inful/favwatch/internal/state"
)

var (
	t0 = time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	t1 = t0.Add(30 * time.Second)
)

func snapOf(obs presence.Observation) presence.Snapshot {
	return presence.Snapshot{Observation: obs}
}

func TestDetect_FailedObservationLeavesStateUntouched(t *testing.T) {
	cases := []struct {
		name string
		prev state.FavoriteState
	}{
		{"unknown stays unknown", state.FavoriteState{LastKnown: state.PresenceUnknown}},
		{"online stays online", state.FavoriteState{LastKnown: state.PresenceOnline, Since: t0, LastObserved: t0}},
		{"offline stays offline", state.FavoriteState{LastKnown: state.PresenceOffline, Since: t0, LastObserved: t0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, events := Detect(tc.prev, snapOf(presence.ObservationFailed), t1)
			assert.Empty(t, events)
			assert.Equal(t, tc.prev, next, "state must be sticky under failure")
		})
	}
}

func TestDetect_FirstObservationEstablishesStateWithoutNotifying(t *testing.T) {
	cases := []struct {
		name string
		obs  presence.Observation
		want state.Presence
	}{
		{"unknown to online", presence.ObservedOnline, state.PresenceOnline},
		{"unknown to offline", presence.ObservedOffline, state.PresenceOffline},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, events := Detect(state.FavoriteState{LastKnown: state.PresenceUnknown}, snapOf(tc.obs), t1)
			require.Equal(t, []Event{EventFirstObservation}, events)
			assert.False(t, events[0].Notifiable(), "first sighting must not notify")
			assert.Equal(t, tc.want, next.LastKnown)
			assert.Equal(t, t1, next.Since)
			assert.Equal(t, t1, next.LastObserved)
		})
	}
}

func TestDetect_FirstObservationRecordsBaselinesWithoutExtraEvents(t *testing.T) {
	snap := presence.Snapshot{
		Observation: presence.ObservedOnline,
		Level:       120,
		LastDeath:   "2026-07-31T22:00:00Z|a hydra",
	}

	next, events := Detect(state.FavoriteState{LastKnown: state.PresenceUnknown}, snap, t1)
	assert.Equal(t, []Event{EventFirstObservation}, events,
		"level and death baselines must not alert on first sighting")
	assert.Equal(t, 120, next.Level)
	assert.Equal(t, snap.LastDeath, next.LastDeath)
}

func TestDetect_GenuineFlipsNotifyAndAdvanceSince(t *testing.T) {
	cases := []struct {
		name      string
		prev      state.Presence
		obs       presence.Observation
		wantEvent Event
		wantState state.Presence
	}{
		{"offline to online", state.PresenceOffline, presence.ObservedOnline, EventWentOnline, state.PresenceOnline},
		{"online to offline", state.PresenceOnline, presence.ObservedOffline, EventWentOffline, state.PresenceOffline},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prev := state.FavoriteState{LastKnown: tc.prev, Since: t0, LastObserved: t0}
			next, events := Detect(prev, snapOf(tc.obs), t1)
			require.Equal(t, []Event{tc.wantEvent}, events)
			assert.True(t, events[0].Notifiable())
			assert.Equal(t, tc.wantState, next.LastKnown)
			assert.Equal(t, t1, next.Since, "since anchors to the detected transition instant")
		})
	}
}

func TestDetect_IdenticalRepeatOnlyBumpsLastObserved(t *testing.T) {
	prev := state.FavoriteState{LastKnown: state.PresenceOnline, Since: t0, LastObserved: t0}

	next, events := Detect(prev, snapOf(presence.ObservedOnline), t1)
	assert.Empty(t, events)
	assert.Equal(t, state.PresenceOnline, next.LastKnown)
	assert.Equal(t, t0, next.Since, "since never advances on identical observations")
	assert.Equal(t, t1, next.LastObserved)
}

func TestDetect_LevelIncreaseAlerts(t *testing.T) {
	prev := state.FavoriteState{LastKnown: state.PresenceOnline, Since: t0, Level: 99}

	next, events := Detect(prev, presence.Snapshot{Observation: presence.ObservedOnline, Level: 100}, t1)
	assert.Equal(t, []Event{EventLevelUp}, events)
	assert.Equal(t, 100, next.Level)
	assert.Equal(t, t0, next.Since, "level changes never advance since")
}

func TestDetect_LevelNotAlertedWithoutBaselineOrIncrease(t *testing.T) {
	cases := []struct {
		name      string
		prevLevel int
		snapLevel int
		wantLevel int
	}{
		{"no baseline yet", 0, 80, 80},
		{"same level", 80, 80, 80},
		{"level missing carries previous", 80, 0, 80},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prev := state.FavoriteState{LastKnown: state.PresenceOnline, Since: t0, Level: tc.prevLevel}
			next, events := Detect(prev, presence.Snapshot{Observation: presence.ObservedOnline, Level: tc.snapLevel}, t1)
			assert.Empty(t, events)
			assert.Equal(t, tc.wantLevel, next.Level)
		})
	}
}

func TestDetect_NewDeathKeyAlerts(t *testing.T) {
	prev := state.FavoriteState{
		LastKnown: state.PresenceOffline,
		Since:     t0,
		LastDeath: "2026-07-01T10:00:00Z|a demon",
	}
	snap := presence.Snapshot{
		Observation: presence.ObservedOffline,
		LastDeath:   "2026-08-01T09:59:00Z|a dragon lord",
	}

	next, events := Detect(prev, snap, t1)
	assert.Equal(t, []Event{EventDied}, events)
	assert.Equal(t, snap.LastDeath, next.LastDeath)
}

func TestDetect_DeathNotAlertedWithoutBaselineOrChange(t *testing.T) {
	cases := []struct {
		name      string
		prevDeath string
		snapDeath string
		wantDeath string
	}{
		{"no baseline yet", "", "2026-08-01T09:00:00Z|a hydra", "2026-08-01T09:00:00Z|a hydra"},
		{"same death repeated", "2026-08-01T09:00:00Z|a hydra", "2026-08-01T09:00:00Z|a hydra", "2026-08-01T09:00:00Z|a hydra"},
		{"deaths missing carries previous", "2026-08-01T09:00:00Z|a hydra", "", "2026-08-01T09:00:00Z|a hydra"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prev := state.FavoriteState{LastKnown: state.PresenceOnline, Since: t0, LastDeath: tc.prevDeath}
			next, events := Detect(prev, presence.Snapshot{Observation: presence.ObservedOnline, LastDeath: tc.snapDeath}, t1)
			assert.Empty(t, events)
			assert.Equal(t, tc.wantDeath, next.LastDeath)
		})
	}
}

func TestDetect_FlipAndLevelAndDeathInOneCycle(t *testing.T) {
	prev := state.FavoriteState{
		LastKnown: state.PresenceOnline,
		Since:     t0,
		Level:     140,
		LastDeath: "old|a demon",
	}
	snap := presence.Snapshot{
		Observation: presence.ObservedOffline,
		Level:       141,
		LastDeath:   "new|a dragon lord",
	}

	next, events := Detect(prev, snap, t1)
	assert.Equal(t, []Event{EventWentOffline, EventLevelUp, EventDied}, events)
	assert.Equal(t, state.PresenceOffline, next.LastKnown)
	assert.Equal(t, 141, next.Level)
}

func TestDetect_SinceMonotonicAcrossSequence(t *testing.T) {
	// failed, online, online, failed, offline: since advances exactly twice.
	fs := state.FavoriteState{LastKnown: state.PresenceUnknown}
	now := t0

	step := func(obs presence.Observation) []Event {
		now = now.Add(30 * time.Second)
		var events []Event
		fs, events = Detect(fs, snapOf(obs), now)
		return events
	}

	assert.Empty(t, step(presence.ObservationFailed))
	assert.Equal(t, []Event{EventFirstObservation}, step(presence.ObservedOnline))
	firstSince := fs.Since

	assert.Empty(t, step(presence.ObservedOnline))
	assert.Equal(t, firstSince, fs.Since)

	assert.Empty(t, step(presence.ObservationFailed))
	assert.Equal(t, firstSince, fs.Since)

	assert.Equal(t, []Event{EventWentOffline}, step(presence.ObservedOffline))
	assert.True(t, fs.Since.After(firstSince))
}

func TestOfflineForAnchorsToTransition(t *testing.T) {
	fs := state.FavoriteState{LastKnown: state.PresenceOffline, Since: t0}
	d, ok := fs.OfflineFor(t0.Add(90 * time.Second))
	assert.True(t, ok)
	assert.Equal(t, 90*time.Second, d)

	fs.LastKnown = state.PresenceOnline
	_, ok = fs.OfflineFor(t1)
	assert.False(t, ok)
}

func TestEventStrings(t *testing.T) {
	assert.Equal(t, "none", EventNone.String())
	assert.Equal(t, "first_observation", EventFirstObservation.String())
	assert.Equal(t, "went_online", EventWentOnline.String())
	assert.Equal(t, "went_offline", EventWentOffline.String())
	assert.Equal(t, "level_up", EventLevelUp.String())
	assert.Equal(t, "died", EventDied.String())
}
