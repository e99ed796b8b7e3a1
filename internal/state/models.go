package state

import (
	"strings"
	"time"
)

// MaxFavorites caps the favorites list; adding beyond it is rejected.
const MaxFavorites = 10

// Poll interval bounds in seconds.
const (
	MinPollIntervalSeconds     = 5
	DefaultPollIntervalSeconds = 30
)

// Presence is the stored tri-state presence of a favorite.
type Presence string

const (
	PresenceUnknown Presence = "unknown"
	PresenceOnline  Presence = "online"
	PresenceOffline Presence = "offline"
)

// Known reports whether the presence has been established by at least one
// successful observation.
func (p Presence) Known() bool {
	return p == PresenceOnline || p == PresenceOffline
}

func (p Presence) String() string {
	if p == "" {
		return string(PresenceUnknown)
	}
	return string(p)
}

// FavoriteState is the last-known presence record for one favorite.
type FavoriteState struct {
	// LastKnown is unknown only before the first successful observation.
	LastKnown Presence `json:"last_known"`
	// Since is the instant LastKnown last changed value. "Offline for X"
	// displays are anchored here, not to any externally reported last-seen.
	Since time.Time `json:"since,omitzero"`
	// LastObserved is the instant of the most recent successful poll,
	// whether or not the state changed. Used to detect a stalled loop.
	LastObserved time.Time `json:"last_observed,omitzero"`
	// Level is the last reported character level, 0 until first reported.
	// Carried forward when a later snapshot omits it.
	Level int `json:"level,omitempty"`
	// LastDeath identifies the newest reported death (timestamp plus first
	// killer) so an unchanged deaths list never re-alerts.
	LastDeath string `json:"last_death,omitempty"`
}

// OfflineFor returns how long the favorite has been offline, anchored to the
// detected transition instant rather than any externally reported last-seen.
// The second value is false unless the last known presence is offline.
func (fs FavoriteState) OfflineFor(now time.Time) (time.Duration, bool) {
	if fs.LastKnown != PresenceOffline || fs.Since.IsZero() {
		return 0, false
	}
	return now.Sub(fs.Since), true
}

// MonitorState is the process-wide durable monitoring record.
type MonitorState struct {
	// Favorites preserves insertion order; entries are unique
	// case-insensitively and capped at MaxFavorites.
	Favorites           []string                 `json:"favorites"`
	MonitoringEnabled   bool                     `json:"monitoring_enabled"`
	AutostartOnBoot     bool                     `json:"autostart_on_boot"`
	PollIntervalSeconds int                      `json:"poll_interval_seconds"`
	FavoriteStates      map[string]FavoriteState `json:"favorite_states,omitempty"`

	// Notification mutes. Zero values notify, so records written before a
	// toggle existed keep their alerts.
	MuteOnlineAlerts bool `json:"mute_online_alerts,omitempty"`
	MuteLevelAlerts  bool `json:"mute_level_alerts,omitempty"`
	MuteDeathAlerts  bool `json:"mute_death_alerts,omitempty"`
}

// Default returns the state created on first launch: no favorites,
// monitoring enabled with autostart, default interval.
func Default() *MonitorState {
	return &MonitorState{
		Favorites:           []string{},
		MonitoringEnabled:   true,
		AutostartOnBoot:     true,
		PollIntervalSeconds: DefaultPollIntervalSeconds,
		FavoriteStates:      map[string]FavoriteState{},
	}
}

// Key normalizes a favorite name into its FavoriteStates map key.
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Normalize repairs missing or out-of-range fields after a load, merging
// defaults without wiping user choices.
func (m *MonitorState) Normalize() {
	if m.Favorites == nil {
		m.Favorites = []string{}
	}
	if m.FavoriteStates == nil {
		m.FavoriteStates = map[string]FavoriteState{}
	}
	if m.PollIntervalSeconds < MinPollIntervalSeconds {
		m.PollIntervalSeconds = DefaultPollIntervalSeconds
	}
	for k, fs := range m.FavoriteStates {
		if !fs.LastKnown.Known() {
			fs.LastKnown = PresenceUnknown
			m.FavoriteStates[k] = fs
		}
	}
}

// PollInterval returns the configured interval as a duration.
func (m *MonitorState) PollInterval() time.Duration {
	return time.Duration(m.PollIntervalSeconds) * time.Second
}

// AddFavorite appends a favorite, enforcing the blank, duplicate and
// MaxFavorites invariants. The state is unchanged on error.
func (m *MonitorState) AddFavorite(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrBlankName
	}
	key := Key(name)
	for _, f := range m.Favorites {
		if Key(f) == key {
			return ErrDuplicateFavorite
		}
	}
	if len(m.Favorites) >= MaxFavorites {
		return ErrTooManyFavorites
	}
	m.Favorites = append(m.Favorites, name)
	return nil
}

// RemoveFavorite drops a favorite by name (case-insensitive) and clears its
// cached presence, so a later re-add starts from unknown again. Reports
// whether the favorite was present.
func (m *MonitorState) RemoveFavorite(name string) bool {
	key := Key(name)
	for i, f := range m.Favorites {
		if Key(f) == key {
			m.Favorites = append(m.Favorites[:i], m.Favorites[i+1:]...)
			delete(m.FavoriteStates, key)
			return true
		}
	}
	return false
}

// IsFavorite reports whether name is currently in the favorites list.
func (m *MonitorState) IsFavorite(name string) bool {
	key := Key(name)
	for _, f := range m.Favorites {
		if Key(f) == key {
			return true
		}
	}
	return false
}

// HasFavorites reports whether at least one non-blank favorite exists.
func (m *MonitorState) HasFavorites() bool {
	for _, f := range m.Favorites {
		if strings.TrimSpace(f) != "" {
			return true
		}
	}
	return false
}

// FavoriteState looks up the cached presence for name. A missing entry is
// returned as unknown rather than failing.
func (m *MonitorState) FavoriteState(name string) FavoriteState {
	if fs, ok := m.FavoriteStates[Key(name)]; ok {
		return fs
	}
	return FavoriteState{LastKnown: PresenceUnknown}
}

// SetFavoriteState stores the presence record for name.
func (m *MonitorState) SetFavoriteState(name string, fs FavoriteState) {
	if m.FavoriteStates == nil {
		m.FavoriteStates = map[string]FavoriteState{}
	}
	m.FavoriteStates[Key(name)] = fs
}

// SetPollInterval validates and applies a new polling interval.
func (m *MonitorState) SetPollInterval(seconds int) error {
	if seconds < MinPollIntervalSeconds {
		return ErrIntervalTooShort
	}
	m.PollIntervalSeconds = seconds
	return nil
}
