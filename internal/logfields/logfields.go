package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyCharacter  = "character"
	KeyEvent      = "event"
	KeyPresence   = "presence"
	KeyCycleID    = "cycle_id"
	KeyInterval   = "interval"
	KeyFavorites  = "favorites"
	KeyDurationMS = "duration_ms"
	KeyStatePath  = "state_path"
	KeySubject    = "subject"
	KeyTrigger    = "trigger"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Character(name string) slog.Attr  { return slog.String(KeyCharacter, name) }
func Event(ev string) slog.Attr        { return slog.String(KeyEvent, ev) }
func Presence(p string) slog.Attr      { return slog.String(KeyPresence, p) }
func CycleID(id string) slog.Attr      { return slog.String(KeyCycleID, id) }
func Interval(s string) slog.Attr      { return slog.String(KeyInterval, s) }
func Favorites(n int) slog.Attr        { return slog.Int(KeyFavorites, n) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func StatePath(p string) slog.Attr     { return slog.String(KeyStatePath, p) }
func Subject(s string) slog.Attr       { return slog.String(KeySubject, s) }
func Trigger(t string) slog.Attr       { return slog.String(KeyTrigger, t) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
