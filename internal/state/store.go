package state

import "errors"

// Sentinel errors for state mutation and persistence.
var (
	// ErrCorruptState marks a persisted record that could not be parsed.
	// Callers must treat it as "no favorites, monitoring disabled" rather
	// than crash; the watcher refuses to start from corrupt state.
	ErrCorruptState = errors.New("state: persisted state is corrupt")

	ErrBlankName         = errors.New("state: favorite name is blank")
	ErrDuplicateFavorite = errors.New("state: favorite already tracked")
	ErrTooManyFavorites  = errors.New("state: favorites limit reached")
	ErrIntervalTooShort  = errors.New("state: poll interval below minimum")
)

// Store is the single writer of record for MonitorState. Implementations
// must serialize Update calls so concurrent writers never lose updates, and
// Load must always return a complete, self-consistent state.
type Store interface {
	// Load returns the current state. A missing record yields defaults with
	// a nil error; an unparseable record yields defaults wrapped with
	// ErrCorruptState.
	Load() (*MonitorState, error)

	// Save atomically replaces the persisted state.
	Save(*MonitorState) error

	// Update applies fn to the freshly loaded state and persists the result,
	// all under the store's write lock. Update never persists corrupt input:
	// a corrupt record is replaced by defaults before fn runs.
	Update(fn func(*MonitorState) error) error
}
