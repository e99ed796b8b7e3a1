package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/favwatch/internal/state"
)

func testRoot(t *testing.T) *CLI {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "favwatch.yaml")
	content := fmt.Sprintf("data_dir: %s\n", filepath.Join(dir, "data"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	return &CLI{Config: cfgPath}
}

func TestFavoritesAddThenList(t *testing.T) {
	root := testRoot(t)

	add := &FavoritesAddCmd{Name: "Bubble"}
	require.NoError(t, add.Run(nil, root))

	store, err := openStore(root)
	require.NoError(t, err)
	m, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"Bubble"}, m.Favorites)
}

func TestFavoritesAdd_DuplicateRejected(t *testing.T) {
	root := testRoot(t)

	require.NoError(t, (&FavoritesAddCmd{Name: "Bubble"}).Run(nil, root))
	err := (&FavoritesAddCmd{Name: "bubble"}).Run(nil, root)
	assert.ErrorContains(t, err, "already a favorite")
}

func TestFavoritesRemove_ClearsCachedState(t *testing.T) {
	root := testRoot(t)

	require.NoError(t, (&FavoritesAddCmd{Name: "Bubble"}).Run(nil, root))

	store, err := openStore(root)
	require.NoError(t, err)
	require.NoError(t, store.Update(func(m *state.MonitorState) error {
		m.SetFavoriteState("Bubble", state.FavoriteState{LastKnown: state.PresenceOnline})
		return nil
	}))

	require.NoError(t, (&FavoritesRemoveCmd{Name: "BUBBLE"}).Run(nil, root))

	m, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, m.Favorites)
	assert.Equal(t, state.PresenceUnknown, m.FavoriteState("Bubble").LastKnown)
}

func TestFavoritesRemove_UnknownFails(t *testing.T) {
	root := testRoot(t)
	err := (&FavoritesRemoveCmd{Name: "Nobody"}).Run(nil, root)
	assert.ErrorContains(t, err, "not a favorite")
}

func TestMonitorInterval_EnforcesMinimum(t *testing.T) {
	root := testRoot(t)

	err := (&MonitorIntervalCmd{Seconds: 2}).Run(nil, root)
	assert.ErrorContains(t, err, "at least")

	require.NoError(t, (&MonitorIntervalCmd{Seconds: 60}).Run(nil, root))

	store, err := openStore(root)
	require.NoError(t, err)
	m, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 60, m.PollIntervalSeconds)
}

func TestMonitorNotify_TogglesMutes(t *testing.T) {
	root := testRoot(t)

	require.NoError(t, (&MonitorNotifyCmd{Kind: "level", Enabled: false}).Run(nil, root))
	require.NoError(t, (&MonitorNotifyCmd{Kind: "death", Enabled: false}).Run(nil, root))

	store, err := openStore(root)
	require.NoError(t, err)
	m, err := store.Load()
	require.NoError(t, err)
	assert.True(t, m.MuteLevelAlerts)
	assert.True(t, m.MuteDeathAlerts)
	assert.False(t, m.MuteOnlineAlerts, "untouched kinds keep notifying")

	require.NoError(t, (&MonitorNotifyCmd{Kind: "level", Enabled: true}).Run(nil, root))
	m, err = store.Load()
	require.NoError(t, err)
	assert.False(t, m.MuteLevelAlerts)
}

func TestMonitorDisable_Persists(t *testing.T) {
	root := testRoot(t)

	require.NoError(t, (&MonitorDisableCmd{}).Run(nil, root))

	store, err := openStore(root)
	require.NoError(t, err)
	m, err := store.Load()
	require.NoError(t, err)
	assert.False(t, m.MonitoringEnabled)
}
