package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/favwatch/internal/config"
	"git.home.luguber.info/inful/favwatch/internal/state"
	"git.home.luguber.info/inful/favwatch/internal/watch"
)

func testDaemon(t *testing.T) *Daemon {
	t.Helper()
	return &Daemon{
		cfg:             &config.Config{ListenAddr: "127.0.0.1:0"},
		store:           state.NewFileStore(t.TempDir()),
		startedAt:       time.Now(),
		currentInterval: 30 * time.Second,
	}
}

func TestHealthz_HealthyAfterRecentCycle(t *testing.T) {
	d := testDaemon(t)
	d.lastReport = watch.CycleReport{CycleID: "abc"}
	d.lastCycleAt = time.Now()

	rec := httptest.NewRecorder()
	d.handleHealthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "abc", resp.LastCycleID)
}

func TestHealthz_HealthyWhileStartingUp(t *testing.T) {
	d := testDaemon(t)

	rec := httptest.NewRecorder()
	d.handleHealthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthz_DegradedWhenCyclesStall(t *testing.T) {
	d := testDaemon(t)
	d.lastReport = watch.CycleReport{CycleID: "abc"}
	d.lastCycleAt = time.Now().Add(-10 * time.Minute)

	rec := httptest.NewRecorder()
	d.handleHealthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
}

func TestStatus_RendersFavoritesAndOfflineFor(t *testing.T) {
	d := testDaemon(t)

	since := time.Now().Add(-90 * time.Second)
	require.NoError(t, d.store.Update(func(m *state.MonitorState) error {
		require.NoError(t, m.AddFavorite("Bubble"))
		require.NoError(t, m.AddFavorite("Kharsek"))
		m.SetFavoriteState("Bubble", state.FavoriteState{
			LastKnown:    state.PresenceOffline,
			Since:        since,
			LastObserved: time.Now(),
		})
		return nil
	}))

	rec := httptest.NewRecorder()
	d.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.MonitoringEnabled)
	assert.Equal(t, state.DefaultPollIntervalSeconds, resp.PollIntervalSeconds)
	require.Len(t, resp.Favorites, 2)

	assert.Equal(t, "Bubble", resp.Favorites[0].Name)
	assert.Equal(t, "offline", resp.Favorites[0].Presence)
	assert.NotEmpty(t, resp.Favorites[0].OfflineFor)

	assert.Equal(t, "Kharsek", resp.Favorites[1].Name)
	assert.Equal(t, "unknown", resp.Favorites[1].Presence)
	assert.Empty(t, resp.Favorites[1].OfflineFor)
}

func TestStatus_EmptyStateStillRenders(t *testing.T) {
	d := testDaemon(t)

	rec := httptest.NewRecorder()
	d.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Favorites)
}
