package daemon

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/favwatch/internal/logfields"
)

// HealthResponse is the /healthz payload.
type HealthResponse struct {
	Status        string `json:"status"` // healthy|degraded
	Detail        string `json:"detail,omitempty"`
	LastCycleID   string `json:"last_cycle_id,omitempty"`
	LastCycleAgo  string `json:"last_cycle_ago,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// FavoriteStatus is one favorite's entry in the /status payload.
type FavoriteStatus struct {
	Name         string `json:"name"`
	Presence     string `json:"presence"`
	Level        int    `json:"level,omitempty"`
	Since        string `json:"since,omitempty"`
	OfflineFor   string `json:"offline_for,omitempty"`
	LastObserved string `json:"last_observed,omitempty"`
}

// StatusResponse is the /status payload.
type StatusResponse struct {
	MonitoringEnabled   bool             `json:"monitoring_enabled"`
	AutostartOnBoot     bool             `json:"autostart_on_boot"`
	PollIntervalSeconds int              `json:"poll_interval_seconds"`
	Favorites           []FavoriteStatus `json:"favorites"`
	LastCycleID         string           `json:"last_cycle_id,omitempty"`
	LastCycleAt         string           `json:"last_cycle_at,omitempty"`
	LastCycleSkipped    string           `json:"last_cycle_skipped,omitempty"`
}

func (d *Daemon) newHTTPServer() *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", d.handleHealthz)
	mux.HandleFunc("/status", d.handleStatus)
	mux.Handle("/metrics", promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{}))

	return &http.Server{
		Addr:              d.cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// handleHealthz reports degraded when polling has stalled: no completed
// cycle within three intervals while monitoring is active.
func (d *Daemon) handleHealthz(w http.ResponseWriter, r *http.Request) {
	report, lastAt, interval := d.snapshot()

	resp := HealthResponse{
		Status:        "healthy",
		LastCycleID:   report.CycleID,
		UptimeSeconds: int64(time.Since(d.startedAt).Seconds()),
	}
	if !lastAt.IsZero() {
		resp.LastCycleAgo = time.Since(lastAt).Round(time.Second).String()
	}

	code := http.StatusOK
	stale := 3 * interval
	switch {
	case lastAt.IsZero() && time.Since(d.startedAt) > stale:
		resp.Status = "degraded"
		resp.Detail = "no poll cycle has completed since start"
		code = http.StatusServiceUnavailable
	case !lastAt.IsZero() && time.Since(lastAt) > stale:
		resp.Status = "degraded"
		resp.Detail = "poll cycles have stalled"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, resp)
}

// handleStatus renders the durable state plus the last cycle summary.
func (d *Daemon) handleStatus(w http.ResponseWriter, r *http.Request) {
	m, err := d.store.Load()
	if err != nil {
		slog.Warn("Status request with unreadable state", logfields.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "state unreadable"})
		return
	}

	report, lastAt, _ := d.snapshot()
	now := time.Now()

	resp := StatusResponse{
		MonitoringEnabled:   m.MonitoringEnabled,
		AutostartOnBoot:     m.AutostartOnBoot,
		PollIntervalSeconds: m.PollIntervalSeconds,
		Favorites:           make([]FavoriteStatus, 0, len(m.Favorites)),
		LastCycleID:         report.CycleID,
		LastCycleSkipped:    report.SkipReason,
	}
	if !lastAt.IsZero() {
		resp.LastCycleAt = lastAt.Format(time.RFC3339)
	}

	for _, name := range m.Favorites {
		fs := m.FavoriteState(name)
		entry := FavoriteStatus{
			Name:     name,
			Presence: fs.LastKnown.String(),
			Level:    fs.Level,
		}
		if !fs.Since.IsZero() {
			entry.Since = fs.Since.Format(time.RFC3339)
		}
		if !fs.LastObserved.IsZero() {
			entry.LastObserved = fs.LastObserved.Format(time.RFC3339)
		}
		if offline, ok := fs.OfflineFor(now); ok {
			entry.OfflineFor = offline.Round(time.Second).String()
		}
		resp.Favorites = append(resp.Favorites, entry)
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("Failed to encode response", logfields.Error(err))
	}
}
