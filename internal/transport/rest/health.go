package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/heartmarshall/homophones/internal/domain"
)

// dbPinger defines the minimal interface for DB health checks.
type dbPinger interface {
	Ping(ctx context.Context) error
}

// indexStatter reports the size of the in-memory index.
type indexStatter interface {
	Stats() domain.IndexStats
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	db      dbPinger
	index   indexStatter
	version string
}

// NewHealthHandler creates a HealthHandler. db may be nil when the index is
// built from a dictionary file, in which case no database check runs.
func NewHealthHandler(db dbPinger, index indexStatter, version string) *HealthHandler {
	return &HealthHandler{db: db, index: index, version: version}
}

// HealthResponse is the JSON response for /health and /ready.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Ready is the readiness probe: 200 when the index holds records and the
// database (if any) answers a ping, 503 otherwise.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ready := h.index.Stats().TotalRecords > 0
	if ready && h.db != nil {
		ready = h.db.Ping(ctx) == nil
	}

	if !ready {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "down",
			Timestamp: time.Now(),
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Health is the full health check: index size, DB ping latency and version.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	components := make(map[string]CompStatus)
	overallStatus := "ok"

	records := h.index.Stats().TotalRecords
	if records > 0 {
		components["index"] = CompStatus{Status: "ok", Detail: strconv.Itoa(records) + " pronunciations"}
	} else {
		components["index"] = CompStatus{Status: "down", Detail: "empty"}
		overallStatus = "down"
	}

	if h.db != nil {
		start := time.Now()
		err := h.db.Ping(ctx)
		latency := time.Since(start)

		if err != nil {
			components["database"] = CompStatus{Status: "down"}
			overallStatus = "down"
		} else {
			components["database"] = CompStatus{
				Status:  "ok",
				Latency: latency.String(),
			}
		}
	}

	status := http.StatusOK
	if overallStatus != "ok" {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthResponse{
		Status:     overallStatus,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}
