package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/heartmarshall/homophones/internal/domain"
)

type pronunciationStore interface {
	Stats(ctx context.Context) (domain.StoreStats, error)
	IntegrityReport(ctx context.Context) (domain.IntegrityReport, error)
	Samples(ctx context.Context, limit uint64) ([]domain.PronunciationRecord, error)
}

const (
	defaultSampleLimit = 10
	maxSampleLimit     = 100
)

// AdminHandler serves the data-quality endpoints over the stored
// dictionary. Routes are mounted behind middleware.RequireAdmin.
type AdminHandler struct {
	store pronunciationStore
	log   *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(store pronunciationStore, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		store: store,
		log:   logger.With("handler", "admin"),
	}
}

type integrityResponse struct {
	Healthy bool `json:"healthy"`
	domain.IntegrityReport
}

// Integrity runs the integrity checks.
// GET /api/admin/integrity
func (h *AdminHandler) Integrity(w http.ResponseWriter, r *http.Request) {
	report, err := h.store.IntegrityReport(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "integrity report", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, integrityResponse{Healthy: report.Healthy(), IntegrityReport: report})
}

// StoreStats returns row counts of the stored dictionary, per source.
// GET /api/admin/stats
func (h *AdminHandler) StoreStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "store stats", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Samples returns the first stored records.
// GET /api/admin/samples?limit=10
func (h *AdminHandler) Samples(w http.ResponseWriter, r *http.Request) {
	limit := uint64(defaultSampleLimit)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil || n == 0 || n > maxSampleLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxSampleLimit))
			return
		}
		limit = n
	}

	records, err := h.store.Samples(r.Context(), limit)
	if err != nil {
		h.log.ErrorContext(r.Context(), "sample records", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, records)
}
