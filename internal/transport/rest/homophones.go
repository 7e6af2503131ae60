package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/homophones/internal/domain"
	"github.com/heartmarshall/homophones/internal/service/homophone"
)

type homophoneService interface {
	Resolve(ctx context.Context, word string) (homophone.Result, error)
	ResolveBatch(ctx context.Context, words []string) (homophone.BatchResult, error)
	Stats() domain.IndexStats
}

// HomophoneHandler serves the homophone lookup endpoints.
type HomophoneHandler struct {
	svc homophoneService
	log *slog.Logger
}

// NewHomophoneHandler creates a HomophoneHandler.
func NewHomophoneHandler(svc homophoneService, logger *slog.Logger) *HomophoneHandler {
	return &HomophoneHandler{svc: svc, log: logger.With("handler", "homophones")}
}

// batchExample is echoed back when the batch body is unusable.
var batchExample = map[string][]string{"words": {"there", "to", "right"}}

type batchRequest struct {
	Words []json.RawMessage `json:"words"`
}

type batchResponse struct {
	Success bool `json:"success"`
	homophone.BatchResult
	InvalidWords     int   `json:"invalid_words"`
	ProcessingTimeMS int64 `json:"processing_time_ms"`
}

type statsResponse struct {
	Success bool              `json:"success"`
	Stats   domain.IndexStats `json:"stats"`
}

// Lookup resolves a single word. A word missing from the dictionary is a
// 200 response with success=false.
// GET /api/homophones/{word}
func (h *HomophoneHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	word := r.PathValue("word")

	res, err := h.svc.Resolve(r.Context(), word)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeFailure(w, http.StatusBadRequest, "Please provide a word to search for.")
			return
		}
		h.log.ErrorContext(r.Context(), "resolve word",
			slog.String("word", word),
			slog.String("error", err.Error()),
		)
		writeFailure(w, http.StatusInternalServerError, "An error occurred while searching for homophones.")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// Batch resolves up to the configured maximum number of words. Entries that
// are not strings are reported as invalid alongside blank strings.
// POST /api/homophones/batch
func (h *HomophoneHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil || len(req.Words) == 0 {
		writeJSON(w, http.StatusBadRequest, failure{
			Message: "Please provide an array of words to search for.",
			Example: batchExample,
		})
		return
	}

	words, raw := decodeWords(req.Words)

	res, err := h.svc.ResolveBatch(r.Context(), words)
	if err != nil {
		var tooLarge *domain.BatchTooLargeError
		switch {
		case errors.As(err, &tooLarge):
			writeFailure(w, http.StatusBadRequest,
				fmt.Sprintf("Maximum batch size is %d words. You provided %d.", tooLarge.Max, tooLarge.Size))
		case errors.Is(err, domain.ErrValidation):
			writeFailure(w, http.StatusBadRequest, "Please provide an array of words to search for.")
		default:
			h.log.ErrorContext(r.Context(), "resolve batch",
				slog.Int("size", len(words)),
				slog.String("error", err.Error()),
			)
			writeFailure(w, http.StatusInternalServerError, "An error occurred while processing the batch request.")
		}
		return
	}

	// Report the entry as the client sent it, not as the blank placeholder.
	for i := range res.Invalid {
		if v, ok := raw[res.Invalid[i].Index]; ok {
			res.Invalid[i].Value = v
		}
	}

	writeJSON(w, http.StatusOK, batchResponse{
		Success:          true,
		BatchResult:      res,
		InvalidWords:     len(res.Invalid),
		ProcessingTimeMS: res.ProcessingTime.Milliseconds(),
	})
}

// decodeWords turns the raw batch entries into strings. A non-string entry
// becomes "" so that the service reports it as invalid; its original JSON
// value is returned by index.
func decodeWords(entries []json.RawMessage) ([]string, map[int]any) {
	words := make([]string, len(entries))
	raw := make(map[int]any)

	for i, e := range entries {
		var s string
		if len(e) > 0 && e[0] == '"' && json.Unmarshal(e, &s) == nil {
			words[i] = s
			continue
		}
		var v any
		_ = json.Unmarshal(e, &v)
		raw[i] = v
	}

	return words, raw
}

// Stats reports the size of the loaded index.
// GET /api/stats
func (h *HomophoneHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statsResponse{Success: true, Stats: h.svc.Stats()})
}
