package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/homophones/internal/domain"
	"github.com/heartmarshall/homophones/internal/sentence"
	"github.com/heartmarshall/homophones/internal/service/homophone"
)

type sentenceService interface {
	Tokenize(text string) []sentence.Token
	Replace(text string, tokenID int, replacement string) (homophone.ReplaceResult, error)
}

// SentenceHandler serves the sentence editing endpoints.
type SentenceHandler struct {
	svc sentenceService
	log *slog.Logger
}

// NewSentenceHandler creates a SentenceHandler.
func NewSentenceHandler(svc sentenceService, logger *slog.Logger) *SentenceHandler {
	return &SentenceHandler{svc: svc, log: logger.With("handler", "sentences")}
}

type tokenizeRequest struct {
	Text *string `json:"text"`
}

type tokenizeResponse struct {
	Success bool             `json:"success"`
	Tokens  []sentence.Token `json:"tokens"`
	Words   []string         `json:"words"`
}

type replaceRequest struct {
	Text        *string `json:"text"`
	TokenID     *int    `json:"token_id"`
	Replacement string  `json:"replacement"`
}

type replaceResponse struct {
	Success bool `json:"success"`
	homophone.ReplaceResult
}

// Tokenize splits text into tokens and lists the words to resolve.
// POST /api/sentences/tokenize
func (h *SentenceHandler) Tokenize(w http.ResponseWriter, r *http.Request) {
	var req tokenizeRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Text == nil {
		writeFailure(w, http.StatusBadRequest, "Please provide the text to tokenize.")
		return
	}

	tokens := h.svc.Tokenize(*req.Text)
	writeJSON(w, http.StatusOK, tokenizeResponse{
		Success: true,
		Tokens:  tokens,
		Words:   sentence.Words(tokens),
	})
}

// Replace swaps one word token for a replacement, keeping its case.
// POST /api/sentences/replace
func (h *SentenceHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var req replaceRequest
	if err := decodeJSON(w, r, &req); err != nil || req.Text == nil || req.TokenID == nil {
		writeFailure(w, http.StatusBadRequest, "Please provide text, token_id and replacement.")
		return
	}

	res, err := h.svc.Replace(*req.Text, *req.TokenID, req.Replacement)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeFailure(w, http.StatusBadRequest, verr.Errors[0].Field+": "+verr.Errors[0].Message)
			return
		}
		h.log.ErrorContext(r.Context(), "replace word", slog.String("error", err.Error()))
		writeFailure(w, http.StatusInternalServerError, "An error occurred while replacing the word.")
		return
	}

	writeJSON(w, http.StatusOK, replaceResponse{Success: true, ReplaceResult: res})
}
