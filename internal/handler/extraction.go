package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/tenpin/leaguebook/internal/auth"
	"github.com/tenpin/leaguebook/internal/service"
)

// ExtractionHandler turns sheet photos into structured rows.
type ExtractionHandler struct {
	svc *service.ExtractionService
}

// NewExtractionHandler creates an ExtractionHandler.
func NewExtractionHandler(svc *service.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{svc: svc}
}

// ExtractRequest is the body of both extraction endpoints. Image is base64,
// optionally as a data URL.
type ExtractRequest struct {
	Image       string     `json:"image"`
	BowlerNames []string   `json:"bowler_names,omitempty"`
	GameID      *uuid.UUID `json:"game_id,omitempty"`
}

// Roster handles POST /api/extract/roster.
func (h *ExtractionHandler) Roster(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, err)
		return
	}
	roster, err := h.svc.ExtractRoster(r.Context(), clientKey(r), req.Image)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, roster)
}

// Scores handles POST /api/extract/scores.
func (h *ExtractionHandler) Scores(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, err)
		return
	}
	res, err := h.svc.ExtractScores(r.Context(), clientKey(r), req.Image, req.BowlerNames, req.GameID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, res)
}

// clientKey identifies the caller for rate limiting: the token subject when
// authenticated, otherwise the remote address.
func clientKey(r *http.Request) string {
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil && claims.Subject != "" {
		return "sub:" + claims.Subject
	}
	return "ip:" + ClientIP(r)
}
