package handler

import (
	"net/http"

	"github.com/tenpin/leaguebook/internal/domain"
	"github.com/tenpin/leaguebook/internal/service"
)

// GameHandler serves the schedule and score submission.
type GameHandler struct {
	svc *service.ScheduleService
}

// NewGameHandler creates a GameHandler.
func NewGameHandler(svc *service.ScheduleService) *GameHandler {
	return &GameHandler{svc: svc}
}

// SubmitScoresRequest is the body of POST /api/games/{id}/scores.
type SubmitScoresRequest struct {
	Scores []domain.ScoreInput `json:"scores"`
}

// Get handles GET /api/games/{id}.
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	sheet, err := h.svc.Game(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, sheet)
}

// Create handles POST /api/games.
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.GameInput
	if err := DecodeJSON(r, &in); err != nil {
		RespondError(w, err)
		return
	}
	game, err := h.svc.CreateGame(r.Context(), in)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, game)
}

// Delete handles DELETE /api/games/{id}.
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	if err := h.svc.DeleteGame(r.Context(), id); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// SubmitScores handles POST /api/games/{id}/scores. The body replaces the
// game's whole sheet.
func (h *GameHandler) SubmitScores(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var req SubmitScoresRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, err)
		return
	}
	res, err := h.svc.SubmitScores(r.Context(), id, req.Scores)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, res)
}
