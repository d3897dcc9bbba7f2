package handler

import (
	"net/http"

	"github.com/tenpin/leaguebook/internal/domain"
	"github.com/tenpin/leaguebook/internal/service"
)

// RosterHandler serves teams and bowlers.
type RosterHandler struct {
	svc *service.RosterService
}

// NewRosterHandler creates a RosterHandler.
func NewRosterHandler(svc *service.RosterService) *RosterHandler {
	return &RosterHandler{svc: svc}
}

// GetTeam handles GET /api/teams/{id}.
func (h *RosterHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	team, err := h.svc.Team(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, team)
}

// CreateTeam handles POST /api/teams.
func (h *RosterHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var in domain.TeamInput
	if err := DecodeJSON(r, &in); err != nil {
		RespondError(w, err)
		return
	}
	team, err := h.svc.CreateTeam(r.Context(), in)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, team)
}

// UpdateTeam handles PATCH /api/teams/{id}.
func (h *RosterHandler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var patch domain.TeamPatch
	if err := DecodeJSON(r, &patch); err != nil {
		RespondError(w, err)
		return
	}
	team, err := h.svc.UpdateTeam(r.Context(), id, patch)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, team)
}

// DeleteTeam handles DELETE /api/teams/{id}.
func (h *RosterHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	if err := h.svc.DeleteTeam(r.Context(), id); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// GetBowler handles GET /api/bowlers/{id}.
func (h *RosterHandler) GetBowler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	bowler, err := h.svc.Bowler(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, bowler)
}

// CreateBowler handles POST /api/bowlers.
func (h *RosterHandler) CreateBowler(w http.ResponseWriter, r *http.Request) {
	var in domain.BowlerInput
	if err := DecodeJSON(r, &in); err != nil {
		RespondError(w, err)
		return
	}
	bowler, err := h.svc.CreateBowler(r.Context(), in)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, bowler)
}

// UpdateBowler handles PATCH /api/bowlers/{id}.
func (h *RosterHandler) UpdateBowler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var patch domain.BowlerPatch
	if err := DecodeJSON(r, &patch); err != nil {
		RespondError(w, err)
		return
	}
	bowler, err := h.svc.UpdateBowler(r.Context(), id, patch)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, bowler)
}

// DeleteBowler handles DELETE /api/bowlers/{id}.
func (h *RosterHandler) DeleteBowler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	if err := h.svc.DeleteBowler(r.Context(), id); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}
