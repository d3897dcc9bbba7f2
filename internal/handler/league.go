package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/tenpin/leaguebook/internal/domain"
	"github.com/tenpin/leaguebook/internal/export"
	"github.com/tenpin/leaguebook/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LeagueHandler serves league configuration and the derived league views.
type LeagueHandler struct {
	svc *service.LeagueService
}

// NewLeagueHandler creates a LeagueHandler.
func NewLeagueHandler(svc *service.LeagueService) *LeagueHandler {
	return &LeagueHandler{svc: svc}
}

// FinalsResponse is returned by POST /api/leagues/{id}/calculate-finals.
type FinalsResponse struct {
	Success   bool                    `json:"success"`
	Standings []domain.StandingsEntry `json:"standings"`
}

// Dashboard handles GET /api/dashboard.
func (h *LeagueHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.svc.Dashboard(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, dash)
}

// List handles GET /api/leagues.
func (h *LeagueHandler) List(w http.ResponseWriter, r *http.Request) {
	leagues, err := h.svc.List(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, leagues)
}

// Overview handles GET /api/leagues/{id}.
func (h *LeagueHandler) Overview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	overview, err := h.svc.Overview(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, overview)
}

// Info handles GET /api/leagues/{id}/info.
func (h *LeagueHandler) Info(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	league, err := h.svc.Get(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, league)
}

// Teams handles GET /api/leagues/{id}/teams.
func (h *LeagueHandler) Teams(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	teams, err := h.svc.Teams(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, teams)
}

// Standings handles GET /api/leagues/{id}/standings.
func (h *LeagueHandler) Standings(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	snap, err := h.svc.Standings(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, snap)
}

// Scores handles GET /api/leagues/{id}/scores.
func (h *LeagueHandler) Scores(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	board, err := h.svc.ScoreBoard(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, board)
}

// StandingsXLSX handles GET /api/leagues/{id}/standings.xlsx.
func (h *LeagueHandler) StandingsXLSX(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	snap, err := h.svc.Standings(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteStandingsXLSX(&buf, snap); err != nil {
		RespondError(w, domain.ErrInternal("render workbook", err))
		return
	}
	writeFile(w, xlsxContentType, snap.League.Name+" standings.xlsx", buf.Bytes())
}

// StandingsChart handles GET /api/leagues/{id}/standings.png.
func (h *LeagueHandler) StandingsChart(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	snap, err := h.svc.Standings(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}

	png, err := export.StandingsChartPNG(snap)
	if err != nil {
		RespondError(w, domain.ErrInternal("render chart", err))
		return
	}
	writeFile(w, "image/png", "", png)
}

// Create handles POST /api/leagues.
func (h *LeagueHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.LeagueInput
	if err := DecodeJSON(r, &in); err != nil {
		RespondError(w, err)
		return
	}
	league, err := h.svc.Create(r.Context(), in)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, league)
}

// Update handles PATCH /api/leagues/{id}.
func (h *LeagueHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	var patch domain.LeaguePatch
	if err := DecodeJSON(r, &patch); err != nil {
		RespondError(w, err)
		return
	}
	league, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, league)
}

// Delete handles DELETE /api/leagues/{id}.
func (h *LeagueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// CalculateFinals handles POST /api/leagues/{id}/calculate-finals.
func (h *LeagueHandler) CalculateFinals(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		RespondError(w, err)
		return
	}
	final, err := h.svc.CalculateFinals(r.Context(), id)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, FinalsResponse{Success: true, Standings: final})
}

func writeFile(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", fmt.Sprint(len(body)))
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
