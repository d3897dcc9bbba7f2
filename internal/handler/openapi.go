package handler

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
	"github.com/tenpin/leaguebook/internal/domain"
	"github.com/tenpin/leaguebook/internal/service"
	"github.com/tenpin/leaguebook/internal/standings"
)

// leagueSchema mirrors the flattened JSON form of domain.League.
type leagueSchema struct {
	ID              string              `json:"id" format:"uuid"`
	Name            string              `json:"name"`
	TeamSize        int                 `json:"team_size" minimum:"1" maximum:"10"`
	GamesPerSession int                 `json:"games_per_session" minimum:"1" maximum:"5"`
	TotalWeeks      int                 `json:"total_weeks" minimum:"1" maximum:"52"`
	TrackSeries     bool                `json:"bonus_points_for_series"`
	Status          domain.LeagueStatus `json:"status" enum:"active,completed"`
	domain.HandicapRules
	domain.PointSettings
}

type idPath struct {
	ID string `path:"id" format:"uuid"`
}

type leaguePatchRequest struct {
	idPath
	domain.LeaguePatch
}

type teamPatchRequest struct {
	idPath
	domain.TeamPatch
}

type bowlerPatchRequest struct {
	idPath
	domain.BowlerPatch
}

type submitScoresRequest struct {
	idPath
	SubmitScoresRequest
}

type apiOperation struct {
	method, path, summary string
	req                   any
	resp                  any
	status                int
	public                bool
}

var apiOperations = []apiOperation{
	{http.MethodGet, "/health", "Health check", nil, HealthResponse{}, http.StatusOK, true},
	{http.MethodGet, "/api/dashboard", "All leagues, teams and bowlers", nil, service.Dashboard{}, http.StatusOK, true},
	{http.MethodGet, "/api/leagues", "List leagues", nil, []leagueSchema{}, http.StatusOK, true},
	{http.MethodPost, "/api/leagues", "Create league", domain.LeagueInput{}, leagueSchema{}, http.StatusCreated, false},
	{http.MethodGet, "/api/leagues/{id}", "League overview with standings and recent games", idPath{}, service.LeagueOverview{}, http.StatusOK, true},
	{http.MethodPatch, "/api/leagues/{id}", "Update league", leaguePatchRequest{}, leagueSchema{}, http.StatusOK, false},
	{http.MethodDelete, "/api/leagues/{id}", "Delete league with everything in it", idPath{}, nil, http.StatusNoContent, false},
	{http.MethodGet, "/api/leagues/{id}/info", "League configuration", idPath{}, leagueSchema{}, http.StatusOK, true},
	{http.MethodGet, "/api/leagues/{id}/teams", "Teams with records, most points first", idPath{}, service.LeagueTeams{}, http.StatusOK, true},
	{http.MethodGet, "/api/leagues/{id}/standings", "Team and individual standings", idPath{}, standings.Snapshot{}, http.StatusOK, true},
	{http.MethodGet, "/api/leagues/{id}/scores", "Schedule and scores with the next week to enter", idPath{}, service.ScoreBoard{}, http.StatusOK, true},
	{http.MethodPost, "/api/leagues/{id}/calculate-finals", "Complete the league and return final standings", idPath{}, FinalsResponse{}, http.StatusOK, false},
	{http.MethodPost, "/api/teams", "Create team", domain.TeamInput{}, domain.Team{}, http.StatusCreated, false},
	{http.MethodGet, "/api/teams/{id}", "Team with record and bowlers", idPath{}, domain.TeamWithStats{}, http.StatusOK, true},
	{http.MethodPatch, "/api/teams/{id}", "Rename team", teamPatchRequest{}, domain.Team{}, http.StatusOK, false},
	{http.MethodDelete, "/api/teams/{id}", "Delete team, its bowlers and games", idPath{}, nil, http.StatusNoContent, false},
	{http.MethodPost, "/api/bowlers", "Create bowler", domain.BowlerInput{}, domain.Bowler{}, http.StatusCreated, false},
	{http.MethodGet, "/api/bowlers/{id}", "Bowler with statistics", idPath{}, domain.BowlerWithStats{}, http.StatusOK, true},
	{http.MethodPatch, "/api/bowlers/{id}", "Update or move bowler within the league", bowlerPatchRequest{}, domain.Bowler{}, http.StatusOK, false},
	{http.MethodDelete, "/api/bowlers/{id}", "Delete bowler and their scores", idPath{}, nil, http.StatusNoContent, false},
	{http.MethodPost, "/api/games", "Schedule game", domain.GameInput{}, domain.Game{}, http.StatusCreated, false},
	{http.MethodGet, "/api/games/{id}", "Game with its score rows", idPath{}, service.GameSheet{}, http.StatusOK, true},
	{http.MethodDelete, "/api/games/{id}", "Delete game and its scores", idPath{}, nil, http.StatusNoContent, false},
	{http.MethodPost, "/api/games/{id}/scores", "Replace the game's score sheet", submitScoresRequest{}, service.SubmitResult{}, http.StatusOK, false},
	{http.MethodPost, "/api/extract/roster", "Read a team sheet photo", ExtractRequest{}, domain.RosterExtraction{}, http.StatusOK, false},
	{http.MethodPost, "/api/extract/scores", "Read a score sheet photo", ExtractRequest{}, service.ScoreExtraction{}, http.StatusOK, false},
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Leaguebook API"
	r.Spec.Info.Version = "1.0.0"
	r.Spec.Info.WithDescription("Bowling league standings, handicaps and score entry.")

	for _, op := range apiOperations {
		oc, err := r.NewOperationContext(op.method, op.path)
		if err != nil {
			continue
		}
		oc.SetSummary(op.summary)
		oc.AddRespStructure(op.resp, openapi.WithHTTPStatus(op.status))
		if op.req != nil {
			oc.AddReqStructure(op.req)
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
		}
		if _, ok := op.req.(idPath); ok {
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
		}
		if !op.public {
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
			oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
		}
		_ = r.AddOperation(oc)
	}
	return r.Spec
}

// OpenAPIHandler serves the API description generated from the request and
// response types.
func OpenAPIHandler() http.HandlerFunc {
	data, _ := json.MarshalIndent(newOpenAPISpec(), "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
