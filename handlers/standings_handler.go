package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-stats/models"
	"github.com/Dosada05/tournament-stats/services"
)

// StandingsHandler exposes the standings table of a tournament.
type StandingsHandler struct {
	standingsService services.StandingsService
}

func NewStandingsHandler(ss services.StandingsService) *StandingsHandler {
	return &StandingsHandler{standingsService: ss}
}

type bulkStandingsRequest struct {
	Standings []models.StandingUpdate `json:"standings"`
}

// ListHandler godoc
// @Summary List standings
// @Tags standings
// @Description Ordered by position (unset last), then points, goal difference, games won and participant id.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param category_id query int false "Category ID; omitted means the whole tournament"
// @Success 200 {object} map[string]interface{} "Standings rows"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /tournaments/{tournamentID}/standings [get]
func (h *StandingsHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	categoryID, err := queryCategory(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.standingsService.ListStandings(r.Context(), tournamentID, categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeList(w, r, standings, len(standings), 0, len(standings), len(standings))
}

// BulkUpsertHandler writes standings rows for the tournament in the path.
// Existing rows are partially updated, missing rows are inserted.
//
// @Summary Bulk upsert standings
// @Tags standings
// @Description Rows are keyed by tournament, category and participant. Only supplied fields overwrite existing values.
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param body body handlers.bulkStandingsRequest true "Standings rows"
// @Success 200 {object} map[string]interface{} "Inserted, updated and failed counts"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 401 {object} map[string]interface{} "Missing or invalid bearer token"
// @Failure 403 {object} map[string]interface{} "Role is not organizer or admin"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/standings [put]
func (h *StandingsHandler) BulkUpsertHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req bulkStandingsRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	for i := range req.Standings {
		req.Standings[i].TournamentID = tournamentID
	}

	summary, err := h.standingsService.BulkUpsert(r.Context(), req.Standings)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, summary)
}

// RecalculateHandler godoc
// @Summary Reset standings
// @Tags standings
// @Description Deletes every standings row of the tournament.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{} "Number of deleted rows"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 401 {object} map[string]interface{} "Missing or invalid bearer token"
// @Failure 403 {object} map[string]interface{} "Role is not organizer or admin"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/standings/recalculate [post]
func (h *StandingsHandler) RecalculateHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	deleted, err := h.standingsService.RecalculateStandings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, jsonResponse{"tournament_id": tournamentID, "deleted": deleted})
}

// ComputeHandler godoc
// @Summary Compute standings from matches
// @Tags standings
// @Description Derives rows from completed and forfeited matches and their set results, then upserts them.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param category_id query int false "Category ID; omitted means the whole tournament"
// @Success 200 {object} map[string]interface{} "Computed standings"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 401 {object} map[string]interface{} "Missing or invalid bearer token"
// @Failure 403 {object} map[string]interface{} "Role is not organizer or admin"
// @Failure 404 {object} map[string]interface{} "Tournament not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/standings/compute [post]
func (h *StandingsHandler) ComputeHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	categoryID, err := queryCategory(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.standingsService.ComputeStandings(r.Context(), tournamentID, categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeList(w, r, standings, len(standings), 0, len(standings), len(standings))
}
