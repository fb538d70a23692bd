package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-stats/services"
)

type StatisticsHandler struct {
	statisticsService services.StatisticsService
}

func NewStatisticsHandler(ss services.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: ss}
}

// PlayerHandler godoc
// @Summary Player statistics
// @Tags statistics
// @Description A player without history gets a zero-filled record.
// @Produce json
// @Param playerID path int true "Player ID"
// @Param sport query string false "Only tournaments of this sport"
// @Param tournament_id query int false "Only this tournament"
// @Param from query string false "Lower bound (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "Upper bound, exclusive (RFC3339 or YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{} "Player statistics"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 404 {object} map[string]interface{} "Player not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /statistics/players/{playerID} [get]
func (h *StatisticsHandler) PlayerHandler(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	filters, err := statisticsFilters(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stats, err := h.statisticsService.PlayerStatistics(r.Context(), playerID, filters)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, stats)
}

// TeamHandler godoc
// @Summary Team statistics
// @Tags statistics
// @Description A team without history gets a zero-filled record.
// @Produce json
// @Param teamID path int true "Team ID"
// @Param sport query string false "Only tournaments of this sport"
// @Param tournament_id query int false "Only this tournament"
// @Param from query string false "Lower bound (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "Upper bound, exclusive (RFC3339 or YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{} "Team statistics"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 404 {object} map[string]interface{} "Team not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /statistics/teams/{teamID} [get]
func (h *StatisticsHandler) TeamHandler(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	filters, err := statisticsFilters(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stats, err := h.statisticsService.TeamStatistics(r.Context(), teamID, filters)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, stats)
}

// TournamentHandler godoc
// @Summary Tournament statistics
// @Tags statistics
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{} "Tournament statistics"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 404 {object} map[string]interface{} "Tournament not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /statistics/tournaments/{tournamentID} [get]
func (h *StatisticsHandler) TournamentHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stats, err := h.statisticsService.TournamentStatistics(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, stats)
}

// ListTournamentsHandler godoc
// @Summary List tournament statistics
// @Tags statistics
// @Produce json
// @Param sport query string false "Only tournaments of this sport"
// @Param from query string false "Created at or after (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "Created before (RFC3339 or YYYY-MM-DD)"
// @Param limit query int false "Page size, clamped to [1, 100]" default(20)
// @Param offset query int false "Rows to skip" default(0)
// @Success 200 {object} map[string]interface{} "Page of tournament statistics"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /statistics/tournaments [get]
func (h *StatisticsHandler) ListTournamentsHandler(w http.ResponseWriter, r *http.Request) {
	filters, err := statisticsFilters(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	page, total, err := h.statisticsService.ListTournamentStatistics(r.Context(), filters)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeList(w, r, page, filters.Limit, filters.Offset, len(page), total)
}
