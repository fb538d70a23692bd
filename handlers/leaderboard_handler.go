package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Dosada05/tournament-stats/models"
	"github.com/Dosada05/tournament-stats/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
	exportService      services.ExportService
}

func NewLeaderboardHandler(ls services.LeaderboardService, es services.ExportService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: ls, exportService: es}
}

// leaderboardQuery reads category, entity_type, limit and offset. Unknown
// categories and entity types fall back in the service, not here.
func leaderboardQuery(r *http.Request) (models.LeaderboardQuery, error) {
	query := models.LeaderboardQuery{
		Category:   models.LeaderboardCategory(r.URL.Query().Get("category")),
		EntityType: models.EntityType(r.URL.Query().Get("entity_type")),
	}
	if query.Category == "" {
		query.Category = models.LeaderboardPoints
	}
	if query.EntityType == "" {
		query.EntityType = models.EntityPlayer
	}
	var err error
	query.Limit, query.Offset, err = pagination(r, models.DefaultPageLimit)
	return query, err
}

// GetHandler godoc
// @Summary Leaderboard
// @Tags leaderboards
// @Description Unknown categories rank by win_rate and unknown entity types rank teams; meta echoes the effective values.
// @Produce json
// @Param category query string false "Ranking category" Enums(points, wins, win_rate, earnings) default(points)
// @Param entity_type query string false "Ranked entity" Enums(player, team) default(player)
// @Param limit query int false "Page size, clamped to [1, 100]" default(20)
// @Param offset query int false "Rows to skip" default(0)
// @Success 200 {object} map[string]interface{} "Ranked page"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /leaderboards [get]
func (h *LeaderboardHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	query, err := leaderboardQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	board, err := h.leaderboardService.Leaderboard(r.Context(), query)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeList(w, r, board, board.Limit, board.Offset, len(board.Entries), board.Total)
}

// ExportHandler godoc
// @Summary Export leaderboard as XLSX
// @Tags leaderboards
// @Description Same query as the leaderboard, rendered as a workbook.
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param category query string false "Ranking category" Enums(points, wins, win_rate, earnings) default(points)
// @Param entity_type query string false "Ranked entity" Enums(player, team) default(player)
// @Param limit query int false "Page size, clamped to [1, 100]" default(20)
// @Param offset query int false "Rows to skip" default(0)
// @Success 200 {file} file "Leaderboard workbook"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /leaderboards/export [get]
func (h *LeaderboardHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	query, err := leaderboardQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	data, name, err := h.exportService.LeaderboardWorkbook(r.Context(), query)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.Header().Set("Content-Type", services.XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
