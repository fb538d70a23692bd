package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-stats/services"
)

// AnalyticsHandler serves the dashboard, growth metrics and stored snapshots.
type AnalyticsHandler struct {
	dashboardService services.DashboardService
	growthService    services.GrowthService
	exportService    services.ExportService
}

func NewAnalyticsHandler(ds services.DashboardService, gs services.GrowthService, es services.ExportService) *AnalyticsHandler {
	return &AnalyticsHandler{dashboardService: ds, growthService: gs, exportService: es}
}

// DashboardHandler godoc
// @Summary Analytics dashboard
// @Tags analytics
// @Description Platform totals, top five players and teams, recent tournament statistics and growth metrics.
// @Produce json
// @Success 200 {object} map[string]interface{} "Dashboard"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /analytics/dashboard [get]
func (h *AnalyticsHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.dashboardService.GetDashboard(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, dashboard)
}

// GrowthHandler godoc
// @Summary Growth metrics
// @Tags analytics
// @Description Current calendar month against the previous one (UTC).
// @Produce json
// @Success 200 {object} map[string]interface{} "Growth metrics"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /analytics/growth [get]
func (h *AnalyticsHandler) GrowthHandler(w http.ResponseWriter, r *http.Request) {
	growth, err := h.growthService.GrowthMetrics(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, growth)
}

// SnapshotHandler stores the current dashboard as a JSON object in the configured bucket.
//
// @Summary Store a dashboard snapshot
// @Tags analytics
// @Produce json
// @Success 201 {object} map[string]interface{} "Snapshot key and public URL"
// @Failure 401 {object} map[string]interface{} "Missing or invalid bearer token"
// @Failure 403 {object} map[string]interface{} "Role is not organizer or admin"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Failure 503 {object} map[string]interface{} "Snapshot storage is not configured"
// @Security BearerAuth
// @Router /analytics/dashboard/snapshots [post]
func (h *AnalyticsHandler) SnapshotHandler(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.exportService.CreateDashboardSnapshot(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusCreated, snapshot)
}
