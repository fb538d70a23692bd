package handlers

import (
	"net/http"

	"github.com/Dosada05/tournament-stats/services"
)

type MatchResultHandler struct {
	resultService services.MatchResultService
}

func NewMatchResultHandler(rs services.MatchResultService) *MatchResultHandler {
	return &MatchResultHandler{resultService: rs}
}

type bulkResultsRequest struct {
	Results []services.MatchResultInput `json:"results"`
}

// CreateHandler godoc
// @Summary Record a set result
// @Tags match-results
// @Description Scores must not be negative and the set number starts at 1.
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param body body services.MatchResultInput true "Set result"
// @Success 201 {object} map[string]interface{} "Created result"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 401 {object} map[string]interface{} "Missing or invalid bearer token"
// @Failure 403 {object} map[string]interface{} "Role is not organizer or admin"
// @Failure 404 {object} map[string]interface{} "Match not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /matches/{matchID}/results [post]
func (h *MatchResultHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.MatchResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.resultService.CreateResult(r.Context(), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusCreated, result)
}

// BulkCreateHandler godoc
// @Summary Record many set results
// @Tags match-results
// @Description Each set is stored on its own; failed sets are reported by set number.
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param body body handlers.bulkResultsRequest true "Set results"
// @Success 201 {object} map[string]interface{} "Per-item outcomes"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 401 {object} map[string]interface{} "Missing or invalid bearer token"
// @Failure 403 {object} map[string]interface{} "Role is not organizer or admin"
// @Failure 404 {object} map[string]interface{} "Match not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /matches/{matchID}/results/bulk [post]
func (h *MatchResultHandler) BulkCreateHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req bulkResultsRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.resultService.BulkCreateResults(r.Context(), matchID, req.Results)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusCreated, result)
}

// ListHandler godoc
// @Summary List set results of a match
// @Tags match-results
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{} "Results ordered by set number"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 404 {object} map[string]interface{} "Match not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /matches/{matchID}/results [get]
func (h *MatchResultHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	results, err := h.resultService.ListResults(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeList(w, r, results, len(results), 0, len(results), len(results))
}

// SummaryHandler godoc
// @Summary Match score summary
// @Tags match-results
// @Description Sets won and total points per side.
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{} "Score summary"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 404 {object} map[string]interface{} "Match not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /matches/{matchID}/summary [get]
func (h *MatchResultHandler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summary, err := h.resultService.GetMatchScoreSummary(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, summary)
}

// GetByIDHandler godoc
// @Summary Get a set result
// @Tags match-results
// @Produce json
// @Param resultID path int true "Match result ID"
// @Success 200 {object} map[string]interface{} "Result"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 404 {object} map[string]interface{} "Match result not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /match-results/{resultID} [get]
func (h *MatchResultHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "resultID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.resultService.GetResult(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, result)
}

// UpdateHandler godoc
// @Summary Correct a set result
// @Tags match-results
// @Accept json
// @Produce json
// @Param resultID path int true "Match result ID"
// @Param body body services.MatchResultInput true "Corrected result"
// @Success 200 {object} map[string]interface{} "Updated result"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 401 {object} map[string]interface{} "Missing or invalid bearer token"
// @Failure 403 {object} map[string]interface{} "Role is not organizer or admin"
// @Failure 404 {object} map[string]interface{} "Match result not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /match-results/{resultID} [put]
func (h *MatchResultHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "resultID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.MatchResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.resultService.UpdateResult(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, result)
}

// DeleteHandler godoc
// @Summary Delete a set result
// @Tags match-results
// @Produce json
// @Param resultID path int true "Match result ID"
// @Success 200 {object} map[string]interface{} "Deleted result id"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 401 {object} map[string]interface{} "Missing or invalid bearer token"
// @Failure 403 {object} map[string]interface{} "Role is not organizer or admin"
// @Failure 404 {object} map[string]interface{} "Match result not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /match-results/{resultID} [delete]
func (h *MatchResultHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "resultID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.resultService.DeleteResult(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, jsonResponse{"id": id, "deleted": true})
}
