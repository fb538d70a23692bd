package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/tournament-stats/models"
	"github.com/Dosada05/tournament-stats/services"
)

// MatchHandler serves match CRUD, lifecycle transitions and bulk status changes.
type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

type completeMatchRequest struct {
	WinnerSide *int `json:"winner_side"`
	IsDraw     bool `json:"is_draw"`
}

type cancelMatchRequest struct {
	Reason string `json:"reason"`
}

type forfeitMatchRequest struct {
	WinnerSide int `json:"winner_side"`
}

type matchStatusRequest struct {
	Status models.MatchStatus `json:"status"`
}

type bulkStatusRequest struct {
	MatchIDs []int             `json:"match_ids"`
	Status   models.MatchStatus `json:"status"`
}

type bulkCancelRequest struct {
	MatchIDs []int  `json:"match_ids"`
	Reason   string `json:"reason"`
}

// CreateHandler godoc
// @Summary Create a match
// @Tags matches
// @Description The match always starts in the scheduled state.
// @Accept json
// @Produce json
// @Param body body services.CreateMatchInput true "Tournament, sides and schedule"
// @Success 201 {object} map[string]interface{} "Created match"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 401 {object} map[string]interface{} "Missing or invalid bearer token"
// @Failure 403 {object} map[string]interface{} "Role is not organizer or admin"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /matches [post]
func (h *MatchHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.CreateMatch(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusCreated, match)
}

// GetByIDHandler godoc
// @Summary Get a match
// @Tags matches
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{} "Match"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 404 {object} map[string]interface{} "Match not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /matches/{matchID} [get]
func (h *MatchHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, match)
}

// ListHandler godoc
// @Summary List matches
// @Tags matches
// @Description Matches ordered by schedule, then id.
// @Produce json
// @Param tournament_id query int false "Filter by tournament"
// @Param category_id query int false "Filter by category"
// @Param status query string false "Filter by status" Enums(scheduled, in_progress, completed, cancelled, postponed, forfeited, bye)
// @Param limit query int false "Page size, clamped to [1, 100]" default(20)
// @Param offset query int false "Rows to skip" default(0)
// @Success 200 {object} map[string]interface{} "Page of matches"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /matches [get]
func (h *MatchHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var filter models.ListMatchesFilter
	var err error

	if filter.TournamentID, err = queryPositiveInt(r, "tournament_id"); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if filter.CategoryID, err = queryCategory(r); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := models.MatchStatus(statusStr)
		if !status.IsValid() {
			badRequestResponse(w, r, services.ErrMatchInvalidStatus)
			return
		}
		filter.Status = &status
	}
	if filter.Limit, filter.Offset, err = pagination(r, models.DefaultPageLimit); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListMatches(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeList(w, r, matches, filter.Limit, filter.Offset, len(matches), -1)
}

// UpdateHandler godoc
// @Summary Update match schedule
// @Tags matches
// @Description Changes schedule, participants and notes. Status is never touched here.
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param body body services.UpdateMatchInput true "Fields to change"
// @Success 200 {object} map[string]interface{} "Updated match"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 401 {object} map[string]interface{} "Missing or invalid bearer token"
// @Failure 403 {object} map[string]interface{} "Role is not organizer or admin"
// @Failure 404 {object} map[string]interface{} "Match not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /matches/{matchID} [put]
func (h *MatchHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.UpdateMatch(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, match)
}

// DeleteHandler godoc
// @Summary Delete a match
// @Tags matches
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{} "Deleted match id"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 401 {object} map[string]interface{} "Missing or invalid bearer token"
// @Failure 403 {object} map[string]interface{} "Role is not organizer or admin"
// @Failure 404 {object} map[string]interface{} "Match not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /matches/{matchID} [delete]
func (h *MatchHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.DeleteMatch(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, jsonResponse{"id": id, "deleted": true})
}

// StartHandler moves a scheduled match to in_progress and stamps its start time.
//
// @Summary Start a match
// @Tags matches
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{} "Started match"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 401 {object} map[string]interface{} "Missing or invalid bearer token"
// @Failure 403 {object} map[string]interface{} "Role is not organizer or admin"
// @Failure 404 {object} map[string]interface{} "Match not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /matches/{matchID}/start [post]
func (h *MatchHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.StartMatch(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, match)
}

// CompleteHandler finishes a match with a winner side, or as a draw.
//
// @Summary Complete a match
// @Tags matches
// @Description winner_side must be 1 or 2 unless is_draw is set.
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param body body handlers.completeMatchRequest true "Winner side or draw flag"
// @Success 200 {object} map[string]interface{} "Completed match"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 401 {object} map[string]interface{} "Missing or invalid bearer token"
// @Failure 403 {object} map[string]interface{} "Role is not organizer or admin"
// @Failure 404 {object} map[string]interface{} "Match not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /matches/{matchID}/complete [post]
func (h *MatchHandler) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req completeMatchRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.CompleteMatch(r.Context(), id, req.WinnerSide, req.IsDraw)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, match)
}

// CancelHandler godoc
// @Summary Cancel a match
// @Tags matches
// @Description Legal from every state. The reason is appended to the notes.
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param body body handlers.cancelMatchRequest false "Optional reason"
// @Success 200 {object} map[string]interface{} "Cancelled match"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 401 {object} map[string]interface{} "Missing or invalid bearer token"
// @Failure 403 {object} map[string]interface{} "Role is not organizer or admin"
// @Failure 404 {object} map[string]interface{} "Match not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /matches/{matchID}/cancel [post]
func (h *MatchHandler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req cancelMatchRequest
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &req); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	match, err := h.matchService.CancelMatch(r.Context(), id, req.Reason)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, match)
}

// PostponeHandler marks a match as postponed without an end time.
//
// @Summary Postpone a match
// @Tags matches
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{} "Postponed match"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 401 {object} map[string]interface{} "Missing or invalid bearer token"
// @Failure 403 {object} map[string]interface{} "Role is not organizer or admin"
// @Failure 404 {object} map[string]interface{} "Match not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /matches/{matchID}/postpone [post]
func (h *MatchHandler) PostponeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.PostponeMatch(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, match)
}

// ForfeitHandler ends a match by forfeit in favour of the given side.
//
// @Summary Forfeit a match
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param body body handlers.forfeitMatchRequest true "Side that wins by forfeit"
// @Success 200 {object} map[string]interface{} "Forfeited match"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 401 {object} map[string]interface{} "Missing or invalid bearer token"
// @Failure 403 {object} map[string]interface{} "Role is not organizer or admin"
// @Failure 404 {object} map[string]interface{} "Match not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /matches/{matchID}/forfeit [post]
func (h *MatchHandler) ForfeitHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req forfeitMatchRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.ForfeitMatch(r.Context(), id, req.WinnerSide)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, match)
}

// SetStatusHandler godoc
// @Summary Set match status
// @Tags matches
// @Description Generic transition, checked against the match state table.
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param body body handlers.matchStatusRequest true "Target status"
// @Success 200 {object} map[string]interface{} "Updated match"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 401 {object} map[string]interface{} "Missing or invalid bearer token"
// @Failure 403 {object} map[string]interface{} "Role is not organizer or admin"
// @Failure 404 {object} map[string]interface{} "Match not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /matches/{matchID}/status [patch]
func (h *MatchHandler) SetStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req matchStatusRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if req.Status == "" {
		badRequestResponse(w, r, errors.New("status is required"))
		return
	}

	match, err := h.matchService.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, match)
}

// BulkStatusHandler godoc
// @Summary Set status on many matches
// @Tags matches
// @Description Each match is handled on its own; the response lists per-item outcomes.
// @Accept json
// @Produce json
// @Param body body handlers.bulkStatusRequest true "Match ids and target status"
// @Success 200 {object} map[string]interface{} "Per-item outcomes"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 401 {object} map[string]interface{} "Missing or invalid bearer token"
// @Failure 403 {object} map[string]interface{} "Role is not organizer or admin"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /matches/bulk/status [post]
func (h *MatchHandler) BulkStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req bulkStatusRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.matchService.BulkUpdateStatus(r.Context(), req.MatchIDs, req.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, result)
}

// BulkCancelHandler godoc
// @Summary Cancel many matches
// @Tags matches
// @Description Each match is handled on its own; the response lists per-item outcomes.
// @Accept json
// @Produce json
// @Param body body handlers.bulkCancelRequest true "Match ids and reason"
// @Success 200 {object} map[string]interface{} "Per-item outcomes"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 401 {object} map[string]interface{} "Missing or invalid bearer token"
// @Failure 403 {object} map[string]interface{} "Role is not organizer or admin"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Security BearerAuth
// @Router /matches/bulk/cancel [post]
func (h *MatchHandler) BulkCancelHandler(w http.ResponseWriter, r *http.Request) {
	var req bulkCancelRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.matchService.BulkCancel(r.Context(), req.MatchIDs, req.Reason)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, result)
}
