package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/tournament-stats/middleware"
	"github.com/Dosada05/tournament-stats/models"
	"github.com/Dosada05/tournament-stats/services"
	"github.com/go-chi/chi/v5"
)

type jsonResponse map[string]interface{}

// meta accompanies every response body.
type meta struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Limit     *int      `json:"limit,omitempty"`
	Offset    *int      `json:"offset,omitempty"`
	Count     *int      `json:"count,omitempty"`
	Total     *int      `json:"total,omitempty"`
}

func newMeta(r *http.Request) meta {
	return meta{
		RequestID: middleware.RequestIDFromContext(r.Context()),
		Timestamp: time.Now().UTC(),
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func writeResult(w http.ResponseWriter, r *http.Request, status int, result interface{}) {
	if err := writeJSON(w, status, jsonResponse{"result": result, "meta": newMeta(r)}, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write response", slog.Any("error", err))
	}
}

// writeList writes a page of results. total < 0 leaves it out of meta.
func writeList(w http.ResponseWriter, r *http.Request, result interface{}, limit, offset, count, total int) {
	m := newMeta(r)
	m.Limit, m.Offset, m.Count = &limit, &offset, &count
	if total >= 0 {
		m.Total = &total
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result, "meta": m}, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write response", slog.Any("error", err))
	}
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message, "meta": newMeta(r)}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
		slog.Any("error", err),
	)
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusNotFound, err.Error())
}

func serviceUnavailableResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusServiceUnavailable, err.Error())
}

// mapServiceErrorToHTTP translates service errors into HTTP responses.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrMatchResultNotFound),
		errors.Is(err, services.ErrTournamentNotFound),
		errors.Is(err, services.ErrPlayerNotFound),
		errors.Is(err, services.ErrTeamNotFound):
		notFoundResponse(w, r, err)

	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrMatchInvalidStatus),
		errors.Is(err, services.ErrMatchInvalidStatusTransition),
		errors.Is(err, services.ErrMatchInvalidWinnerSide),
		errors.Is(err, services.ErrMatchDrawWithWinner),
		errors.Is(err, services.ErrMatchTournamentRequired),
		errors.Is(err, services.ErrMatchParticipantsRequired),
		errors.Is(err, services.ErrMatchSideMixed),
		errors.Is(err, services.ErrMatchReferenceInvalid),
		errors.Is(err, services.ErrBulkEmpty),
		errors.Is(err, services.ErrBulkTooLarge),
		errors.Is(err, services.ErrMatchResultInvalidScore),
		errors.Is(err, services.ErrMatchResultInvalidSet),
		errors.Is(err, services.ErrMatchResultSetConflict),
		errors.Is(err, services.ErrStandingInvalid):
		badRequestResponse(w, r, err)

	case errors.Is(err, services.ErrSnapshotStorageDisabled):
		serviceUnavailableResponse(w, r, err)

	default:
		serverErrorResponse(w, r, err)
	}
}

func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		return 0, fmt.Errorf("missing %s in URL path", paramName)
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}

	if id <= 0 {
		return 0, fmt.Errorf("invalid %s value: %d", paramName, id)
	}

	return id, nil
}

// queryInt parses an optional integer query parameter; ok is false when absent.
func queryInt(r *http.Request, name string) (value int, ok bool, err error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, false, nil
	}
	value, err = strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s query parameter", name)
	}
	return value, true, nil
}

func queryPositiveInt(r *http.Request, name string) (int, error) {
	value, ok, err := queryInt(r, name)
	if err != nil {
		return 0, err
	}
	if ok && value <= 0 {
		return 0, fmt.Errorf("invalid %s query parameter", name)
	}
	return value, nil
}

// queryCategory reads category_id; nil means the tournament-wide table.
func queryCategory(r *http.Request) (*int, error) {
	value, ok, err := queryInt(r, "category_id")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if value < 0 {
		return nil, errors.New("invalid category_id query parameter")
	}
	return &value, nil
}

// pagination reads limit and offset. Limit is clamped to [1, 100] and a
// negative offset becomes 0; only non-numeric values are rejected.
func pagination(r *http.Request, defaultLimit int) (limit, offset int, err error) {
	limit, ok, err := queryInt(r, "limit")
	if err != nil {
		return 0, 0, err
	}
	if !ok {
		limit = defaultLimit
	}
	offset, _, err = queryInt(r, "offset")
	if err != nil {
		return 0, 0, err
	}
	if offset < 0 {
		offset = 0
	}
	return models.ClampLimit(limit), offset, nil
}

// queryTime accepts RFC 3339 timestamps and plain dates (YYYY-MM-DD, UTC).
func queryTime(r *http.Request, name string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s query parameter: use RFC 3339 or YYYY-MM-DD", name)
	}
	return t, nil
}

func statisticsFilters(r *http.Request) (models.StatisticsFilters, error) {
	filters := models.DefaultStatisticsFilters()
	filters.Sport = strings.TrimSpace(r.URL.Query().Get("sport"))

	var err error
	if filters.TournamentID, err = queryPositiveInt(r, "tournament_id"); err != nil {
		return filters, err
	}
	if filters.From, err = queryTime(r, "from"); err != nil {
		return filters, err
	}
	if filters.To, err = queryTime(r, "to"); err != nil {
		return filters, err
	}
	if !filters.From.IsZero() && !filters.To.IsZero() && filters.To.Before(filters.From) {
		return filters, errors.New("to must not be before from")
	}
	if filters.Limit, filters.Offset, err = pagination(r, models.DefaultPageLimit); err != nil {
		return filters, err
	}
	return filters, nil
}
