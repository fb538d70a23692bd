package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/tournament-stats/models"
	"github.com/Dosada05/tournament-stats/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

type stubMatchService struct {
	services.MatchService
	GetMatchFunc         func(ctx context.Context, id int) (*models.Match, error)
	ListMatchesFunc      func(ctx context.Context, filter models.ListMatchesFilter) ([]*models.Match, error)
	CompleteMatchFunc    func(ctx context.Context, id int, winnerSide *int, isDraw bool) (*models.Match, error)
	CancelMatchFunc      func(ctx context.Context, id int, reason string) (*models.Match, error)
	BulkUpdateStatusFunc func(ctx context.Context, ids []int, status models.MatchStatus) (*models.BulkResult, error)
}

func (s *stubMatchService) GetMatch(ctx context.Context, id int) (*models.Match, error) {
	return s.GetMatchFunc(ctx, id)
}

func (s *stubMatchService) ListMatches(ctx context.Context, filter models.ListMatchesFilter) ([]*models.Match, error) {
	return s.ListMatchesFunc(ctx, filter)
}

func (s *stubMatchService) CompleteMatch(ctx context.Context, id int, winnerSide *int, isDraw bool) (*models.Match, error) {
	return s.CompleteMatchFunc(ctx, id, winnerSide, isDraw)
}

func (s *stubMatchService) CancelMatch(ctx context.Context, id int, reason string) (*models.Match, error) {
	return s.CancelMatchFunc(ctx, id, reason)
}

func (s *stubMatchService) BulkUpdateStatus(ctx context.Context, ids []int, status models.MatchStatus) (*models.BulkResult, error) {
	return s.BulkUpdateStatusFunc(ctx, ids, status)
}

type stubStandingsService struct {
	services.StandingsService
	BulkUpsertFunc func(ctx context.Context, updates []models.StandingUpdate) (*services.UpsertSummary, error)
}

func (s *stubStandingsService) BulkUpsert(ctx context.Context, updates []models.StandingUpdate) (*services.UpsertSummary, error) {
	return s.BulkUpsertFunc(ctx, updates)
}

type stubStatisticsService struct {
	services.StatisticsService
	PlayerStatisticsFunc func(ctx context.Context, playerID int, filters models.StatisticsFilters) (*models.PlayerStatistics, error)
}

func (s *stubStatisticsService) PlayerStatistics(ctx context.Context, playerID int, filters models.StatisticsFilters) (*models.PlayerStatistics, error) {
	return s.PlayerStatisticsFunc(ctx, playerID, filters)
}

type stubExportService struct {
	services.ExportService
	WorkbookFunc func(ctx context.Context, query models.LeaderboardQuery) ([]byte, string, error)
	SnapshotFunc func(ctx context.Context) (*models.DashboardSnapshot, error)
}

func (s *stubExportService) LeaderboardWorkbook(ctx context.Context, query models.LeaderboardQuery) ([]byte, string, error) {
	return s.WorkbookFunc(ctx, query)
}

func (s *stubExportService) CreateDashboardSnapshot(ctx context.Context) (*models.DashboardSnapshot, error) {
	return s.SnapshotFunc(ctx)
}

type envelope struct {
	Result json.RawMessage        `json:"result"`
	Error  interface{}            `json:"error"`
	Meta   map[string]interface{} `json:"meta"`
}

func do(t *testing.T, router http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, reader))

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func matchRouter(ms services.MatchService) http.Handler {
	h := NewMatchHandler(ms)
	r := chi.NewRouter()
	r.Get("/matches", h.ListHandler)
	r.Get("/matches/{matchID}", h.GetByIDHandler)
	r.Post("/matches/{matchID}/complete", h.CompleteHandler)
	r.Post("/matches/{matchID}/cancel", h.CancelHandler)
	r.Post("/matches/bulk/status", h.BulkStatusHandler)
	return r
}

func TestMatchHandler_GetByID(t *testing.T) {
	ms := &stubMatchService{GetMatchFunc: func(_ context.Context, id int) (*models.Match, error) {
		switch id {
		case 7:
			return &models.Match{ID: 7, TournamentID: 1, Status: models.MatchStatusScheduled}, nil
		case 8:
			return nil, errors.New("connection refused")
		}
		return nil, services.ErrMatchNotFound
	}}
	router := matchRouter(ms)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{name: "found", target: "/matches/7", want: http.StatusOK},
		{name: "unknown id", target: "/matches/99", want: http.StatusNotFound},
		{name: "not a number", target: "/matches/abc", want: http.StatusBadRequest},
		{name: "zero", target: "/matches/0", want: http.StatusBadRequest},
		{name: "storage failure", target: "/matches/8", want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, router, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, env.Meta, "timestamp")
			if tt.want != http.StatusOK {
				assert.NotEmpty(t, env.Error)
				return
			}
			var m models.Match
			require.NoError(t, json.Unmarshal(env.Result, &m))
			assert.Equal(t, 7, m.ID)
		})
	}

	_, env := do(t, router, http.MethodGet, "/matches/8", "")
	assert.NotContains(t, env.Error, "connection refused")
}

func TestMatchHandler_ListParsesFilters(t *testing.T) {
	var got models.ListMatchesFilter
	ms := &stubMatchService{ListMatchesFunc: func(_ context.Context, f models.ListMatchesFilter) ([]*models.Match, error) {
		got = f
		return []*models.Match{{ID: 1}, {ID: 2}}, nil
	}}
	router := matchRouter(ms)

	rec, env := do(t, router, http.MethodGet, "/matches?tournament_id=3&category_id=0&status=completed&limit=500&offset=-4", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, got.TournamentID)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, 0, *got.CategoryID)
	require.NotNil(t, got.Status)
	assert.Equal(t, models.MatchStatusCompleted, *got.Status)
	assert.Equal(t, 100, got.Limit)
	assert.Equal(t, 0, got.Offset)
	assert.Equal(t, float64(100), env.Meta["limit"])
	assert.Equal(t, float64(0), env.Meta["offset"])
	assert.Equal(t, float64(2), env.Meta["count"])

	for _, target := range []string{"/matches?status=finished", "/matches?limit=ten", "/matches?tournament_id=-1"} {
		rec, _ := do(t, router, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestMatchHandler_Complete(t *testing.T) {
	ms := &stubMatchService{CompleteMatchFunc: func(_ context.Context, id int, winnerSide *int, isDraw bool) (*models.Match, error) {
		if isDraw && winnerSide != nil {
			return nil, services.ErrMatchDrawWithWinner
		}
		return &models.Match{ID: id, Status: models.MatchStatusCompleted, WinnerSide: winnerSide, IsDraw: isDraw}, nil
	}}
	router := matchRouter(ms)

	rec, env := do(t, router, http.MethodPost, "/matches/4/complete", `{"winner_side": 2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var m models.Match
	require.NoError(t, json.Unmarshal(env.Result, &m))
	require.NotNil(t, m.WinnerSide)
	assert.Equal(t, 2, *m.WinnerSide)

	rec, env = do(t, router, http.MethodPost, "/matches/4/complete", `{"winner_side": 1, "is_draw": true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, services.ErrMatchDrawWithWinner.Error(), env.Error)

	rec, env = do(t, router, http.MethodPost, "/matches/4/complete", `{"winner": 1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error, "unknown key")
}

func TestMatchHandler_CancelBodyOptional(t *testing.T) {
	var reasons []string
	ms := &stubMatchService{CancelMatchFunc: func(_ context.Context, id int, reason string) (*models.Match, error) {
		reasons = append(reasons, reason)
		return &models.Match{ID: id, Status: models.MatchStatusCancelled}, nil
	}}
	router := matchRouter(ms)

	rec, _ := do(t, router, http.MethodPost, "/matches/4/cancel", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, router, http.MethodPost, "/matches/4/cancel", `{"reason": "rain"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"", "rain"}, reasons)
}

func TestMatchHandler_BulkStatus(t *testing.T) {
	ms := &stubMatchService{BulkUpdateStatusFunc: func(_ context.Context, ids []int, status models.MatchStatus) (*models.BulkResult, error) {
		if len(ids) == 0 {
			return nil, services.ErrBulkEmpty
		}
		res := &models.BulkResult{}
		for _, id := range ids {
			if id == 2 {
				res.Add(id, services.ErrMatchNotFound)
				continue
			}
			res.Add(id, nil)
		}
		return res, nil
	}}
	router := matchRouter(ms)

	rec, env := do(t, router, http.MethodPost, "/matches/bulk/status", `{"match_ids": [1, 2, 3], "status": "cancelled"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var res models.BulkResult
	require.NoError(t, json.Unmarshal(env.Result, &res))
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 1, res.Failed)

	rec, _ = do(t, router, http.MethodPost, "/matches/bulk/status", `{"match_ids": [], "status": "cancelled"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStandingsHandler_BulkUpsertUsesPathTournament(t *testing.T) {
	var got []models.StandingUpdate
	ss := &stubStandingsService{BulkUpsertFunc: func(_ context.Context, updates []models.StandingUpdate) (*services.UpsertSummary, error) {
		got = updates
		return &services.UpsertSummary{Inserted: len(updates)}, nil
	}}
	h := NewStandingsHandler(ss)
	r := chi.NewRouter()
	r.Put("/tournaments/{tournamentID}/standings", h.BulkUpsertHandler)

	body := `{"standings": [{"participant_id": 4, "points": 6}, {"tournament_id": 99, "participant_id": 5}]}`
	rec, env := do(t, r, http.MethodPut, "/tournaments/12/standings", body)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, got, 2)
	assert.Equal(t, 12, got[0].TournamentID)
	assert.Equal(t, 12, got[1].TournamentID)
	require.NotNil(t, got[0].Points)
	assert.Equal(t, 6, *got[0].Points)

	var summary services.UpsertSummary
	require.NoError(t, json.Unmarshal(env.Result, &summary))
	assert.Equal(t, 2, summary.Inserted)
}

func TestStatisticsHandler_Filters(t *testing.T) {
	var got models.StatisticsFilters
	ss := &stubStatisticsService{PlayerStatisticsFunc: func(_ context.Context, playerID int, f models.StatisticsFilters) (*models.PlayerStatistics, error) {
		got = f
		if playerID == 404 {
			return nil, services.ErrPlayerNotFound
		}
		return &models.PlayerStatistics{PlayerID: playerID}, nil
	}}
	h := NewStatisticsHandler(ss)
	r := chi.NewRouter()
	r.Get("/statistics/players/{playerID}", h.PlayerHandler)

	rec, _ := do(t, r, http.MethodGet, "/statistics/players/3?sport=tennis&tournament_id=5&from=2025-01-01&to=2025-02-01T10:00:00Z", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tennis", got.Sport)
	assert.Equal(t, 5, got.TournamentID)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), got.From)
	assert.Equal(t, time.Date(2025, time.February, 1, 10, 0, 0, 0, time.UTC), got.To)

	tests := []struct {
		target string
		want   int
	}{
		{target: "/statistics/players/404", want: http.StatusNotFound},
		{target: "/statistics/players/3?from=yesterday", want: http.StatusBadRequest},
		{target: "/statistics/players/3?from=2025-03-01&to=2025-02-01", want: http.StatusBadRequest},
		{target: "/statistics/players/3?tournament_id=x", want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec, _ := do(t, r, http.MethodGet, tt.target, "")
		assert.Equal(t, tt.want, rec.Code, tt.target)
	}
}

func TestLeaderboardHandler_Export(t *testing.T) {
	var got models.LeaderboardQuery
	es := &stubExportService{WorkbookFunc: func(_ context.Context, q models.LeaderboardQuery) ([]byte, string, error) {
		got = q
		return []byte("PK-fake"), "leaderboard_team_wins.xlsx", nil
	}}
	h := NewLeaderboardHandler(nil, es)
	r := chi.NewRouter()
	r.Get("/leaderboards/export", h.ExportHandler)

	rec, _ := do(t, r, http.MethodGet, "/leaderboards/export?category=wins&entity_type=team&limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.XLSXContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="leaderboard_team_wins.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK-fake", rec.Body.String())
	assert.Equal(t, models.LeaderboardQuery{Category: models.LeaderboardWins, EntityType: models.EntityTeam, Limit: 10}, got)
}

func TestAnalyticsHandler_SnapshotDisabled(t *testing.T) {
	es := &stubExportService{SnapshotFunc: func(context.Context) (*models.DashboardSnapshot, error) {
		return nil, services.ErrSnapshotStorageDisabled
	}}
	h := NewAnalyticsHandler(nil, nil, es)
	r := chi.NewRouter()
	r.Post("/analytics/dashboard/snapshots", h.SnapshotHandler)

	rec, env := do(t, r, http.MethodPost, "/analytics/dashboard/snapshots", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, services.ErrSnapshotStorageDisabled.Error(), env.Error)
}
