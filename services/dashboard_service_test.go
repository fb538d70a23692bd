package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Dosada05/tournament-stats/metrics"
	"github.com/Dosada05/tournament-stats/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLeaderboard struct {
	LeaderboardFunc func(ctx context.Context, query models.LeaderboardQuery) (*models.Leaderboard, error)
}

func (s *stubLeaderboard) Leaderboard(ctx context.Context, query models.LeaderboardQuery) (*models.Leaderboard, error) {
	return s.LeaderboardFunc(ctx, query)
}

type stubStatistics struct {
	StatisticsService
	RecentFunc func(ctx context.Context, limit int) ([]models.TournamentStatistics, error)
}

func (s *stubStatistics) RecentTournamentStatistics(ctx context.Context, limit int) ([]models.TournamentStatistics, error) {
	return s.RecentFunc(ctx, limit)
}

type stubGrowth struct {
	GrowthFunc func(ctx context.Context) (*models.GrowthMetrics, error)
}

func (s *stubGrowth) GrowthMetrics(ctx context.Context) (*models.GrowthMetrics, error) {
	return s.GrowthFunc(ctx)
}

type dashboardFixture struct {
	players       *FakePlayerRepo
	teams         *FakeTeamRepo
	tournaments   *FakeTournamentRepo
	matches       *FakeMatchRepo
	registrations *FakeRegistrationRepo
	leaderboard   *stubLeaderboard
	statistics    *stubStatistics
	growth        *stubGrowth
}

func newDashboardFixture() *dashboardFixture {
	return &dashboardFixture{
		players: &FakePlayerRepo{ListFunc: func(context.Context, models.CreatedRange) ([]*models.Player, error) {
			return []*models.Player{{ID: 1}, {ID: 2}, {ID: 3}}, nil
		}},
		teams: &FakeTeamRepo{ListFunc: func(context.Context, models.CreatedRange) ([]*models.Team, error) {
			return []*models.Team{{ID: 1}}, nil
		}},
		tournaments: &FakeTournamentRepo{ListFunc: func(context.Context, models.ListTournamentsFilter) ([]*models.Tournament, error) {
			return []*models.Tournament{
				{ID: 1, Sport: "tennis", Status: models.TournamentStatusInProgress},
				{ID: 2, Sport: "padel", Status: models.TournamentStatusCompleted},
				{ID: 3, Sport: "tennis", Status: models.TournamentStatusInProgress},
			}, nil
		}},
		matches: &FakeMatchRepo{CountFunc: func(context.Context, models.ListMatchesFilter) (int, error) { return 12, nil }},
		registrations: &FakeRegistrationRepo{ListFunc: func(context.Context, models.ListRegistrationsFilter) ([]*models.TournamentRegistration, error) {
			return []*models.TournamentRegistration{
				paidRegistration(1, 100), paidRegistration(2, 50.5), paidRegistration(3, 0),
				paidRegistration(1, 10), {PlayerID: intPtr(2), Status: models.RegistrationStatusPending, PaymentAmount: 999},
			}, nil
		}},
		leaderboard: &stubLeaderboard{LeaderboardFunc: func(_ context.Context, q models.LeaderboardQuery) (*models.Leaderboard, error) {
			entry := models.LeaderboardEntry{Rank: 1, ID: 7, Name: string(q.EntityType)}
			return &models.Leaderboard{Entries: []models.LeaderboardEntry{entry}}, nil
		}},
		statistics: &stubStatistics{RecentFunc: func(context.Context, int) ([]models.TournamentStatistics, error) {
			return []models.TournamentStatistics{{TournamentID: 3}}, nil
		}},
		growth: &stubGrowth{GrowthFunc: func(context.Context) (*models.GrowthMetrics, error) {
			return &models.GrowthMetrics{NewPlayersThisMonth: 2}, nil
		}},
	}
}

func (f *dashboardFixture) service() DashboardService {
	return NewDashboardService(f.players, f.teams, f.tournaments, f.matches, f.registrations,
		f.leaderboard, f.statistics, f.growth, metrics.NewNoop(), discardLogger(), fixedClock)
}

func TestDashboardService_GetDashboard(t *testing.T) {
	f := newDashboardFixture()
	var queries []models.LeaderboardQuery
	lb := f.leaderboard.LeaderboardFunc
	recorded := make(chan models.LeaderboardQuery, 2)
	f.leaderboard.LeaderboardFunc = func(ctx context.Context, q models.LeaderboardQuery) (*models.Leaderboard, error) {
		recorded <- q
		return lb(ctx, q)
	}
	f.statistics.RecentFunc = func(_ context.Context, limit int) ([]models.TournamentStatistics, error) {
		assert.Equal(t, 5, limit)
		return []models.TournamentStatistics{{TournamentID: 3}}, nil
	}

	got, err := f.service().GetDashboard(context.Background())
	require.NoError(t, err)
	close(recorded)
	for q := range recorded {
		queries = append(queries, q)
	}

	assert.Equal(t, models.PlatformTotals{
		TotalPlayers:             3,
		TotalTeams:               1,
		TotalTournaments:         3,
		TotalMatches:             12,
		ActiveTournaments:        2,
		TotalEarningsDistributed: 160.5,
		AverageTournamentSize:    1.33,
		MostPopularSport:         "tennis",
	}, got.Totals)
	assert.Equal(t, "player", got.TopPlayers[0].Name)
	assert.Equal(t, "team", got.TopTeams[0].Name)
	assert.Equal(t, []models.TournamentStatistics{{TournamentID: 3}}, got.RecentTournaments)
	assert.Equal(t, 2, got.Growth.NewPlayersThisMonth)
	assert.Equal(t, fixedNow, got.GeneratedAt)

	require.Len(t, queries, 2)
	for _, q := range queries {
		assert.Equal(t, models.LeaderboardPoints, q.Category)
		assert.Equal(t, 5, q.Limit)
	}
}

func TestDashboardService_AnyFailureFailsTheDashboard(t *testing.T) {
	growthErr := errors.New("growth unavailable")
	tests := []struct {
		name  string
		setup func(f *dashboardFixture)
		want  error
	}{
		{
			name: "growth",
			setup: func(f *dashboardFixture) {
				f.growth.GrowthFunc = func(context.Context) (*models.GrowthMetrics, error) { return nil, growthErr }
			},
			want: growthErr,
		},
		{
			name: "leaderboard",
			setup: func(f *dashboardFixture) {
				f.leaderboard.LeaderboardFunc = func(context.Context, models.LeaderboardQuery) (*models.Leaderboard, error) {
					return nil, ErrValidationFailed
				}
			},
			want: ErrValidationFailed,
		},
		{
			name: "match count",
			setup: func(f *dashboardFixture) {
				f.matches.CountFunc = func(context.Context, models.ListMatchesFilter) (int, error) { return 0, growthErr }
			},
			want: growthErr,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDashboardFixture()
			tt.setup(f)

			got, err := f.service().GetDashboard(context.Background())
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDashboardService_EmptyPlatform(t *testing.T) {
	f := newDashboardFixture()
	f.players.ListFunc = nil
	f.teams.ListFunc = nil
	f.tournaments.ListFunc = nil
	f.matches.CountFunc = nil
	f.registrations.ListFunc = nil

	totals, err := f.service().GetTotals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.PlatformTotals{}, totals)
}

func TestMostFrequent(t *testing.T) {
	assert.Equal(t, "", mostFrequent(nil))
	assert.Equal(t, "chess", mostFrequent(map[string]int{"tennis": 2, "chess": 2, "padel": 1}))
	assert.Equal(t, "padel", mostFrequent(map[string]int{"tennis": 2, "padel": 3}))
}
