package services

import (
	"context"
	"testing"

	"github.com/Dosada05/tournament-stats/metrics"
	"github.com/Dosada05/tournament-stats/models"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type leaderboardData struct {
	players       []*models.Player
	teams         []*models.Team
	matches       []*models.Match
	registrations []*models.TournamentRegistration
}

func (d *leaderboardData) service() LeaderboardService {
	return NewLeaderboardService(
		&FakePlayerRepo{ListFunc: func(context.Context, models.CreatedRange) ([]*models.Player, error) { return d.players, nil }},
		&FakeTeamRepo{ListFunc: func(context.Context, models.CreatedRange) ([]*models.Team, error) { return d.teams, nil }},
		&FakeMatchRepo{ListFunc: func(context.Context, models.ListMatchesFilter) ([]*models.Match, error) { return d.matches, nil }},
		&FakeRegistrationRepo{ListFunc: func(context.Context, models.ListRegistrationsFilter) ([]*models.TournamentRegistration, error) {
			return d.registrations, nil
		}},
		metrics.NewNoop(),
		discardLogger(),
	)
}

func paidRegistration(playerID int, amount float64) *models.TournamentRegistration {
	return &models.TournamentRegistration{
		TournamentID:  1,
		PlayerID:      intPtr(playerID),
		Status:        models.RegistrationStatusApproved,
		PaymentStatus: models.PaymentStatusPaid,
		PaymentAmount: amount,
		UpdatedAt:     fixedNow,
	}
}

func entryIDs(entries []models.LeaderboardEntry) []int {
	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}

func entryRanks(entries []models.LeaderboardEntry) []int {
	ranks := make([]int, 0, len(entries))
	for _, e := range entries {
		ranks = append(ranks, e.Rank)
	}
	return ranks
}

func TestLeaderboard_EarningsFiltersAndOrders(t *testing.T) {
	d := &leaderboardData{
		players: []*models.Player{
			{ID: 1, FirstName: "A"}, {ID: 2, FirstName: "B"}, {ID: 3, FirstName: "C"}, {ID: 4, FirstName: "D"},
		},
		registrations: []*models.TournamentRegistration{
			paidRegistration(1, 500), paidRegistration(2, 0), paidRegistration(3, 1200), paidRegistration(4, 300),
		},
	}

	board, err := d.service().Leaderboard(context.Background(), models.LeaderboardQuery{
		Category: models.LeaderboardEarnings, EntityType: models.EntityPlayer, Limit: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, board.Total)
	assert.Equal(t, []int{3, 1, 4}, entryIDs(board.Entries))
	assert.Equal(t, []int{1, 2, 3}, entryRanks(board.Entries))
	assert.Equal(t, []float64{1200, 500, 300}, []float64{board.Entries[0].Points, board.Entries[1].Points, board.Entries[2].Points})
	assert.Equal(t, 1200.0, board.Entries[0].TotalEarnings)
}

func TestLeaderboard_PointsUseRankingFormula(t *testing.T) {
	d := &leaderboardData{
		players: []*models.Player{{ID: 1, FirstName: "Ana"}, {ID: 2, FirstName: "Bo"}, {ID: 3, FirstName: "Cy"}},
		matches: []*models.Match{
			singlesMatch(1, 1, 1, 2, models.MatchStatusCompleted, intPtr(1)),
			singlesMatch(2, 1, 1, 2, models.MatchStatusCompleted, intPtr(1)),
			singlesMatch(3, 1, 2, 1, models.MatchStatusCompleted, intPtr(1)),
		},
	}
	board, err := d.service().Leaderboard(context.Background(), models.LeaderboardQuery{
		Category: models.LeaderboardPoints, EntityType: models.EntityPlayer, Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, 1, board.Entries[0].ID)
	assert.Equal(t, 220.0, board.Entries[0].Points)
	assert.Equal(t, 2, board.Entries[0].TournamentsWon)
	assert.Equal(t, 66.67, board.Entries[0].WinRate)
	assert.Equal(t, 110.0, board.Entries[1].Points)
}

func TestLeaderboard_FallbacksAndClamp(t *testing.T) {
	tests := []struct {
		name  string
		query models.LeaderboardQuery
		want  models.LeaderboardQuery
	}{
		{
			name:  "unknown category and entity type",
			query: models.LeaderboardQuery{Category: "elo", EntityType: "club", Limit: 10},
			want:  models.LeaderboardQuery{Category: models.LeaderboardWinRate, EntityType: models.EntityTeam, Limit: 10},
		},
		{
			name:  "limit above maximum",
			query: models.LeaderboardQuery{Category: models.LeaderboardWins, EntityType: models.EntityPlayer, Limit: 500},
			want:  models.LeaderboardQuery{Category: models.LeaderboardWins, EntityType: models.EntityPlayer, Limit: 100},
		},
		{
			name:  "zero limit",
			query: models.LeaderboardQuery{Category: models.LeaderboardPoints, EntityType: models.EntityTeam},
			want:  models.LeaderboardQuery{Category: models.LeaderboardPoints, EntityType: models.EntityTeam, Limit: 1},
		},
		{
			name:  "negative limit and offset",
			query: models.LeaderboardQuery{Category: models.LeaderboardEarnings, EntityType: models.EntityTeam, Limit: -4, Offset: -2},
			want:  models.LeaderboardQuery{Category: models.LeaderboardEarnings, EntityType: models.EntityTeam, Limit: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLeaderboardQuery(tt.query))

			d := &leaderboardData{}
			board, err := d.service().Leaderboard(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Category, board.Category)
			assert.Equal(t, tt.want.EntityType, board.EntityType)
			assert.Equal(t, tt.want.Limit, board.Limit)
			assert.Empty(t, board.Entries)
		})
	}
}

func TestLeaderboard_WinRateKeepsInactiveEntities(t *testing.T) {
	d := &leaderboardData{
		teams: []*models.Team{{ID: 5, Name: "Owls"}, {ID: 2, Name: "Larks"}, {ID: 9, Name: "Crows"}},
		matches: []*models.Match{{
			ID: 1, Status: models.MatchStatusCompleted, WinnerSide: intPtr(2),
			Side1: models.MatchSide{TeamID: intPtr(5)}, Side2: models.MatchSide{TeamID: intPtr(9)},
		}},
	}
	board, err := d.service().Leaderboard(context.Background(), models.LeaderboardQuery{Category: "unknown", EntityType: "unknown", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []int{9, 2, 5}, entryIDs(board.Entries))
	assert.Equal(t, 100.0, board.Entries[0].Points)
	assert.Zero(t, board.Entries[1].Points)
}

// fakeLeaderboardData builds a seeded population with many tied scores.
func fakeLeaderboardData(seed int64) *leaderboardData {
	faker := gofakeit.New(uint64(seed))
	d := &leaderboardData{}
	const players = 60
	for id := 1; id <= players; id++ {
		d.players = append(d.players, &models.Player{ID: id, FirstName: faker.FirstName(), LastName: faker.LastName()})
		if faker.Bool() {
			d.registrations = append(d.registrations, paidRegistration(id, float64(faker.Number(0, 3)*100)))
		}
	}
	for id := 1; id <= 150; id++ {
		p1 := faker.Number(1, players)
		p2 := faker.Number(1, players)
		if p1 == p2 {
			continue
		}
		status := models.MatchStatusCompleted
		if faker.Number(0, 4) == 0 {
			status = models.MatchStatusCancelled
		}
		d.matches = append(d.matches, singlesMatch(id, 1, p1, p2, status, intPtr(faker.Number(1, 2))))
	}
	return d
}

func TestLeaderboard_DeterministicAndContiguous(t *testing.T) {
	categories := []models.LeaderboardCategory{
		models.LeaderboardPoints, models.LeaderboardWins, models.LeaderboardEarnings, models.LeaderboardWinRate,
	}
	for _, category := range categories {
		t.Run(string(category), func(t *testing.T) {
			d := fakeLeaderboardData(42)
			svc := d.service()
			query := models.LeaderboardQuery{Category: category, EntityType: models.EntityPlayer, Limit: 7, Offset: 3}

			first, err := svc.Leaderboard(context.Background(), query)
			require.NoError(t, err)
			second, err := svc.Leaderboard(context.Background(), query)
			require.NoError(t, err)
			assert.Equal(t, first.Entries, second.Entries)

			// reversing the input order must not change the result
			for i, j := 0, len(d.players)-1; i < j; i, j = i+1, j-1 {
				d.players[i], d.players[j] = d.players[j], d.players[i]
			}
			reversed, err := svc.Leaderboard(context.Background(), query)
			require.NoError(t, err)
			assert.Equal(t, first.Entries, reversed.Entries)

			for i, e := range first.Entries {
				assert.Equal(t, query.Offset+i+1, e.Rank)
				if i > 0 {
					assert.GreaterOrEqual(t, first.Entries[i-1].Points, e.Points)
				}
				if category != models.LeaderboardWinRate {
					assert.Positive(t, e.Points)
				}
			}

			full, err := svc.Leaderboard(context.Background(), models.LeaderboardQuery{Category: category, EntityType: models.EntityPlayer, Limit: 100})
			require.NoError(t, err)
			require.LessOrEqual(t, query.Offset, len(full.Entries))
			end := query.Offset + query.Limit
			if end > len(full.Entries) {
				end = len(full.Entries)
			}
			assert.Equal(t, entryIDs(full.Entries[query.Offset:end]), entryIDs(first.Entries))
		})
	}
}
