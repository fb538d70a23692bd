//go:build integration

package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Dosada05/tournament-stats/db"
	"github.com/Dosada05/tournament-stats/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres starts a disposable postgres, applies the schema and returns a connection.
func setupPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("stats"),
		postgres.WithUsername("stats"),
		postgres.WithPassword("stats"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := db.Connect(dsn, 10*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.Migrate(ctx, conn))
	// the schema is idempotent
	require.NoError(t, db.Migrate(ctx, conn))
	return conn
}

func seed(t *testing.T, conn *sql.DB) {
	t.Helper()
	statements := []string{
		`INSERT INTO players (first_name, last_name) VALUES ('Ana', 'Lee'), ('Bo', 'Kim'), ('Cy', 'Roe')`,
		`INSERT INTO teams (name, sport) VALUES ('Owls', 'tennis')`,
		`INSERT INTO tournaments (name, sport, status, prize_pool) VALUES ('Spring Open', 'tennis', 'in_progress', 1500)`,
		`INSERT INTO tournament_registrations (tournament_id, player_id, status, payment_status, payment_amount)
		 VALUES (1, 1, 'approved', 'paid', 50), (1, 2, 'approved', 'paid', 50), (1, 3, 'pending', 'pending', 0)`,
	}
	for _, stmt := range statements {
		_, err := conn.Exec(stmt)
		require.NoError(t, err, stmt)
	}
}

func TestPostgresRepositories(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	conn := setupPostgres(t)
	seed(t, conn)
	ctx := context.Background()

	matches := NewPostgresMatchRepository(conn)
	results := NewPostgresMatchResultRepository(conn)
	standings := NewPostgresTournamentStandingRepository(conn)
	registrations := NewPostgresRegistrationRepository(conn)
	players := NewPostgresPlayerRepository(conn)
	tournaments := NewPostgresTournamentRepository(conn)

	one, two := 1, 2
	match := &models.Match{
		TournamentID: 1,
		Side1:        models.MatchSide{PlayerID: &one},
		Side2:        models.MatchSide{PlayerID: &two},
		Status:       models.MatchStatusScheduled,
	}

	t.Run("match lifecycle", func(t *testing.T) {
		require.NoError(t, matches.Create(ctx, match))
		require.Positive(t, match.ID)

		now := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, matches.StartMatch(ctx, match.ID, now))
		require.NoError(t, matches.CompleteMatch(ctx, match.ID, &one, false, now.Add(time.Hour)))

		got, err := matches.GetByID(ctx, match.ID)
		require.NoError(t, err)
		assert.Equal(t, models.MatchStatusCompleted, got.Status)
		require.NotNil(t, got.WinnerSide)
		assert.Equal(t, 1, *got.WinnerSide)
		require.NotNil(t, got.ActualStart)
		require.NotNil(t, got.ActualEnd)

		completed, err := matches.List(ctx, models.ListMatchesFilter{Statuses: []models.MatchStatus{models.MatchStatusCompleted}})
		require.NoError(t, err)
		assert.Len(t, completed, 1)

		count, err := matches.Count(ctx, models.ListMatchesFilter{PlayerID: 2})
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		_, err = matches.GetByID(ctx, 9999)
		assert.ErrorIs(t, err, ErrMatchNotFound)
		assert.ErrorIs(t, matches.CompleteMatch(ctx, 9999, &one, false, now), ErrMatchNotFound)

		bad := &models.Match{TournamentID: 42, Side1: match.Side1, Side2: match.Side2, Status: models.MatchStatusScheduled}
		assert.ErrorIs(t, matches.Create(ctx, bad), ErrMatchTournamentInvalid)
	})

	t.Run("match results", func(t *testing.T) {
		six, three, four := 6, 3, 4
		require.NoError(t, results.Create(ctx, &models.MatchResult{MatchID: match.ID, SetNumber: 1, Side1Score: &six, Side2Score: &three}))
		require.NoError(t, results.Create(ctx, &models.MatchResult{MatchID: match.ID, SetNumber: 2, Side1Score: &six, Side2Score: &four}))

		dup := &models.MatchResult{MatchID: match.ID, SetNumber: 2, Side1Score: &six, Side2Score: &four}
		assert.ErrorIs(t, results.Create(ctx, dup), ErrMatchResultSetConflict)

		summary, err := results.GetMatchScoreSummary(ctx, match.ID)
		require.NoError(t, err)
		assert.Equal(t, models.MatchScoreSummary{
			MatchID: match.ID, Side1SetsWon: 2, Side2SetsWon: 0, Side1TotalPoints: 12, Side2TotalPoints: 7,
		}, *summary)

		byMatch, err := results.ListByMatches(ctx, []int{match.ID})
		require.NoError(t, err)
		assert.Len(t, byMatch[match.ID], 2)
	})

	t.Run("standings", func(t *testing.T) {
		position := 1
		row := &models.TournamentStanding{
			TournamentID:    1,
			CategoryID:      models.NoCategory,
			ParticipantID:   1,
			ParticipantType: models.ParticipantPlayer,
			Points:          3,
			MatchesPlayed:   1,
			MatchesWon:      1,
			Position:        &position,
		}
		require.NoError(t, standings.Create(ctx, nil, row))
		assert.ErrorIs(t, standings.Create(ctx, nil, row), ErrStandingConflict)

		row.Points = 4
		require.NoError(t, standings.Update(ctx, nil, row))
		got, err := standings.GetByKey(ctx, nil, row.Key())
		require.NoError(t, err)
		assert.Equal(t, 4, got.Points)

		rows, err := standings.ListByTournament(ctx, nil, 1, nil, true)
		require.NoError(t, err)
		assert.Len(t, rows, 1)

		deleted, err := standings.DeleteByTournamentID(ctx, nil, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
		_, err = standings.GetByKey(ctx, nil, row.Key())
		assert.ErrorIs(t, err, ErrTournamentStandingNotFound)
	})

	t.Run("read models", func(t *testing.T) {
		approved := models.RegistrationStatusApproved
		regs, err := registrations.List(ctx, models.ListRegistrationsFilter{TournamentID: 1, Status: &approved})
		require.NoError(t, err)
		assert.Len(t, regs, 2)
		assert.Equal(t, 50.0, regs[0].PaymentAmount)

		all, err := players.List(ctx, models.CreatedRange{})
		require.NoError(t, err)
		assert.Len(t, all, 3)

		recent, err := players.List(ctx, models.CreatedRange{From: time.Now().Add(time.Hour)})
		require.NoError(t, err)
		assert.Empty(t, recent)

		_, err = players.GetByID(ctx, 77)
		assert.ErrorIs(t, err, ErrPlayerNotFound)

		tennis, err := tournaments.List(ctx, models.ListTournamentsFilter{Sport: "tennis"})
		require.NoError(t, err)
		require.Len(t, tennis, 1)
		assert.Equal(t, 1500.0, tennis[0].PrizePool)
	})
}
