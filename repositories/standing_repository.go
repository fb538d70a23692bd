package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-stats/models"
)

var (
	ErrTournamentStandingNotFound = errors.New("tournament standing not found")
	ErrStandingConflict           = errors.New("standing already exists for this participant")
	ErrStandingTournamentInvalid  = errors.New("standing tournament conflict or invalid")
)

// TournamentStandingRepository stores one row per (tournament, category,
// participant). Every method runs on exec when given, otherwise on the pool.
type TournamentStandingRepository interface {
	// Create returns ErrStandingConflict when the key already exists.
	Create(ctx context.Context, exec SQLExecutor, standing *models.TournamentStanding) error
	// GetByKey returns ErrTournamentStandingNotFound for a missing row.
	GetByKey(ctx context.Context, exec SQLExecutor, key models.StandingKey) (*models.TournamentStanding, error)
	// Update overwrites every counter of the row identified by the standing's key.
	Update(ctx context.Context, exec SQLExecutor, standing *models.TournamentStanding) error
	// ListByTournament narrows to one category when categoryID is set. With
	// sortByPosition the rows come back by position, unset positions last.
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, categoryID *int, sortByPosition bool) ([]*models.TournamentStanding, error)
	// DeleteByTournamentID returns the number of removed rows.
	DeleteByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID int) (int64, error)
}

type postgresTournamentStandingRepository struct {
	db *sql.DB // used when exec is nil
}

func NewPostgresTournamentStandingRepository(db *sql.DB) TournamentStandingRepository {
	return &postgresTournamentStandingRepository{db: db}
}

func (r *postgresTournamentStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const standingColumns = `id, tournament_id, category_id, participant_id, participant_type, points,
	matches_played, matches_won, matches_lost, matches_drawn, sets_won, sets_lost, games_won, games_lost,
	goal_difference, bonus_points, penalty_points, is_eliminated, position, updated_at`

func (r *postgresTournamentStandingRepository) Create(ctx context.Context, exec SQLExecutor, standing *models.TournamentStanding) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournament_standings
			(tournament_id, category_id, participant_id, participant_type, points,
			 matches_played, matches_won, matches_lost, matches_drawn, sets_won, sets_lost,
			 games_won, games_lost, goal_difference, bonus_points, penalty_points, is_eliminated, position, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id`
	if standing.UpdatedAt.IsZero() {
		standing.UpdatedAt = time.Now().UTC()
	}
	err := executor.QueryRowContext(ctx, query,
		standing.TournamentID, standing.CategoryID, standing.ParticipantID, standing.ParticipantType, standing.Points,
		standing.MatchesPlayed, standing.MatchesWon, standing.MatchesLost, standing.MatchesDrawn,
		standing.SetsWon, standing.SetsLost, standing.GamesWon, standing.GamesLost,
		standing.GoalDifference, standing.BonusPoints, standing.PenaltyPoints, standing.IsEliminated,
		standing.Position, standing.UpdatedAt,
	).Scan(&standing.ID)
	return r.handleStandingError(err)
}

func (r *postgresTournamentStandingRepository) scanStanding(row rowScanner) (*models.TournamentStanding, error) {
	var (
		s        models.TournamentStanding
		position sql.NullInt64
	)
	err := row.Scan(
		&s.ID, &s.TournamentID, &s.CategoryID, &s.ParticipantID, &s.ParticipantType, &s.Points,
		&s.MatchesPlayed, &s.MatchesWon, &s.MatchesLost, &s.MatchesDrawn, &s.SetsWon, &s.SetsLost,
		&s.GamesWon, &s.GamesLost, &s.GoalDifference, &s.BonusPoints, &s.PenaltyPoints, &s.IsEliminated,
		&position, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentStandingNotFound
		}
		return nil, err
	}
	s.Position = nullInt(position)
	return &s, nil
}

func (r *postgresTournamentStandingRepository) GetByKey(ctx context.Context, exec SQLExecutor, key models.StandingKey) (*models.TournamentStanding, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + standingColumns + `
		FROM tournament_standings
		WHERE tournament_id = $1 AND category_id = $2 AND participant_id = $3`
	row := executor.QueryRowContext(ctx, query, key.TournamentID, key.CategoryID, key.ParticipantID)
	return r.scanStanding(row)
}

func (r *postgresTournamentStandingRepository) Update(ctx context.Context, exec SQLExecutor, standing *models.TournamentStanding) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE tournament_standings SET
			participant_type = $1, points = $2, matches_played = $3, matches_won = $4, matches_lost = $5,
			matches_drawn = $6, sets_won = $7, sets_lost = $8, games_won = $9, games_lost = $10,
			goal_difference = $11, bonus_points = $12, penalty_points = $13, is_eliminated = $14,
			position = $15, updated_at = NOW()
		WHERE id = $16
		RETURNING updated_at`
	err := executor.QueryRowContext(ctx, query,
		standing.ParticipantType, standing.Points, standing.MatchesPlayed, standing.MatchesWon, standing.MatchesLost,
		standing.MatchesDrawn, standing.SetsWon, standing.SetsLost, standing.GamesWon, standing.GamesLost,
		standing.GoalDifference, standing.BonusPoints, standing.PenaltyPoints, standing.IsEliminated,
		standing.Position, standing.ID,
	).Scan(&standing.UpdatedAt)
	// the key columns never change after insert
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTournamentStandingNotFound
	}
	return r.handleStandingError(err)
}

func (r *postgresTournamentStandingRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, categoryID *int, sortByPosition bool) ([]*models.TournamentStanding, error) {
	executor := r.getExecutor(exec)
	qb := newQueryBuilder(`SELECT ` + standingColumns + ` FROM tournament_standings`)
	qb.and("tournament_id = ?", tournamentID)
	if categoryID != nil {
		qb.and("category_id = ?", *categoryID)
	}

	if sortByPosition {
		// Matches idx_tournament_standings_ranking after the explicit positions.
		qb.raw(" ORDER BY position ASC NULLS LAST, points DESC, goal_difference DESC, games_won DESC, participant_id ASC")
	} else {
		qb.raw(" ORDER BY category_id ASC, participant_id ASC")
	}

	rows, err := executor.QueryContext(ctx, qb.String(), qb.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]*models.TournamentStanding, 0)
	for rows.Next() {
		s, errScan := r.scanStanding(rows)
		if errScan != nil {
			return nil, errScan
		}
		standings = append(standings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return standings, nil
}

func (r *postgresTournamentStandingRepository) DeleteByTournamentID(ctx context.Context, exec SQLExecutor, tournamentID int) (int64, error) {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM tournament_standings WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return 0, err
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return deleted, nil
}

func (r *postgresTournamentStandingRepository) handleStandingError(err error) error {
	if err == nil {
		return nil
	}
	if code, _, ok := pqErrorCode(err); ok {
		switch code {
		case pqUniqueViolation:
			return ErrStandingConflict
		case pqForeignKeyViolation:
			return ErrStandingTournamentInvalid
		}
	}
	return err
}
