package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-stats/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound           = errors.New("match not found")
	ErrMatchTournamentInvalid  = errors.New("match tournament invalid")
	ErrMatchParticipantInvalid = errors.New("match participant invalid")
)

// MatchRepository persists matches. Lifecycle writes only touch the status
// columns; legality of a transition is decided by the caller.
type MatchRepository interface {
	// Create inserts the match and fills ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, match *models.Match) error
	// GetByID returns ErrMatchNotFound for an unknown id.
	GetByID(ctx context.Context, id int) (*models.Match, error)
	// List applies every non-zero filter field, ordered by schedule then id.
	List(ctx context.Context, filter models.ListMatchesFilter) ([]*models.Match, error)
	// Count ignores Limit and Offset.
	Count(ctx context.Context, filter models.ListMatchesFilter) (int, error)
	// Update writes schedule, participants and notes. Status is left alone.
	Update(ctx context.Context, match *models.Match) error
	Delete(ctx context.Context, id int) error

	// UpdateStatus sets an arbitrary status; terminal statuses also stamp actual_end.
	UpdateStatus(ctx context.Context, id int, status models.MatchStatus, at time.Time) error
	StartMatch(ctx context.Context, id int, startedAt time.Time) error
	// CompleteMatch clears the winner when isDraw is set.
	CompleteMatch(ctx context.Context, id int, winnerSide *int, isDraw bool, endedAt time.Time) error
	ForfeitMatch(ctx context.Context, id int, winnerSide int, endedAt time.Time) error
	// CancelMatch appends a non-empty reason to the notes and clears the winner.
	CancelMatch(ctx context.Context, id int, reason string, endedAt time.Time) error
	PostponeMatch(ctx context.Context, id int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, category_id,
	side1_team_id, side1_player_id, side1_partner_id,
	side2_team_id, side2_player_id, side2_partner_id,
	status, scheduled_at, actual_start, actual_end, winner_side, is_draw, notes,
	created_at, updated_at`

func scanMatch(row rowScanner) (*models.Match, error) {
	var (
		m                                       models.Match
		s1Team, s1Player, s1Partner             sql.NullInt64
		s2Team, s2Player, s2Partner, winnerSide sql.NullInt64
		scheduledAt, actualStart, actualEnd     sql.NullTime
		notes                                   sql.NullString
	)
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.CategoryID,
		&s1Team, &s1Player, &s1Partner,
		&s2Team, &s2Player, &s2Partner,
		&m.Status, &scheduledAt, &actualStart, &actualEnd, &winnerSide, &m.IsDraw, &notes,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Side1 = models.MatchSide{TeamID: nullInt(s1Team), PlayerID: nullInt(s1Player), PartnerID: nullInt(s1Partner)}
	m.Side2 = models.MatchSide{TeamID: nullInt(s2Team), PlayerID: nullInt(s2Player), PartnerID: nullInt(s2Partner)}
	m.ScheduledAt = nullTime(scheduledAt)
	m.ActualStart = nullTime(actualStart)
	m.ActualEnd = nullTime(actualEnd)
	m.WinnerSide = nullInt(winnerSide)
	m.Notes = nullString(notes)
	return &m, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches
			(tournament_id, category_id, side1_team_id, side1_player_id, side1_partner_id,
			 side2_team_id, side2_player_id, side2_partner_id, status, scheduled_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		match.TournamentID, match.CategoryID,
		match.Side1.TeamID, match.Side1.PlayerID, match.Side1.PartnerID,
		match.Side2.TeamID, match.Side2.PlayerID, match.Side2.PartnerID,
		match.Status, match.ScheduledAt, match.Notes,
	).Scan(&match.ID, &match.CreatedAt, &match.UpdatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	match, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func applyMatchFilter(qb *queryBuilder, filter models.ListMatchesFilter) {
	if filter.TournamentID > 0 {
		qb.and("tournament_id = ?", filter.TournamentID)
	}
	if filter.CategoryID != nil {
		qb.and("category_id = ?", *filter.CategoryID)
	}
	if filter.Status != nil {
		qb.and("status = ?", *filter.Status)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		qb.and("status = ANY(?)", pq.Array(statuses))
	}
	if filter.PlayerID > 0 {
		qb.and("? IN (side1_player_id, side1_partner_id, side2_player_id, side2_partner_id)", filter.PlayerID)
	}
	if filter.TeamID > 0 {
		qb.and("? IN (side1_team_id, side2_team_id)", filter.TeamID)
	}
}

func (r *postgresMatchRepository) List(ctx context.Context, filter models.ListMatchesFilter) ([]*models.Match, error) {
	qb := newQueryBuilder(`SELECT ` + matchColumns + ` FROM matches`)
	applyMatchFilter(qb, filter)
	qb.raw(" ORDER BY COALESCE(scheduled_at, created_at) ASC, id ASC")
	qb.page(filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, qb.String(), qb.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) Count(ctx context.Context, filter models.ListMatchesFilter) (int, error) {
	qb := newQueryBuilder(`SELECT COUNT(*) FROM matches`)
	applyMatchFilter(qb, filter)
	var count int
	if err := r.db.QueryRowContext(ctx, qb.String(), qb.Args()...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, match *models.Match) error {
	query := `
		UPDATE matches SET
			category_id = $1,
			side1_team_id = $2, side1_player_id = $3, side1_partner_id = $4,
			side2_team_id = $5, side2_player_id = $6, side2_partner_id = $7,
			scheduled_at = $8, notes = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		match.CategoryID,
		match.Side1.TeamID, match.Side1.PlayerID, match.Side1.PartnerID,
		match.Side2.TeamID, match.Side2.PlayerID, match.Side2.PartnerID,
		match.ScheduledAt, match.Notes, match.ID,
	).Scan(&match.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrMatchNotFound
	}
	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// UpdateStatus stores an arbitrary status and keeps the timestamp and winner
// columns consistent with it.
func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, id int, status models.MatchStatus, at time.Time) error {
	query := `
		UPDATE matches SET
			status = $1::text,
			actual_start = CASE WHEN $1::text = 'in_progress' THEN COALESCE(actual_start, $2) ELSE actual_start END,
			actual_end = CASE WHEN $1::text IN ('completed', 'cancelled', 'forfeited', 'bye') THEN COALESCE(actual_end, $2) ELSE NULL END,
			winner_side = CASE WHEN $1::text IN ('completed', 'forfeited') THEN winner_side ELSE NULL END,
			is_draw = CASE WHEN $1::text = 'completed' THEN is_draw ELSE FALSE END,
			updated_at = NOW()
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, string(status), at, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) StartMatch(ctx context.Context, id int, startedAt time.Time) error {
	query := `UPDATE matches SET status = 'in_progress', actual_start = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, startedAt, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) CompleteMatch(ctx context.Context, id int, winnerSide *int, isDraw bool, endedAt time.Time) error {
	query := `
		UPDATE matches SET status = 'completed', actual_end = $1, winner_side = $2, is_draw = $3, updated_at = NOW()
		WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, endedAt, winnerSide, isDraw, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) ForfeitMatch(ctx context.Context, id int, winnerSide int, endedAt time.Time) error {
	query := `
		UPDATE matches SET status = 'forfeited', actual_end = $1, winner_side = $2, is_draw = FALSE, updated_at = NOW()
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, endedAt, winnerSide, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) CancelMatch(ctx context.Context, id int, reason string, endedAt time.Time) error {
	query := `
		UPDATE matches SET
			status = 'cancelled',
			actual_end = $1,
			winner_side = NULL,
			is_draw = FALSE,
			notes = CASE
				WHEN $2::text = '' THEN notes
				WHEN notes IS NULL OR notes = '' THEN $2::text
				ELSE notes || E'\n' || $2::text
			END,
			updated_at = NOW()
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, endedAt, reason, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) PostponeMatch(ctx context.Context, id int) error {
	query := `
		UPDATE matches SET status = 'postponed', actual_end = NULL, winner_side = NULL, is_draw = FALSE, updated_at = NOW()
		WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if code, constraint, ok := pqErrorCode(err); ok && code == pqForeignKeyViolation {
		// every other foreign key on matches points at a team or a player
		if constraint == "matches_tournament_id_fkey" {
			return ErrMatchTournamentInvalid
		}
		return ErrMatchParticipantInvalid
	}
	return err
}
