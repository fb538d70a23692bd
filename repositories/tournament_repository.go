package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-stats/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

// TournamentRepository exposes the read side of tournaments. Tournament
// CRUD is owned by the tournament management service.
type TournamentRepository interface {
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	// List filters by sport, status and creation window. A zero Limit returns every tournament.
	List(ctx context.Context, filter models.ListTournamentsFilter) ([]*models.Tournament, error)
	// ListRecent returns the newest tournaments by creation time.
	ListRecent(ctx context.Context, limit int) ([]*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `id, name, sport, status, prize_pool, max_participants, start_date, end_date, created_at, updated_at`

func scanTournament(row rowScanner) (*models.Tournament, error) {
	var (
		t                  models.Tournament
		maxParticipants    sql.NullInt64
		startDate, endDate sql.NullTime
	)
	err := row.Scan(&t.ID, &t.Name, &t.Sport, &t.Status, &t.PrizePool, &maxParticipants, &startDate, &endDate, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.MaxParticipants = nullInt(maxParticipants)
	t.StartDate = nullTime(startDate)
	t.EndDate = nullTime(endDate)
	return &t, nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	t, err := scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter models.ListTournamentsFilter) ([]*models.Tournament, error) {
	qb := newQueryBuilder(`SELECT ` + tournamentColumns + ` FROM tournaments`)
	if filter.Sport != "" {
		qb.and("sport = ?", filter.Sport)
	}
	if filter.Status != nil {
		qb.and("status = ?", *filter.Status)
	}
	if !filter.CreatedAfter.IsZero() {
		qb.and("created_at >= ?", filter.CreatedAfter)
	}
	if !filter.CreatedBefore.IsZero() {
		qb.and("created_at < ?", filter.CreatedBefore)
	}
	qb.raw(" ORDER BY created_at DESC, id DESC")
	qb.page(filter.Limit, filter.Offset)
	return r.query(ctx, qb.String(), qb.Args()...)
}

func (r *postgresTournamentRepository) ListRecent(ctx context.Context, limit int) ([]*models.Tournament, error) {
	return r.List(ctx, models.ListTournamentsFilter{Limit: limit})
}

func (r *postgresTournamentRepository) query(ctx context.Context, query string, args ...interface{}) ([]*models.Tournament, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}
