package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-stats/models"
)

var ErrTeamNotFound = errors.New("team not found")

// TeamRepository is the read side of the team registry.
type TeamRepository interface {
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context, created models.CreatedRange) ([]*models.Team, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func scanTeam(row rowScanner) (*models.Team, error) {
	var (
		t         models.Team
		captainID sql.NullInt64
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Sport, &captainID, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.CaptainID = nullInt(captainID)
	return &t, nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT id, name, sport, captain_id, created_at FROM teams WHERE id = $1`
	t, err := scanTeam(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTeamRepository) List(ctx context.Context, created models.CreatedRange) ([]*models.Team, error) {
	qb := newQueryBuilder(`SELECT id, name, sport, captain_id, created_at FROM teams`)
	if !created.From.IsZero() {
		qb.and("created_at >= ?", created.From)
	}
	if !created.To.IsZero() {
		qb.and("created_at < ?", created.To)
	}
	qb.raw(" ORDER BY id ASC")

	rows, err := r.db.QueryContext(ctx, qb.String(), qb.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		t, scanErr := scanTeam(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", scanErr)
		}
		teams = append(teams, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during team rows iteration: %w", err)
	}
	return teams, nil
}
