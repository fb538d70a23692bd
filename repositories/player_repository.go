package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-stats/models"
)

var ErrPlayerNotFound = errors.New("player not found")

// PlayerRepository is the read side of the player registry.
type PlayerRepository interface {
	GetByID(ctx context.Context, id int) (*models.Player, error)
	// List returns the players created inside the range, ordered by id.
	List(ctx context.Context, created models.CreatedRange) ([]*models.Player, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func scanPlayer(row rowScanner) (*models.Player, error) {
	var (
		p        models.Player
		nickname sql.NullString
	)
	if err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &nickname, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Nickname = nullString(nickname)
	return &p, nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT id, first_name, last_name, nickname, created_at FROM players WHERE id = $1`
	p, err := scanPlayer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player %d: %w", id, err)
	}
	return p, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context, created models.CreatedRange) ([]*models.Player, error) {
	qb := newQueryBuilder(`SELECT id, first_name, last_name, nickname, created_at FROM players`)
	if !created.From.IsZero() {
		qb.and("created_at >= ?", created.From)
	}
	if !created.To.IsZero() {
		qb.and("created_at < ?", created.To)
	}
	qb.raw(" ORDER BY id ASC")

	rows, err := r.db.QueryContext(ctx, qb.String(), qb.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		p, scanErr := scanPlayer(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", scanErr)
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}
