package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/tournament-stats/models"
)

// RegistrationRepository reads tournament registrations; they are written by
// the registration and payment flows.
// RegistrationRepository reads tournament registrations. Registrations are
// written by the registration flow, never by this service.
type RegistrationRepository interface {
	List(ctx context.Context, filter models.ListRegistrationsFilter) ([]*models.TournamentRegistration, error)
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) List(ctx context.Context, filter models.ListRegistrationsFilter) ([]*models.TournamentRegistration, error) {
	qb := newQueryBuilder(`
		SELECT id, tournament_id, category_id, player_id, partner_id, team_id,
		       status, payment_status, payment_amount, created_at, updated_at
		FROM tournament_registrations`)
	if filter.TournamentID > 0 {
		qb.and("tournament_id = ?", filter.TournamentID)
	}
	if filter.PlayerID > 0 {
		qb.and("? IN (player_id, partner_id)", filter.PlayerID)
	}
	if filter.TeamID > 0 {
		qb.and("team_id = ?", filter.TeamID)
	}
	if filter.Status != nil {
		qb.and("status = ?", *filter.Status)
	}
	qb.raw(" ORDER BY id ASC")

	rows, err := r.db.QueryContext(ctx, qb.String(), qb.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations: %w", err)
	}
	defer rows.Close()

	registrations := make([]*models.TournamentRegistration, 0)
	for rows.Next() {
		var (
			reg                         models.TournamentRegistration
			playerID, partnerID, teamID sql.NullInt64
		)
		if err := rows.Scan(
			&reg.ID, &reg.TournamentID, &reg.CategoryID, &playerID, &partnerID, &teamID,
			&reg.Status, &reg.PaymentStatus, &reg.PaymentAmount, &reg.CreatedAt, &reg.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", err)
		}
		reg.PlayerID = nullInt(playerID)
		reg.PartnerID = nullInt(partnerID)
		reg.TeamID = nullInt(teamID)
		registrations = append(registrations, &reg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during registration rows iteration: %w", err)
	}
	return registrations, nil
}
