package models

import "time"

type RegistrationStatus string

const (
	RegistrationStatusPending   RegistrationStatus = "pending"
	RegistrationStatusApproved  RegistrationStatus = "approved"
	RegistrationStatusRejected  RegistrationStatus = "rejected"
	RegistrationStatusWithdrawn RegistrationStatus = "withdrawn"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// TournamentRegistration is an entry of a player (optionally with a partner)
// or a team into a tournament category.
type TournamentRegistration struct {
	ID            int                `json:"id"`
	TournamentID  int                `json:"tournament_id"`
	CategoryID    int                `json:"category_id"`
	PlayerID      *int               `json:"player_id,omitempty"`
	PartnerID     *int               `json:"partner_id,omitempty"`
	TeamID        *int               `json:"team_id,omitempty"`
	Status        RegistrationStatus `json:"status"`
	PaymentStatus PaymentStatus      `json:"payment_status"`
	PaymentAmount float64            `json:"payment_amount"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func (r *TournamentRegistration) IsApproved() bool {
	return r.Status == RegistrationStatusApproved
}

// IsPlayerOnly reports a registration of a player (or doubles pair) without a team.
func (r *TournamentRegistration) IsPlayerOnly() bool {
	return r.PlayerID != nil && r.TeamID == nil
}

func (r *TournamentRegistration) IsTeamOnly() bool {
	return r.TeamID != nil && r.PlayerID == nil
}

func (r *TournamentRegistration) HasPlayer(playerID int) bool {
	return (r.PlayerID != nil && *r.PlayerID == playerID) || (r.PartnerID != nil && *r.PartnerID == playerID)
}

func (r *TournamentRegistration) HasTeam(teamID int) bool {
	return r.TeamID != nil && *r.TeamID == teamID
}

type ListRegistrationsFilter struct {
	TournamentID int
	PlayerID     int
	TeamID       int
	Status       *RegistrationStatus
}
