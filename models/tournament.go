package models

import "time"

// TournamentStatus mirrors the tournament_status enum in the database.
type TournamentStatus string

const (
	TournamentStatusUpcoming         TournamentStatus = "upcoming"
	TournamentStatusRegistrationOpen TournamentStatus = "registration_open"
	TournamentStatusInProgress       TournamentStatus = "in_progress"
	TournamentStatusCompleted        TournamentStatus = "completed"
	TournamentStatusCancelled        TournamentStatus = "cancelled"
)

type Tournament struct {
	ID              int              `json:"id"`
	Name            string           `json:"name"`
	Sport           string           `json:"sport"`
	Status          TournamentStatus `json:"status"`
	PrizePool       float64          `json:"prize_pool"`
	MaxParticipants *int             `json:"max_participants,omitempty"`
	StartDate       *time.Time       `json:"start_date,omitempty"`
	EndDate         *time.Time       `json:"end_date,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type ListTournamentsFilter struct {
	Sport         string
	Status        *TournamentStatus
	CreatedAfter  time.Time
	CreatedBefore time.Time
	Limit         int
	Offset        int
}
