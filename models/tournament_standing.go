package models

import "time"

// NoCategory is stored in category_id when a standing belongs to the tournament as a whole.
const NoCategory = 0

type ParticipantType string

const (
	ParticipantPlayer ParticipantType = "player"
	ParticipantTeam   ParticipantType = "team"
)

func (t ParticipantType) IsValid() bool {
	return t == ParticipantPlayer || t == ParticipantTeam
}

type TournamentStanding struct {
	ID              int             `json:"id" db:"id"`
	TournamentID    int             `json:"tournament_id" db:"tournament_id"`
	CategoryID      int             `json:"category_id" db:"category_id"`
	ParticipantID   int             `json:"participant_id" db:"participant_id"`
	ParticipantType ParticipantType `json:"participant_type" db:"participant_type"`
	Points          int             `json:"points" db:"points"`
	MatchesPlayed   int             `json:"matches_played" db:"matches_played"`
	MatchesWon      int             `json:"matches_won" db:"matches_won"`
	MatchesLost     int             `json:"matches_lost" db:"matches_lost"`
	MatchesDrawn    int             `json:"matches_drawn" db:"matches_drawn"`
	SetsWon         int             `json:"sets_won" db:"sets_won"`
	SetsLost        int             `json:"sets_lost" db:"sets_lost"`
	GamesWon        int             `json:"games_won" db:"games_won"`
	GamesLost       int             `json:"games_lost" db:"games_lost"`
	GoalDifference  int             `json:"goal_difference" db:"goal_difference"`
	BonusPoints     int             `json:"bonus_points" db:"bonus_points"`
	PenaltyPoints   int             `json:"penalty_points" db:"penalty_points"`
	IsEliminated    bool            `json:"is_eliminated" db:"is_eliminated"`
	Position        *int            `json:"position,omitempty" db:"position"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// StandingKey identifies one standings row.
type StandingKey struct {
	TournamentID  int
	CategoryID    int
	ParticipantID int
}

func (s *TournamentStanding) Key() StandingKey {
	return StandingKey{TournamentID: s.TournamentID, CategoryID: s.CategoryID, ParticipantID: s.ParticipantID}
}

// StandingUpdate is one record of a bulk upsert. Nil fields leave the stored
// value untouched; on insert they default to zero.
type StandingUpdate struct {
	TournamentID    int             `json:"tournament_id"`
	CategoryID      int             `json:"category_id"`
	ParticipantID   int             `json:"participant_id"`
	ParticipantType ParticipantType `json:"participant_type"`
	Points          *int            `json:"points,omitempty"`
	MatchesWon      *int            `json:"matches_won,omitempty"`
	MatchesLost     *int            `json:"matches_lost,omitempty"`
	MatchesDrawn    *int            `json:"matches_drawn,omitempty"`
	SetsWon         *int            `json:"sets_won,omitempty"`
	SetsLost        *int            `json:"sets_lost,omitempty"`
	GamesWon        *int            `json:"games_won,omitempty"`
	GamesLost       *int            `json:"games_lost,omitempty"`
	GoalDifference  *int            `json:"goal_difference,omitempty"`
	BonusPoints     *int            `json:"bonus_points,omitempty"`
	PenaltyPoints   *int            `json:"penalty_points,omitempty"`
	IsEliminated    *bool           `json:"is_eliminated,omitempty"`
	Position        *int            `json:"position,omitempty"`
}

func (u *StandingUpdate) Key() StandingKey {
	return StandingKey{TournamentID: u.TournamentID, CategoryID: u.CategoryID, ParticipantID: u.ParticipantID}
}

// ApplyTo overwrites the fields of s that u sets and keeps
// matches_played equal to won + lost + drawn.
func (u *StandingUpdate) ApplyTo(s *TournamentStanding) {
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	if u.ParticipantType != "" {
		s.ParticipantType = u.ParticipantType
	}
	setInt(&s.Points, u.Points)
	setInt(&s.MatchesWon, u.MatchesWon)
	setInt(&s.MatchesLost, u.MatchesLost)
	setInt(&s.MatchesDrawn, u.MatchesDrawn)
	setInt(&s.SetsWon, u.SetsWon)
	setInt(&s.SetsLost, u.SetsLost)
	setInt(&s.GamesWon, u.GamesWon)
	setInt(&s.GamesLost, u.GamesLost)
	setInt(&s.GoalDifference, u.GoalDifference)
	setInt(&s.BonusPoints, u.BonusPoints)
	setInt(&s.PenaltyPoints, u.PenaltyPoints)
	if u.IsEliminated != nil {
		s.IsEliminated = *u.IsEliminated
	}
	if u.Position != nil {
		pos := *u.Position
		s.Position = &pos
	}
	s.MatchesPlayed = s.MatchesWon + s.MatchesLost + s.MatchesDrawn
}

// PointsScheme weights match outcomes when standings are computed from match history.
type PointsScheme struct {
	Win  int `json:"win"`
	Draw int `json:"draw"`
	Loss int `json:"loss"`
}

var DefaultPointsScheme = PointsScheme{Win: 3, Draw: 1, Loss: 0}
