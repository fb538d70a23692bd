package models

import "time"

type PlayerStatistics struct {
	PlayerID          int       `json:"player_id"`
	TotalMatches      int       `json:"total_matches"`
	MatchesWon        int       `json:"matches_won"`
	MatchesLost       int       `json:"matches_lost"`
	WinRate           float64   `json:"win_rate"`
	TournamentsPlayed int       `json:"tournaments_played"`
	TournamentsWon    int       `json:"tournaments_won"`
	TotalEarnings     float64   `json:"total_earnings"`
	RankingPoints     int       `json:"ranking_points"`
	BestPlacement     int       `json:"best_placement"`
	AveragePlacement  float64   `json:"average_placement"`
	LastActive        time.Time `json:"last_active"`
}

type TeamStatistics struct {
	TeamID            int       `json:"team_id"`
	TotalMatches      int       `json:"total_matches"`
	MatchesWon        int       `json:"matches_won"`
	MatchesLost       int       `json:"matches_lost"`
	WinRate           float64   `json:"win_rate"`
	TournamentsPlayed int       `json:"tournaments_played"`
	TournamentsWon    int       `json:"tournaments_won"`
	TotalEarnings     float64   `json:"total_earnings"`
	RankingPoints     int       `json:"ranking_points"`
	BestPlacement     int       `json:"best_placement"`
	AveragePlacement  float64   `json:"average_placement"`
	LastActive        time.Time `json:"last_active"`
}

type TournamentStatistics struct {
	TournamentID        int              `json:"tournament_id"`
	Name                string           `json:"name"`
	Sport               string           `json:"sport"`
	Status              TournamentStatus `json:"status"`
	TotalRegistrations  int              `json:"total_registrations"`
	PlayerRegistrations int              `json:"player_registrations"`
	TeamRegistrations   int              `json:"team_registrations"`
	TotalParticipants   int              `json:"total_participants"`
	TotalMatches        int              `json:"total_matches"`
	CompletedMatches    int              `json:"completed_matches"`
	CompletionRate      float64          `json:"completion_rate"`
	TotalRevenue        float64          `json:"total_revenue"`
	PrizePool           float64          `json:"prize_pool"`
	CreatedAt           time.Time        `json:"created_at"`
}
