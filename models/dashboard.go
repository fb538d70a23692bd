package models

import "time"

type GrowthMetrics struct {
	NewPlayersThisMonth  int     `json:"new_players_this_month"`
	NewPlayersLastMonth  int     `json:"new_players_last_month"`
	PlayerGrowthRate     float64 `json:"player_growth_rate"`
	NewTeamsThisMonth    int     `json:"new_teams_this_month"`
	NewTeamsLastMonth    int     `json:"new_teams_last_month"`
	TeamGrowthRate       float64 `json:"team_growth_rate"`
	TournamentsThisMonth int     `json:"tournaments_this_month"`
	TournamentsLastMonth int     `json:"tournaments_last_month"`
	TournamentGrowthRate float64 `json:"tournament_growth_rate"`
	MatchesThisMonth     int     `json:"matches_this_month"`
	MatchesLastMonth     int     `json:"matches_last_month"`
	MatchGrowthRate      float64 `json:"match_growth_rate"`
	RevenueThisMonth     float64 `json:"revenue_this_month"`
	RevenueLastMonth     float64 `json:"revenue_last_month"`
	RevenueGrowthRate    float64 `json:"revenue_growth_rate"`
}

type PlatformTotals struct {
	TotalPlayers             int     `json:"total_players"`
	TotalTeams               int     `json:"total_teams"`
	TotalTournaments         int     `json:"total_tournaments"`
	TotalMatches             int     `json:"total_matches"`
	ActiveTournaments        int     `json:"active_tournaments"`
	TotalEarningsDistributed float64 `json:"total_earnings_distributed"`
	AverageTournamentSize    float64 `json:"average_tournament_size"`
	MostPopularSport         string  `json:"most_popular_sport"`
}

type AnalyticsDashboard struct {
	Totals            PlatformTotals         `json:"totals"`
	TopPlayers        []LeaderboardEntry     `json:"top_players"`
	TopTeams          []LeaderboardEntry     `json:"top_teams"`
	RecentTournaments []TournamentStatistics `json:"recent_tournaments"`
	Growth            GrowthMetrics          `json:"growth"`
	GeneratedAt       time.Time              `json:"generated_at"`
}

// DashboardSnapshot describes a dashboard persisted to object storage.
type DashboardSnapshot struct {
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	GeneratedAt time.Time `json:"generated_at"`
}
