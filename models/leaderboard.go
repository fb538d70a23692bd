package models

import "time"

type LeaderboardCategory string

const (
	LeaderboardPoints   LeaderboardCategory = "points"
	LeaderboardWins     LeaderboardCategory = "wins"
	LeaderboardEarnings LeaderboardCategory = "earnings"
	LeaderboardWinRate  LeaderboardCategory = "win_rate"
)

type EntityType string

const (
	EntityPlayer EntityType = "player"
	EntityTeam   EntityType = "team"
)

type LeaderboardEntry struct {
	Rank           int       `json:"rank"`
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	Points         float64   `json:"points"`
	MatchesWon     int       `json:"matches_won"`
	TournamentsWon int       `json:"tournaments_won"`
	WinRate        float64   `json:"win_rate"`
	TotalEarnings  float64   `json:"total_earnings"`
	LastActive     time.Time `json:"last_active"`
}

type LeaderboardQuery struct {
	Category   LeaderboardCategory
	EntityType EntityType
	Limit      int
	Offset     int
}

type Leaderboard struct {
	Category   LeaderboardCategory `json:"category"`
	EntityType EntityType          `json:"entity_type"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
	Total      int                 `json:"total"`
	Entries    []LeaderboardEntry  `json:"entries"`
}
