package models

import (
	"encoding/json"
	"time"
)

// MatchResult is one scored unit (set, period, game) of a match.
type MatchResult struct {
	ID          int             `json:"id"`
	MatchID     int             `json:"match_id"`
	SetNumber   int             `json:"set_number"`
	Side1Score  *int            `json:"side1_score,omitempty"`
	Side2Score  *int            `json:"side2_score,omitempty"`
	ScoringData json.RawMessage `json:"scoring_data,omitempty"`
	Stats       json.RawMessage `json:"stats,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Winner returns the side that took this unit, or 0 when it was level or unscored.
func (r *MatchResult) Winner() int {
	if r.Side1Score == nil || r.Side2Score == nil {
		return 0
	}
	switch {
	case *r.Side1Score > *r.Side2Score:
		return SideOne
	case *r.Side2Score > *r.Side1Score:
		return SideTwo
	}
	return 0
}

type MatchScoreSummary struct {
	MatchID          int `json:"match_id"`
	Side1SetsWon     int `json:"side1_sets_won"`
	Side2SetsWon     int `json:"side2_sets_won"`
	Side1TotalPoints int `json:"side1_total_points"`
	Side2TotalPoints int `json:"side2_total_points"`
}

// SummarizeResults folds per-set results into a score summary.
func SummarizeResults(matchID int, results []*MatchResult) MatchScoreSummary {
	summary := MatchScoreSummary{MatchID: matchID}
	for _, r := range results {
		if r.Side1Score != nil {
			summary.Side1TotalPoints += *r.Side1Score
		}
		if r.Side2Score != nil {
			summary.Side2TotalPoints += *r.Side2Score
		}
		switch r.Winner() {
		case SideOne:
			summary.Side1SetsWon++
		case SideTwo:
			summary.Side2SetsWon++
		}
	}
	return summary
}
