package services

import (
	"errors"
	"math"
	"time"

	"github.com/Dosada05/tournament-stats/models"
	"github.com/Dosada05/tournament-stats/repositories"
)

// maxBulkItems bounds bulk match and result operations.
const maxBulkItems = 500

// Clock lets tests pin "now".
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// percentage returns part/total*100 rounded to two decimals, 0 when total is 0.
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(part) / float64(total) * 100)
}

// growthRate returns (current-previous)/previous*100 rounded to two decimals, 0 when previous is 0.
func growthRate(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return round2((current - previous) / previous * 100)
}

// rankingPoints is the fixed-weight composite score used by the points leaderboard.
func rankingPoints(tournamentsWon, matchesWon int) int {
	return tournamentsWon*100 + matchesWon*10
}

var allowedMatchTransitions = map[models.MatchStatus][]models.MatchStatus{
	models.MatchStatusScheduled: {
		models.MatchStatusInProgress, models.MatchStatusCompleted, models.MatchStatusPostponed,
		models.MatchStatusForfeited, models.MatchStatusBye, models.MatchStatusCancelled,
	},
	models.MatchStatusInProgress: {
		models.MatchStatusCompleted, models.MatchStatusPostponed, models.MatchStatusForfeited, models.MatchStatusCancelled,
	},
	models.MatchStatusPostponed: {
		models.MatchStatusScheduled, models.MatchStatusInProgress, models.MatchStatusCompleted,
		models.MatchStatusForfeited, models.MatchStatusCancelled,
	},
	models.MatchStatusCompleted: {models.MatchStatusCancelled},
	models.MatchStatusForfeited: {models.MatchStatusCancelled},
	models.MatchStatusBye:       {models.MatchStatusCancelled},
	models.MatchStatusCancelled: {models.MatchStatusCancelled},
}

// isValidMatchTransition reports whether a match may move from current to next.
// Cancellation is accepted from every state.
func isValidMatchTransition(current, next models.MatchStatus) bool {
	if next == models.MatchStatusCancelled {
		return true
	}
	for _, allowed := range allowedMatchTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

// mapRepositoryError translates storage sentinels into service errors and
// leaves everything else untouched.
func mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchResultNotFound):
		return ErrMatchResultNotFound
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrMatchResultSetConflict):
		return ErrMatchResultSetConflict
	case errors.Is(err, repositories.ErrMatchResultScoreInvalid):
		return ErrMatchResultInvalidScore
	case errors.Is(err, repositories.ErrMatchResultMatchInvalid):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchTournamentInvalid),
		errors.Is(err, repositories.ErrMatchParticipantInvalid):
		return ErrMatchReferenceInvalid
	case errors.Is(err, repositories.ErrStandingTournamentInvalid):
		return ErrTournamentNotFound
	}
	return err
}

func intPtr(v int) *int { return &v }

// monthStart returns the first instant of t's calendar month in UTC.
func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
