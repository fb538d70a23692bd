package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-stats/models"
	"github.com/Dosada05/tournament-stats/repositories"
)

// GrowthService compares the current calendar month with the previous one.
type GrowthService interface {
	GrowthMetrics(ctx context.Context) (*models.GrowthMetrics, error)
}

type growthService struct {
	playerRepo     repositories.PlayerRepository
	teamRepo       repositories.TeamRepository
	tournamentRepo repositories.TournamentRepository
	logger         *slog.Logger
	clock          Clock
}

// NewGrowthService returns a GrowthService. A nil clock means the system clock.
func NewGrowthService(
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
	logger *slog.Logger,
	clock Clock,
) GrowthService {
	if clock == nil {
		clock = systemClock
	}
	return &growthService{
		playerRepo:     playerRepo,
		teamRepo:       teamRepo,
		tournamentRepo: tournamentRepo,
		logger:         logger,
		clock:          clock,
	}
}

// monthWindow splits the previous and current calendar month (UTC) around now.
type monthWindow struct {
	lastStart time.Time
	thisStart time.Time
	nextStart time.Time
}

func newMonthWindow(now time.Time) monthWindow {
	this := monthStart(now)
	return monthWindow{
		lastStart: this.AddDate(0, -1, 0),
		thisStart: this,
		nextStart: this.AddDate(0, 1, 0),
	}
}

func (w monthWindow) createdRange() models.CreatedRange {
	return models.CreatedRange{From: w.lastStart, To: w.nextStart}
}

// bucket reports whether ts belongs to the current month, the previous one, or neither.
func (w monthWindow) bucket(ts time.Time) (thisMonth, lastMonth bool) {
	ts = ts.UTC()
	switch {
	case !ts.Before(w.thisStart) && ts.Before(w.nextStart):
		return true, false
	case !ts.Before(w.lastStart) && ts.Before(w.thisStart):
		return false, true
	}
	return false, false
}

func (s *growthService) GrowthMetrics(ctx context.Context) (*models.GrowthMetrics, error) {
	w := newMonthWindow(s.clock())
	out := &models.GrowthMetrics{}

	players, err := s.playerRepo.List(ctx, w.createdRange())
	if err != nil {
		return nil, fmt.Errorf("failed to list new players: %w", err)
	}
	for _, p := range players {
		this, last := w.bucket(p.CreatedAt)
		if this {
			out.NewPlayersThisMonth++
		} else if last {
			out.NewPlayersLastMonth++
		}
	}

	teams, err := s.teamRepo.List(ctx, w.createdRange())
	if err != nil {
		return nil, fmt.Errorf("failed to list new teams: %w", err)
	}
	for _, t := range teams {
		this, last := w.bucket(t.CreatedAt)
		if this {
			out.NewTeamsThisMonth++
		} else if last {
			out.NewTeamsLastMonth++
		}
	}

	tournaments, err := s.tournamentRepo.List(ctx, models.ListTournamentsFilter{CreatedAfter: w.lastStart, CreatedBefore: w.nextStart})
	if err != nil {
		return nil, fmt.Errorf("failed to list new tournaments: %w", err)
	}
	for _, t := range tournaments {
		this, last := w.bucket(t.CreatedAt)
		if this {
			out.TournamentsThisMonth++
			out.RevenueThisMonth += t.PrizePool
		} else if last {
			out.TournamentsLastMonth++
			out.RevenueLastMonth += t.PrizePool
		}
	}
	out.RevenueThisMonth = round2(out.RevenueThisMonth)
	out.RevenueLastMonth = round2(out.RevenueLastMonth)

	// Match counts per month are not tracked yet; both stay 0.
	out.MatchesThisMonth, out.MatchesLastMonth = 0, 0

	out.PlayerGrowthRate = growthRate(float64(out.NewPlayersThisMonth), float64(out.NewPlayersLastMonth))
	out.TeamGrowthRate = growthRate(float64(out.NewTeamsThisMonth), float64(out.NewTeamsLastMonth))
	out.TournamentGrowthRate = growthRate(float64(out.TournamentsThisMonth), float64(out.TournamentsLastMonth))
	out.MatchGrowthRate = growthRate(float64(out.MatchesThisMonth), float64(out.MatchesLastMonth))
	out.RevenueGrowthRate = growthRate(out.RevenueThisMonth, out.RevenueLastMonth)

	s.logger.DebugContext(ctx, "growth metrics computed",
		slog.Time("month_start", w.thisStart),
		slog.Int("new_players", out.NewPlayersThisMonth),
	)
	return out, nil
}
