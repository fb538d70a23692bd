package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/tournament-stats/metrics"
	"github.com/Dosada05/tournament-stats/models"
	"github.com/Dosada05/tournament-stats/repositories"
	"golang.org/x/sync/errgroup"
)

const dashboardTopN = 5

// DashboardService assembles the platform analytics dashboard.
type DashboardService interface {
	GetDashboard(ctx context.Context) (*models.AnalyticsDashboard, error)
	// GetTotals computes the platform-wide counters shown on the dashboard.
	GetTotals(ctx context.Context) (models.PlatformTotals, error)
}

type dashboardService struct {
	playerRepo       repositories.PlayerRepository
	teamRepo         repositories.TeamRepository
	tournamentRepo   repositories.TournamentRepository
	matchRepo        repositories.MatchRepository
	registrationRepo repositories.RegistrationRepository
	leaderboard      LeaderboardService
	statistics       StatisticsService
	growth           GrowthService
	metrics          metrics.Recorder
	logger           *slog.Logger
	clock            Clock
}

func NewDashboardService(
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	registrationRepo repositories.RegistrationRepository,
	leaderboard LeaderboardService,
	statistics StatisticsService,
	growth GrowthService,
	recorder metrics.Recorder,
	logger *slog.Logger,
	clock Clock,
) DashboardService {
	if clock == nil {
		clock = systemClock
	}
	return &dashboardService{
		playerRepo:       playerRepo,
		teamRepo:         teamRepo,
		tournamentRepo:   tournamentRepo,
		matchRepo:        matchRepo,
		registrationRepo: registrationRepo,
		leaderboard:      leaderboard,
		statistics:       statistics,
		growth:           growth,
		metrics:          recorder,
		logger:           logger,
		clock:            clock,
	}
}

// GetDashboard runs every part concurrently. The first failure cancels the
// rest and fails the whole dashboard.
func (s *dashboardService) GetDashboard(ctx context.Context) (_ *models.AnalyticsDashboard, err error) {
	started := time.Now()
	defer func() {
		s.metrics.DashboardAssembled(time.Since(started), err)
	}()

	dashboard := &models.AnalyticsDashboard{GeneratedAt: s.clock()}
	g, gCtx := errgroup.WithContext(ctx)

	// 1. Platform totals
	g.Go(func() error {
		totals, err := s.GetTotals(gCtx)
		if err != nil {
			return err
		}
		dashboard.Totals = totals
		return nil
	})

	// 2. Top players and teams by ranking points
	g.Go(func() error {
		board, err := s.leaderboard.Leaderboard(gCtx, models.LeaderboardQuery{
			Category: models.LeaderboardPoints, EntityType: models.EntityPlayer, Limit: dashboardTopN,
		})
		if err != nil {
			return fmt.Errorf("failed to rank top players: %w", err)
		}
		dashboard.TopPlayers = board.Entries
		return nil
	})
	g.Go(func() error {
		board, err := s.leaderboard.Leaderboard(gCtx, models.LeaderboardQuery{
			Category: models.LeaderboardPoints, EntityType: models.EntityTeam, Limit: dashboardTopN,
		})
		if err != nil {
			return fmt.Errorf("failed to rank top teams: %w", err)
		}
		dashboard.TopTeams = board.Entries
		return nil
	})

	// 3. Most recently created tournaments
	g.Go(func() error {
		recent, err := s.statistics.RecentTournamentStatistics(gCtx, dashboardTopN)
		if err != nil {
			return fmt.Errorf("failed to load recent tournaments: %w", err)
		}
		dashboard.RecentTournaments = recent
		return nil
	})

	// 4. Month over month growth
	g.Go(func() error {
		growth, err := s.growth.GrowthMetrics(gCtx)
		if err != nil {
			return fmt.Errorf("failed to compute growth metrics: %w", err)
		}
		dashboard.Growth = *growth
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "dashboard assembly failed", slog.Any("error", err))
		return nil, err
	}
	return dashboard, nil
}

func (s *dashboardService) GetTotals(ctx context.Context) (models.PlatformTotals, error) {
	var totals models.PlatformTotals

	players, err := s.playerRepo.List(ctx, models.CreatedRange{})
	if err != nil {
		return totals, fmt.Errorf("failed to count players: %w", err)
	}
	teams, err := s.teamRepo.List(ctx, models.CreatedRange{})
	if err != nil {
		return totals, fmt.Errorf("failed to count teams: %w", err)
	}
	tournaments, err := s.tournamentRepo.List(ctx, models.ListTournamentsFilter{})
	if err != nil {
		return totals, fmt.Errorf("failed to list tournaments: %w", err)
	}
	matchCount, err := s.matchRepo.Count(ctx, models.ListMatchesFilter{})
	if err != nil {
		return totals, fmt.Errorf("failed to count matches: %w", err)
	}
	registrations, err := s.registrationRepo.List(ctx, approvedFilter(models.ListRegistrationsFilter{}))
	if err != nil {
		return totals, fmt.Errorf("failed to list registrations: %w", err)
	}

	totals.TotalPlayers = len(players)
	totals.TotalTeams = len(teams)
	totals.TotalTournaments = len(tournaments)
	totals.TotalMatches = matchCount

	sports := make(map[string]int)
	for _, t := range tournaments {
		if t.Status == models.TournamentStatusInProgress {
			totals.ActiveTournaments++
		}
		if t.Sport != "" {
			sports[t.Sport]++
		}
	}
	totals.MostPopularSport = mostFrequent(sports)

	approved := 0
	var earnings float64
	for _, r := range registrations {
		if !r.IsApproved() {
			continue
		}
		approved++
		earnings += r.PaymentAmount
	}
	totals.TotalEarningsDistributed = round2(earnings)
	if totals.TotalTournaments > 0 {
		totals.AverageTournamentSize = round2(float64(approved) / float64(totals.TotalTournaments))
	}
	return totals, nil
}

// mostFrequent returns the key with the highest count; ties go to the
// alphabetically first key.
func mostFrequent(counts map[string]int) string {
	best, bestCount := "", 0
	for key, n := range counts {
		if n > bestCount || (n == bestCount && key < best) {
			best, bestCount = key, n
		}
	}
	return best
}
