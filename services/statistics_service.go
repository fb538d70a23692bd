package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-stats/models"
	"github.com/Dosada05/tournament-stats/repositories"
)

// StatisticsService aggregates completed matches and approved registrations
// into per player, per team and per tournament figures.
type StatisticsService interface {
	// PlayerStatistics is narrowed by the tournament, sport and date filters.
	PlayerStatistics(ctx context.Context, playerID int, filters models.StatisticsFilters) (*models.PlayerStatistics, error)
	TeamStatistics(ctx context.Context, teamID int, filters models.StatisticsFilters) (*models.TeamStatistics, error)
	TournamentStatistics(ctx context.Context, tournamentID int) (*models.TournamentStatistics, error)
	// ListTournamentStatistics also returns the total before paging.
	ListTournamentStatistics(ctx context.Context, filters models.StatisticsFilters) ([]models.TournamentStatistics, int, error)
	// RecentTournamentStatistics covers the newest tournaments; limit is clamped.
	RecentTournamentStatistics(ctx context.Context, limit int) ([]models.TournamentStatistics, error)
}

type statisticsService struct {
	playerRepo       repositories.PlayerRepository
	teamRepo         repositories.TeamRepository
	tournamentRepo   repositories.TournamentRepository
	matchRepo        repositories.MatchRepository
	registrationRepo repositories.RegistrationRepository
	logger           *slog.Logger
}

func NewStatisticsService(
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.TeamRepository,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	registrationRepo repositories.RegistrationRepository,
	logger *slog.Logger,
) StatisticsService {
	return &statisticsService{
		playerRepo:       playerRepo,
		teamRepo:         teamRepo,
		tournamentRepo:   tournamentRepo,
		matchRepo:        matchRepo,
		registrationRepo: registrationRepo,
		logger:           logger,
	}
}

func approvedFilter(f models.ListRegistrationsFilter) models.ListRegistrationsFilter {
	approved := models.RegistrationStatusApproved
	f.Status = &approved
	return f
}

func completedFilter(f models.ListMatchesFilter) models.ListMatchesFilter {
	completed := models.MatchStatusCompleted
	f.Status = &completed
	return f
}

// scope loads the tournament sports only when the filters restrict by sport.
func (s *statisticsService) scope(ctx context.Context, filters models.StatisticsFilters) (statsScope, error) {
	sc := statsScope{filters: filters}
	if filters.Sport == "" {
		return sc, nil
	}
	tournaments, err := s.tournamentRepo.List(ctx, models.ListTournamentsFilter{Sport: filters.Sport})
	if err != nil {
		return sc, fmt.Errorf("failed to list tournaments for sport %q: %w", filters.Sport, err)
	}
	sc.sports = make(map[int]string, len(tournaments))
	for _, t := range tournaments {
		sc.sports[t.ID] = t.Sport
	}
	return sc, nil
}

func (s *statisticsService) PlayerStatistics(ctx context.Context, playerID int, filters models.StatisticsFilters) (*models.PlayerStatistics, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if mapped := mapRepositoryError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to load player %d: %w", playerID, err)
	}

	sc, err := s.scope(ctx, filters)
	if err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.List(ctx, completedFilter(models.ListMatchesFilter{PlayerID: playerID, TournamentID: filters.TournamentID}))
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of player %d: %w", playerID, err)
	}
	registrations, err := s.registrationRepo.List(ctx, approvedFilter(models.ListRegistrationsFilter{PlayerID: playerID, TournamentID: filters.TournamentID}))
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations of player %d: %w", playerID, err)
	}

	ts := make(tallies)
	tallyMatches(ts, sc.matches(matches), playerMembers)
	tallyRegistrations(ts, sc.registrations(registrations), playerMembers)

	stats := buildPlayerStatistics(playerID, player.CreatedAt, ts.lookup(playerID))
	return &stats, nil
}

func (s *statisticsService) TeamStatistics(ctx context.Context, teamID int, filters models.StatisticsFilters) (*models.TeamStatistics, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if mapped := mapRepositoryError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}

	sc, err := s.scope(ctx, filters)
	if err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.List(ctx, completedFilter(models.ListMatchesFilter{TeamID: teamID, TournamentID: filters.TournamentID}))
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of team %d: %w", teamID, err)
	}
	registrations, err := s.registrationRepo.List(ctx, approvedFilter(models.ListRegistrationsFilter{TeamID: teamID, TournamentID: filters.TournamentID}))
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations of team %d: %w", teamID, err)
	}

	ts := make(tallies)
	tallyMatches(ts, sc.matches(matches), teamMembers)
	tallyRegistrations(ts, sc.registrations(registrations), teamMembers)

	stats := buildTeamStatistics(teamID, team.CreatedAt, ts.lookup(teamID))
	return &stats, nil
}

func (s *statisticsService) TournamentStatistics(ctx context.Context, tournamentID int) (*models.TournamentStatistics, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if mapped := mapRepositoryError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	matches, err := s.matchRepo.List(ctx, models.ListMatchesFilter{TournamentID: tournamentID})
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of tournament %d: %w", tournamentID, err)
	}
	registrations, err := s.registrationRepo.List(ctx, approvedFilter(models.ListRegistrationsFilter{TournamentID: tournamentID}))
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations of tournament %d: %w", tournamentID, err)
	}

	stats := buildTournamentStatistics(tournament, matches, registrations)
	return &stats, nil
}

// ListTournamentStatistics pages over the tournaments selected by filters,
// newest first, and returns the page with the number of selected tournaments.
func (s *statisticsService) ListTournamentStatistics(ctx context.Context, filters models.StatisticsFilters) ([]models.TournamentStatistics, int, error) {
	filters = filters.Normalize()
	tournaments, err := s.tournamentRepo.List(ctx, models.ListTournamentsFilter{Sport: filters.Sport})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tournaments: %w", err)
	}

	selected := make([]*models.Tournament, 0, len(tournaments))
	for _, t := range tournaments {
		if filters.MatchesTournament(t) && filters.InRange(t.CreatedAt) {
			selected = append(selected, t)
		}
	}
	total := len(selected)
	selected = paginate(selected, filters.Limit, filters.Offset)
	s.logger.DebugContext(ctx, "tournament statistics page",
		slog.Int("total", total),
		slog.Int("limit", filters.Limit),
		slog.Int("offset", filters.Offset),
	)

	stats, err := s.statisticsFor(ctx, selected)
	if err != nil {
		return nil, 0, err
	}
	return stats, total, nil
}

func (s *statisticsService) RecentTournamentStatistics(ctx context.Context, limit int) ([]models.TournamentStatistics, error) {
	tournaments, err := s.tournamentRepo.ListRecent(ctx, models.ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list recent tournaments: %w", err)
	}
	return s.statisticsFor(ctx, tournaments)
}

// statisticsFor reads matches and registrations once and groups them by tournament.
func (s *statisticsService) statisticsFor(ctx context.Context, tournaments []*models.Tournament) ([]models.TournamentStatistics, error) {
	out := make([]models.TournamentStatistics, 0, len(tournaments))
	if len(tournaments) == 0 {
		return out, nil
	}

	var (
		matches       []*models.Match
		registrations []*models.TournamentRegistration
		err           error
	)
	if len(tournaments) == 1 {
		matches, err = s.matchRepo.List(ctx, models.ListMatchesFilter{TournamentID: tournaments[0].ID})
	} else {
		matches, err = s.matchRepo.List(ctx, models.ListMatchesFilter{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	if len(tournaments) == 1 {
		registrations, err = s.registrationRepo.List(ctx, approvedFilter(models.ListRegistrationsFilter{TournamentID: tournaments[0].ID}))
	} else {
		registrations, err = s.registrationRepo.List(ctx, approvedFilter(models.ListRegistrationsFilter{}))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}

	matchesBy := make(map[int][]*models.Match)
	for _, m := range matches {
		matchesBy[m.TournamentID] = append(matchesBy[m.TournamentID], m)
	}
	registrationsBy := make(map[int][]*models.TournamentRegistration)
	for _, r := range registrations {
		registrationsBy[r.TournamentID] = append(registrationsBy[r.TournamentID], r)
	}
	for _, t := range tournaments {
		out = append(out, buildTournamentStatistics(t, matchesBy[t.ID], registrationsBy[t.ID]))
	}
	return out, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
