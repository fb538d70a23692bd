package services

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Dosada05/tournament-stats/metrics"
	"github.com/Dosada05/tournament-stats/models"
	"github.com/Dosada05/tournament-stats/repositories"
)

// LeaderboardService ranks players or teams by one category.
type LeaderboardService interface {
	// Leaderboard normalizes query, ranks every entity and returns the
	// requested page with 1-based ranks.
	Leaderboard(ctx context.Context, query models.LeaderboardQuery) (*models.Leaderboard, error)
}

type leaderboardService struct {
	playerRepo       repositories.PlayerRepository
	teamRepo         repositories.TeamRepository
	matchRepo        repositories.MatchRepository
	registrationRepo repositories.RegistrationRepository
	metrics          metrics.Recorder
	logger           *slog.Logger
}

func NewLeaderboardService(
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	registrationRepo repositories.RegistrationRepository,
	recorder metrics.Recorder,
	logger *slog.Logger,
) LeaderboardService {
	return &leaderboardService{
		playerRepo:       playerRepo,
		teamRepo:         teamRepo,
		matchRepo:        matchRepo,
		registrationRepo: registrationRepo,
		metrics:          recorder,
		logger:           logger,
	}
}

// NormalizeLeaderboardQuery applies the fallbacks: unknown categories rank by
// win rate, unknown entity types rank teams, limit is clamped to [1, 100] and
// a negative offset becomes 0.
func NormalizeLeaderboardQuery(q models.LeaderboardQuery) models.LeaderboardQuery {
	switch q.Category {
	case models.LeaderboardPoints, models.LeaderboardWins, models.LeaderboardEarnings, models.LeaderboardWinRate:
	default:
		q.Category = models.LeaderboardWinRate
	}
	if q.EntityType != models.EntityPlayer {
		q.EntityType = models.EntityTeam
	}
	q.Limit = models.ClampLimit(q.Limit)
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// rankedEntity is a leaderboard candidate before ranks are assigned.
type rankedEntity struct {
	id        int
	name      string
	createdAt time.Time
	tally     *entityTally
}

func (e rankedEntity) score(category models.LeaderboardCategory) float64 {
	switch category {
	case models.LeaderboardPoints:
		return float64(e.tally.rankingPoints())
	case models.LeaderboardWins:
		return float64(e.tally.matchesWon)
	case models.LeaderboardEarnings:
		return round2(e.tally.earnings)
	}
	return e.tally.winRate()
}

func (s *leaderboardService) Leaderboard(ctx context.Context, query models.LeaderboardQuery) (*models.Leaderboard, error) {
	started := time.Now()
	query = NormalizeLeaderboardQuery(query)

	entities, err := s.loadEntities(ctx, query.EntityType)
	if err != nil {
		return nil, err
	}
	ranked := rankEntities(entities, query.Category)

	board := &models.Leaderboard{
		Category:   query.Category,
		EntityType: query.EntityType,
		Limit:      query.Limit,
		Offset:     query.Offset,
		Total:      len(ranked),
		Entries:    make([]models.LeaderboardEntry, 0, query.Limit),
	}
	for i, e := range paginate(ranked, query.Limit, query.Offset) {
		board.Entries = append(board.Entries, models.LeaderboardEntry{
			Rank:           query.Offset + i + 1,
			ID:             e.id,
			Name:           e.name,
			Points:         e.score(query.Category),
			MatchesWon:     e.tally.matchesWon,
			TournamentsWon: e.tally.tournamentsWon(),
			WinRate:        e.tally.winRate(),
			TotalEarnings:  round2(e.tally.earnings),
			LastActive:     e.tally.lastActiveOr(e.createdAt),
		})
	}

	elapsed := time.Since(started)
	s.metrics.LeaderboardComputed(query.Category, query.EntityType, elapsed)
	s.logger.DebugContext(ctx, "leaderboard computed",
		slog.String("category", string(query.Category)),
		slog.String("entity_type", string(query.EntityType)),
		slog.Int("total", board.Total),
		slog.Duration("elapsed", elapsed),
	)
	return board, nil
}

// loadEntities reads the entities with one pass over completed matches and
// approved registrations.
func (s *leaderboardService) loadEntities(ctx context.Context, entityType models.EntityType) ([]rankedEntity, error) {
	matches, err := s.matchRepo.List(ctx, completedFilter(models.ListMatchesFilter{}))
	if err != nil {
		return nil, fmt.Errorf("failed to list completed matches: %w", err)
	}
	registrations, err := s.registrationRepo.List(ctx, approvedFilter(models.ListRegistrationsFilter{}))
	if err != nil {
		return nil, fmt.Errorf("failed to list approved registrations: %w", err)
	}

	ts := make(tallies)
	if entityType == models.EntityPlayer {
		tallyMatches(ts, matches, playerMembers)
		tallyRegistrations(ts, registrations, playerMembers)

		players, err := s.playerRepo.List(ctx, models.CreatedRange{})
		if err != nil {
			return nil, fmt.Errorf("failed to list players: %w", err)
		}
		out := make([]rankedEntity, 0, len(players))
		for _, p := range players {
			out = append(out, rankedEntity{id: p.ID, name: p.DisplayName(), createdAt: p.CreatedAt, tally: ts.lookup(p.ID)})
		}
		return out, nil
	}

	tallyMatches(ts, matches, teamMembers)
	tallyRegistrations(ts, registrations, teamMembers)

	teams, err := s.teamRepo.List(ctx, models.CreatedRange{})
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	out := make([]rankedEntity, 0, len(teams))
	for _, t := range teams {
		out = append(out, rankedEntity{id: t.ID, name: t.Name, createdAt: t.CreatedAt, tally: ts.lookup(t.ID)})
	}
	return out, nil
}

// rankEntities drops entities without qualifying activity and sorts the rest
// by score, matches won, win rate (win_rate only) and id.
func rankEntities(entities []rankedEntity, category models.LeaderboardCategory) []rankedEntity {
	out := make([]rankedEntity, 0, len(entities))
	for _, e := range entities {
		if category != models.LeaderboardWinRate && e.score(category) <= 0 {
			continue
		}
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b rankedEntity) int {
		if c := cmp.Compare(b.score(category), a.score(category)); c != 0 {
			return c
		}
		if c := cmp.Compare(b.tally.matchesWon, a.tally.matchesWon); c != 0 {
			return c
		}
		if category == models.LeaderboardWinRate {
			if c := cmp.Compare(b.tally.winRate(), a.tally.winRate()); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.id, b.id)
	})
	return out
}
