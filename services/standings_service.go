package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Dosada05/tournament-stats/metrics"
	"github.com/Dosada05/tournament-stats/models"
	"github.com/Dosada05/tournament-stats/repositories"
)

type UpsertSummary struct {
	Inserted int                     `json:"inserted"`
	Updated  int                     `json:"updated"`
	Failed   int                     `json:"failed"`
	Items    []models.BulkItemResult `json:"items,omitempty"`
}

// StandingsService maintains the stored standings table of a tournament.
type StandingsService interface {
	// BulkUpsert inserts or updates one row per update, keyed by tournament,
	// category and participant.
	BulkUpsert(ctx context.Context, updates []models.StandingUpdate) (*UpsertSummary, error)
	// RecalculateStandings deletes the stored rows and returns how many were removed.
	RecalculateStandings(ctx context.Context, tournamentID int) (int64, error)
	// ComputeStandings rebuilds the table from completed and forfeited matches
	// and approved registrations, stores it and returns the stored rows.
	ComputeStandings(ctx context.Context, tournamentID int, categoryID *int) ([]*models.TournamentStanding, error)
	// ListStandings returns the stored rows in table order. A nil categoryID
	// lists every category.
	ListStandings(ctx context.Context, tournamentID int, categoryID *int) ([]*models.TournamentStanding, error)
}

type standingsService struct {
	standingRepo     repositories.TournamentStandingRepository
	matchRepo        repositories.MatchRepository
	resultRepo       repositories.MatchResultRepository
	registrationRepo repositories.RegistrationRepository
	tournamentRepo   repositories.TournamentRepository
	scheme           models.PointsScheme
	metrics          metrics.Recorder
	logger           *slog.Logger
	clock            Clock
}

// NewStandingsService returns a StandingsService that awards points by scheme.
func NewStandingsService(
	standingRepo repositories.TournamentStandingRepository,
	matchRepo repositories.MatchRepository,
	resultRepo repositories.MatchResultRepository,
	registrationRepo repositories.RegistrationRepository,
	tournamentRepo repositories.TournamentRepository,
	scheme models.PointsScheme,
	recorder metrics.Recorder,
	logger *slog.Logger,
	clock Clock,
) StandingsService {
	if clock == nil {
		clock = systemClock
	}
	return &standingsService{
		standingRepo:     standingRepo,
		matchRepo:        matchRepo,
		resultRepo:       resultRepo,
		registrationRepo: registrationRepo,
		tournamentRepo:   tournamentRepo,
		scheme:           scheme,
		metrics:          recorder,
		logger:           logger,
		clock:            clock,
	}
}

func validateStandingUpdate(u *models.StandingUpdate) error {
	if u.TournamentID <= 0 || u.ParticipantID <= 0 {
		return fmt.Errorf("%w: tournament_id and participant_id are required", ErrStandingInvalid)
	}
	if u.CategoryID < 0 {
		return fmt.Errorf("%w: category_id must not be negative", ErrStandingInvalid)
	}
	if u.ParticipantType != "" && !u.ParticipantType.IsValid() {
		return fmt.Errorf("%w: unknown participant type %q", ErrStandingInvalid, u.ParticipantType)
	}
	for _, v := range []*int{u.MatchesWon, u.MatchesLost, u.MatchesDrawn, u.SetsWon, u.SetsLost, u.GamesWon, u.GamesLost} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%w: counters must not be negative", ErrStandingInvalid)
		}
	}
	if u.Position != nil && *u.Position < 1 {
		return fmt.Errorf("%w: position must be positive", ErrStandingInvalid)
	}
	return nil
}

// upsertOne applies u to the stored row for its key, inserting a zero row
// first when none exists. There is no lock between the read and the write.
func (s *standingsService) upsertOne(ctx context.Context, u *models.StandingUpdate) (inserted bool, err error) {
	if err := validateStandingUpdate(u); err != nil {
		return false, err
	}

	existing, err := s.standingRepo.GetByKey(ctx, nil, u.Key())
	switch {
	case err == nil:
		u.ApplyTo(existing)
		existing.UpdatedAt = s.clock()
		if err := s.standingRepo.Update(ctx, nil, existing); err != nil {
			return false, s.wrapStandingError(err, u)
		}
		return false, nil
	case errors.Is(err, repositories.ErrTournamentStandingNotFound):
		row := &models.TournamentStanding{
			TournamentID:    u.TournamentID,
			CategoryID:      u.CategoryID,
			ParticipantID:   u.ParticipantID,
			ParticipantType: models.ParticipantPlayer,
		}
		u.ApplyTo(row)
		row.UpdatedAt = s.clock()
		if err := s.standingRepo.Create(ctx, nil, row); err != nil {
			return false, s.wrapStandingError(err, u)
		}
		return true, nil
	default:
		return false, s.wrapStandingError(err, u)
	}
}

func (s *standingsService) wrapStandingError(err error, u *models.StandingUpdate) error {
	if mapped := mapRepositoryError(err); mapped != err {
		return mapped
	}
	if errors.Is(err, repositories.ErrStandingConflict) {
		return fmt.Errorf("%w: concurrent insert for participant %d: %w", ErrStandingInvalid, u.ParticipantID, err)
	}
	return fmt.Errorf("failed to upsert standing for participant %d: %w", u.ParticipantID, err)
}

// BulkUpsert writes every update on its own; a failed record is reported and
// the rest still go through.
func (s *standingsService) BulkUpsert(ctx context.Context, updates []models.StandingUpdate) (*UpsertSummary, error) {
	if len(updates) == 0 {
		return nil, ErrBulkEmpty
	}
	if len(updates) > maxBulkItems {
		return nil, fmt.Errorf("%w: %d > %d", ErrBulkTooLarge, len(updates), maxBulkItems)
	}

	summary := &UpsertSummary{Items: make([]models.BulkItemResult, 0, len(updates))}
	for i := range updates {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		u := &updates[i]
		inserted, err := s.upsertOne(ctx, u)
		item := models.BulkItemResult{Index: i, ID: u.ParticipantID, OK: err == nil}
		switch {
		case err != nil:
			item.Error = err.Error()
			summary.Failed++
			s.logger.WarnContext(ctx, "standing upsert failed",
				slog.Int("tournament_id", u.TournamentID),
				slog.Int("participant_id", u.ParticipantID),
				slog.Any("error", err),
			)
		case inserted:
			summary.Inserted++
		default:
			summary.Updated++
		}
		summary.Items = append(summary.Items, item)
	}

	s.metrics.StandingsUpserted(summary.Inserted, summary.Updated, summary.Failed)
	return summary, nil
}

// RecalculateStandings clears the stored table of a tournament. Rebuilding it
// from match history is ComputeStandings.
func (s *standingsService) RecalculateStandings(ctx context.Context, tournamentID int) (int64, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if mapped := mapRepositoryError(err); mapped != err {
			return 0, mapped
		}
		return 0, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	deleted, err := s.standingRepo.DeleteByTournamentID(ctx, nil, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete standings of tournament %d: %w", tournamentID, err)
	}
	s.logger.InfoContext(ctx, "standings cleared", slog.Int("tournament_id", tournamentID), slog.Int64("deleted", deleted))
	return deleted, nil
}

// ComputeStandings keeps the bonus and penalty points of rows that already
// exist; positions are reassigned from the new table order.
func (s *standingsService) ComputeStandings(ctx context.Context, tournamentID int, categoryID *int) ([]*models.TournamentStanding, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if mapped := mapRepositoryError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}

	matches, err := s.matchRepo.List(ctx, models.ListMatchesFilter{
		TournamentID: tournamentID,
		CategoryID:   categoryID,
		Statuses:     []models.MatchStatus{models.MatchStatusCompleted, models.MatchStatusForfeited},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list decided matches: %w", err)
	}

	matchIDs := make([]int, 0, len(matches))
	for _, m := range matches {
		if m.Status == models.MatchStatusCompleted {
			matchIDs = append(matchIDs, m.ID)
		}
	}
	results, err := s.resultRepo.ListByMatches(ctx, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list match results: %w", err)
	}

	approved := models.RegistrationStatusApproved
	registrations, err := s.registrationRepo.List(ctx, models.ListRegistrationsFilter{TournamentID: tournamentID, Status: &approved})
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}

	storedCategory := models.NoCategory
	if categoryID != nil {
		storedCategory = *categoryID
	}
	existing, err := s.standingRepo.ListByTournament(ctx, nil, tournamentID, &storedCategory, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list current standings: %w", err)
	}
	table := buildStandingsTable(tournamentID, storedCategory, categoryID, matches, results, registrations, existing, s.scheme)

	updates := make([]models.StandingUpdate, 0, len(table))
	for _, row := range table {
		updates = append(updates, row.toUpdate())
	}
	if len(updates) > 0 {
		summary, err := s.BulkUpsert(ctx, updates)
		if err != nil {
			return nil, err
		}
		if summary.Failed > 0 {
			return nil, fmt.Errorf("failed to store %d of %d computed standings", summary.Failed, len(updates))
		}
	}

	s.logger.InfoContext(ctx, "standings computed",
		slog.Int("tournament_id", tournamentID),
		slog.Int("participants", len(table)),
		slog.Int("matches", len(matches)),
	)
	return s.ListStandings(ctx, tournamentID, &storedCategory)
}

func (s *standingsService) ListStandings(ctx context.Context, tournamentID int, categoryID *int) ([]*models.TournamentStanding, error) {
	rows, err := s.standingRepo.ListByTournament(ctx, nil, tournamentID, categoryID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings of tournament %d: %w", tournamentID, err)
	}
	sortStandings(rows)
	return rows, nil
}

// sortStandings orders by stored position (unset last) and then by the
// default table order.
func sortStandings(rows []*models.TournamentStanding) {
	slices.SortStableFunc(rows, func(a, b *models.TournamentStanding) int {
		switch {
		case a.Position != nil && b.Position != nil:
			if c := cmp.Compare(*a.Position, *b.Position); c != 0 {
				return c
			}
		case a.Position != nil:
			return -1
		case b.Position != nil:
			return 1
		}
		return compareTableOrder(
			tableOrder{a.Points, a.GoalDifference, a.GamesWon, a.ParticipantID},
			tableOrder{b.Points, b.GoalDifference, b.GamesWon, b.ParticipantID},
		)
	})
}

// tableOrder holds the keys of the default standings order.
type tableOrder struct {
	points, goalDifference, gamesWon, participantID int
}

// compareTableOrder sorts by points, goal difference and games won, all
// descending, then participant id ascending.
func compareTableOrder(a, b tableOrder) int {
	return cmp.Or(
		cmp.Compare(b.points, a.points),
		cmp.Compare(b.goalDifference, a.goalDifference),
		cmp.Compare(b.gamesWon, a.gamesWon),
		cmp.Compare(a.participantID, b.participantID),
	)
}
