package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Dosada05/tournament-stats/metrics"
	"github.com/Dosada05/tournament-stats/models"
	"github.com/Dosada05/tournament-stats/repositories"
)

type CreateMatchInput struct {
	TournamentID int              `json:"tournament_id"`
	CategoryID   int              `json:"category_id"`
	Side1        models.MatchSide `json:"side1"`
	Side2        models.MatchSide `json:"side2"`
	ScheduledAt  *time.Time       `json:"scheduled_at,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
}

// UpdateMatchInput changes scheduling data only; status goes through the lifecycle operations.
type UpdateMatchInput struct {
	CategoryID  *int              `json:"category_id,omitempty"`
	Side1       *models.MatchSide `json:"side1,omitempty"`
	Side2       *models.MatchSide `json:"side2,omitempty"`
	ScheduledAt *time.Time        `json:"scheduled_at,omitempty"`
	Notes       *string           `json:"notes,omitempty"`
}

// MatchService owns the match lifecycle. Every status change is checked
// against the transition table before it reaches the store.
type MatchService interface {
	// CreateMatch stores a new scheduled match. Each side names exactly one
	// player or team.
	CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error)
	GetMatch(ctx context.Context, id int) (*models.Match, error)
	ListMatches(ctx context.Context, filter models.ListMatchesFilter) ([]*models.Match, error)
	// UpdateMatch applies the non-nil fields of input. Status is not touched.
	UpdateMatch(ctx context.Context, id int, input UpdateMatchInput) (*models.Match, error)
	DeleteMatch(ctx context.Context, id int) error

	StartMatch(ctx context.Context, id int) (*models.Match, error)
	// CompleteMatch records the winner, or a draw when isDraw is set.
	// A draw must not name a winner.
	CompleteMatch(ctx context.Context, id int, winnerSide *int, isDraw bool) (*models.Match, error)
	// CancelMatch appends the trimmed reason to the match notes.
	CancelMatch(ctx context.Context, id int, reason string) (*models.Match, error)
	PostponeMatch(ctx context.Context, id int) (*models.Match, error)
	ForfeitMatch(ctx context.Context, id int, winnerSide int) (*models.Match, error)
	// SetStatus is the generic transition used by the status endpoint.
	SetStatus(ctx context.Context, id int, status models.MatchStatus) (*models.Match, error)

	BulkUpdateStatus(ctx context.Context, ids []int, status models.MatchStatus) (*models.BulkResult, error)
	BulkCancel(ctx context.Context, ids []int, reason string) (*models.BulkResult, error)
}

type matchService struct {
	matchRepo repositories.MatchRepository
	metrics   metrics.Recorder
	logger    *slog.Logger
	clock     Clock
}

// NewMatchService returns a MatchService backed by matchRepo. A nil clock
// means the system clock in UTC.
func NewMatchService(
	matchRepo repositories.MatchRepository,
	recorder metrics.Recorder,
	logger *slog.Logger,
	clock Clock,
) MatchService {
	if clock == nil {
		clock = systemClock
	}
	return &matchService{
		matchRepo: matchRepo,
		metrics:   recorder,
		logger:    logger,
		clock:     clock,
	}
}

func validateMatchSide(side models.MatchSide) error {
	if side.IsEmpty() {
		return ErrMatchParticipantsRequired
	}
	if side.TeamID != nil && (side.PlayerID != nil || side.PartnerID != nil) {
		return ErrMatchSideMixed
	}
	if side.PartnerID != nil && side.PlayerID == nil {
		return fmt.Errorf("%w: partner given without a player", ErrValidationFailed)
	}
	return nil
}

func (s *matchService) CreateMatch(ctx context.Context, input CreateMatchInput) (*models.Match, error) {
	if input.TournamentID <= 0 {
		return nil, ErrMatchTournamentRequired
	}
	if input.CategoryID < 0 {
		return nil, fmt.Errorf("%w: category_id must not be negative", ErrValidationFailed)
	}
	if err := validateMatchSide(input.Side1); err != nil {
		return nil, fmt.Errorf("side 1: %w", err)
	}
	if err := validateMatchSide(input.Side2); err != nil {
		return nil, fmt.Errorf("side 2: %w", err)
	}

	match := &models.Match{
		TournamentID: input.TournamentID,
		CategoryID:   input.CategoryID,
		Side1:        input.Side1,
		Side2:        input.Side2,
		Status:       models.MatchStatusScheduled,
		ScheduledAt:  input.ScheduledAt,
		Notes:        input.Notes,
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		if mapped := mapRepositoryError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	s.logger.InfoContext(ctx, "match created", slog.Int("match_id", match.ID), slog.Int("tournament_id", match.TournamentID))
	return match, nil
}

func (s *matchService) GetMatch(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if mapped := mapRepositoryError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return match, nil
}

func (s *matchService) ListMatches(ctx context.Context, filter models.ListMatchesFilter) ([]*models.Match, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrMatchInvalidStatus, *filter.Status)
	}
	matches, err := s.matchRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

func (s *matchService) UpdateMatch(ctx context.Context, id int, input UpdateMatchInput) (*models.Match, error) {
	match, err := s.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		if *input.CategoryID < 0 {
			return nil, fmt.Errorf("%w: category_id must not be negative", ErrValidationFailed)
		}
		match.CategoryID = *input.CategoryID
	}
	if input.Side1 != nil {
		if err := validateMatchSide(*input.Side1); err != nil {
			return nil, fmt.Errorf("side 1: %w", err)
		}
		match.Side1 = *input.Side1
	}
	if input.Side2 != nil {
		if err := validateMatchSide(*input.Side2); err != nil {
			return nil, fmt.Errorf("side 2: %w", err)
		}
		match.Side2 = *input.Side2
	}
	if input.ScheduledAt != nil {
		match.ScheduledAt = input.ScheduledAt
	}
	if input.Notes != nil {
		match.Notes = input.Notes
	}

	if err := s.matchRepo.Update(ctx, match); err != nil {
		if mapped := mapRepositoryError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to update match %d: %w", id, err)
	}
	return match, nil
}

func (s *matchService) DeleteMatch(ctx context.Context, id int) error {
	if err := s.matchRepo.Delete(ctx, id); err != nil {
		if mapped := mapRepositoryError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to delete match %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "match deleted", slog.Int("match_id", id))
	return nil
}

// transition loads the match, checks the move against the transition table,
// persists it through apply and returns the stored result.
// transition loads the match, checks the move against the state table and
// applies it. A non-empty from narrows the states the move may start in.
func (s *matchService) transition(
	ctx context.Context,
	id int,
	next models.MatchStatus,
	apply func(now time.Time) error,
	from ...models.MatchStatus,
) (*models.Match, error) {
	match, err := s.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(from) > 0 && !slices.Contains(from, match.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrMatchInvalidStatusTransition, match.Status, next)
	}
	if !isValidMatchTransition(match.Status, next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrMatchInvalidStatusTransition, match.Status, next)
	}

	if err := apply(s.clock()); err != nil {
		if mapped := mapRepositoryError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to move match %d to %s: %w", id, next, err)
	}

	s.metrics.MatchTransition(match.Status, next)
	s.logger.InfoContext(ctx, "match status changed",
		slog.Int("match_id", id),
		slog.String("from", string(match.Status)),
		slog.String("to", string(next)),
	)
	return s.GetMatch(ctx, id)
}

// StartMatch moves a scheduled match to in_progress. A postponed match is
// resumed through SetStatus instead.
func (s *matchService) StartMatch(ctx context.Context, id int) (*models.Match, error) {
	return s.transition(ctx, id, models.MatchStatusInProgress, func(now time.Time) error {
		return s.matchRepo.StartMatch(ctx, id, now)
	}, models.MatchStatusScheduled)
}

func (s *matchService) CompleteMatch(ctx context.Context, id int, winnerSide *int, isDraw bool) (*models.Match, error) {
	if isDraw && winnerSide != nil {
		return nil, ErrMatchDrawWithWinner
	}
	if !isDraw && (winnerSide == nil || (*winnerSide != models.SideOne && *winnerSide != models.SideTwo)) {
		return nil, ErrMatchInvalidWinnerSide
	}
	return s.transition(ctx, id, models.MatchStatusCompleted, func(now time.Time) error {
		return s.matchRepo.CompleteMatch(ctx, id, winnerSide, isDraw, now)
	})
}

func (s *matchService) CancelMatch(ctx context.Context, id int, reason string) (*models.Match, error) {
	reason = strings.TrimSpace(reason)
	return s.transition(ctx, id, models.MatchStatusCancelled, func(now time.Time) error {
		return s.matchRepo.CancelMatch(ctx, id, reason, now)
	})
}

func (s *matchService) PostponeMatch(ctx context.Context, id int) (*models.Match, error) {
	return s.transition(ctx, id, models.MatchStatusPostponed, func(time.Time) error {
		return s.matchRepo.PostponeMatch(ctx, id)
	})
}

func (s *matchService) ForfeitMatch(ctx context.Context, id int, winnerSide int) (*models.Match, error) {
	if winnerSide != models.SideOne && winnerSide != models.SideTwo {
		return nil, ErrMatchInvalidWinnerSide
	}
	return s.transition(ctx, id, models.MatchStatusForfeited, func(now time.Time) error {
		return s.matchRepo.ForfeitMatch(ctx, id, winnerSide, now)
	})
}

func (s *matchService) SetStatus(ctx context.Context, id int, status models.MatchStatus) (*models.Match, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrMatchInvalidStatus, status)
	}
	return s.transition(ctx, id, status, func(now time.Time) error {
		return s.matchRepo.UpdateStatus(ctx, id, status, now)
	})
}

func validateBulkIDs(ids []int) error {
	if len(ids) == 0 {
		return ErrBulkEmpty
	}
	if len(ids) > maxBulkItems {
		return fmt.Errorf("%w: %d > %d", ErrBulkTooLarge, len(ids), maxBulkItems)
	}
	return nil
}

// BulkUpdateStatus moves every match independently; a failed item does not
// undo the ones before it.
func (s *matchService) BulkUpdateStatus(ctx context.Context, ids []int, status models.MatchStatus) (*models.BulkResult, error) {
	if err := validateBulkIDs(ids); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrMatchInvalidStatus, status)
	}
	result := &models.BulkResult{Items: make([]models.BulkItemResult, 0, len(ids))}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		_, err := s.SetStatus(ctx, id, status)
		if err != nil && !isItemError(err) {
			s.logger.ErrorContext(ctx, "bulk status update item failed", slog.Int("match_id", id), slog.Any("error", err))
		}
		result.Add(id, err)
	}
	return result, nil
}

func (s *matchService) BulkCancel(ctx context.Context, ids []int, reason string) (*models.BulkResult, error) {
	if err := validateBulkIDs(ids); err != nil {
		return nil, err
	}
	result := &models.BulkResult{Items: make([]models.BulkItemResult, 0, len(ids))}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		_, err := s.CancelMatch(ctx, id, reason)
		if err != nil && !isItemError(err) {
			s.logger.ErrorContext(ctx, "bulk cancel item failed", slog.Int("match_id", id), slog.Any("error", err))
		}
		result.Add(id, err)
	}
	return result, nil
}

// isItemError reports errors caused by the item itself rather than the storage.
func isItemError(err error) bool {
	return errors.Is(err, ErrMatchNotFound) ||
		errors.Is(err, ErrMatchInvalidStatusTransition) ||
		errors.Is(err, ErrMatchInvalidWinnerSide)
}
