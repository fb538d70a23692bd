package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Dosada05/tournament-stats/models"
	"github.com/Dosada05/tournament-stats/repositories"
)

type MatchResultInput struct {
	SetNumber   int             `json:"set_number"`
	Side1Score  *int            `json:"side1_score,omitempty"`
	Side2Score  *int            `json:"side2_score,omitempty"`
	ScoringData json.RawMessage `json:"scoring_data,omitempty"`
	Stats       json.RawMessage `json:"stats,omitempty"`
}

// MatchResultService records per-set scores of a match.
type MatchResultService interface {
	// CreateResult stores one set. The match must exist and the set number
	// must not be taken yet.
	CreateResult(ctx context.Context, matchID int, input MatchResultInput) (*models.MatchResult, error)
	// BulkCreateResults reports one item per input, in input order, with the
	// set number of the input it belongs to.
	BulkCreateResults(ctx context.Context, matchID int, inputs []MatchResultInput) (*models.BulkResult, error)
	GetResult(ctx context.Context, id int) (*models.MatchResult, error)
	// ListResults returns the sets of a match ordered by set number.
	ListResults(ctx context.Context, matchID int) ([]*models.MatchResult, error)
	UpdateResult(ctx context.Context, id int, input MatchResultInput) (*models.MatchResult, error)
	DeleteResult(ctx context.Context, id int) error
	// GetMatchScoreSummary counts sets won and totals the points of each side.
	GetMatchScoreSummary(ctx context.Context, matchID int) (*models.MatchScoreSummary, error)
}

type matchResultService struct {
	resultRepo repositories.MatchResultRepository
	matchRepo  repositories.MatchRepository
	logger     *slog.Logger
}

// NewMatchResultService returns a MatchResultService. matchRepo is used to
// check that a match exists before its sets are touched.
func NewMatchResultService(
	resultRepo repositories.MatchResultRepository,
	matchRepo repositories.MatchRepository,
	logger *slog.Logger,
) MatchResultService {
	return &matchResultService{
		resultRepo: resultRepo,
		matchRepo:  matchRepo,
		logger:     logger,
	}
}

func validateMatchResultInput(input MatchResultInput) error {
	if input.SetNumber < 1 {
		return ErrMatchResultInvalidSet
	}
	if (input.Side1Score != nil && *input.Side1Score < 0) || (input.Side2Score != nil && *input.Side2Score < 0) {
		return ErrMatchResultInvalidScore
	}
	for _, raw := range []json.RawMessage{input.ScoringData, input.Stats} {
		if len(raw) > 0 && !json.Valid(raw) {
			return fmt.Errorf("%w: scoring_data and stats must be valid JSON", ErrValidationFailed)
		}
	}
	return nil
}

func (s *matchResultService) ensureMatch(ctx context.Context, matchID int) error {
	if _, err := s.matchRepo.GetByID(ctx, matchID); err != nil {
		if mapped := mapRepositoryError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to load match %d: %w", matchID, err)
	}
	return nil
}

func (s *matchResultService) create(ctx context.Context, matchID int, input MatchResultInput) (*models.MatchResult, error) {
	if err := validateMatchResultInput(input); err != nil {
		return nil, err
	}
	result := &models.MatchResult{
		MatchID:     matchID,
		SetNumber:   input.SetNumber,
		Side1Score:  input.Side1Score,
		Side2Score:  input.Side2Score,
		ScoringData: input.ScoringData,
		Stats:       input.Stats,
	}
	if err := s.resultRepo.Create(ctx, result); err != nil {
		if mapped := mapRepositoryError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to create result for match %d: %w", matchID, err)
	}
	return result, nil
}

func (s *matchResultService) CreateResult(ctx context.Context, matchID int, input MatchResultInput) (*models.MatchResult, error) {
	if err := s.ensureMatch(ctx, matchID); err != nil {
		return nil, err
	}
	result, err := s.create(ctx, matchID, input)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "match result recorded",
		slog.Int("match_id", matchID),
		slog.Int("set_number", result.SetNumber),
	)
	return result, nil
}

// BulkCreateResults stores each set independently. Earlier sets stay stored
// when a later one fails.
func (s *matchResultService) BulkCreateResults(ctx context.Context, matchID int, inputs []MatchResultInput) (*models.BulkResult, error) {
	if len(inputs) == 0 {
		return nil, ErrBulkEmpty
	}
	if len(inputs) > maxBulkItems {
		return nil, fmt.Errorf("%w: %d > %d", ErrBulkTooLarge, len(inputs), maxBulkItems)
	}
	if err := s.ensureMatch(ctx, matchID); err != nil {
		return nil, err
	}

	out := &models.BulkResult{Items: make([]models.BulkItemResult, 0, len(inputs))}
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		result, err := s.create(ctx, matchID, input)
		id := 0
		if result != nil {
			id = result.ID
		}
		out.Add(id, err).SetNumber = input.SetNumber
	}
	s.logger.InfoContext(ctx, "bulk match results processed",
		slog.Int("match_id", matchID),
		slog.Int("succeeded", out.Succeeded),
		slog.Int("failed", out.Failed),
	)
	return out, nil
}

func (s *matchResultService) GetResult(ctx context.Context, id int) (*models.MatchResult, error) {
	result, err := s.resultRepo.GetByID(ctx, id)
	if err != nil {
		if mapped := mapRepositoryError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to get match result %d: %w", id, err)
	}
	return result, nil
}

func (s *matchResultService) ListResults(ctx context.Context, matchID int) ([]*models.MatchResult, error) {
	if err := s.ensureMatch(ctx, matchID); err != nil {
		return nil, err
	}
	results, err := s.resultRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results for match %d: %w", matchID, err)
	}
	return results, nil
}

// UpdateResult is the score correction path; the match and set number of a
// result are fixed.
func (s *matchResultService) UpdateResult(ctx context.Context, id int, input MatchResultInput) (*models.MatchResult, error) {
	existing, err := s.GetResult(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.SetNumber == 0 {
		input.SetNumber = existing.SetNumber
	}
	if err := validateMatchResultInput(input); err != nil {
		return nil, err
	}
	if input.SetNumber != existing.SetNumber {
		return nil, fmt.Errorf("%w: set number cannot change", ErrValidationFailed)
	}

	existing.Side1Score = input.Side1Score
	existing.Side2Score = input.Side2Score
	if input.ScoringData != nil {
		existing.ScoringData = input.ScoringData
	}
	if input.Stats != nil {
		existing.Stats = input.Stats
	}
	if err := s.resultRepo.Update(ctx, existing); err != nil {
		if mapped := mapRepositoryError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("failed to update match result %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "match result corrected", slog.Int("result_id", id), slog.Int("match_id", existing.MatchID))
	return existing, nil
}

func (s *matchResultService) DeleteResult(ctx context.Context, id int) error {
	if err := s.resultRepo.Delete(ctx, id); err != nil {
		if mapped := mapRepositoryError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to delete match result %d: %w", id, err)
	}
	return nil
}

func (s *matchResultService) GetMatchScoreSummary(ctx context.Context, matchID int) (*models.MatchScoreSummary, error) {
	if err := s.ensureMatch(ctx, matchID); err != nil {
		return nil, err
	}
	summary, err := s.resultRepo.GetMatchScoreSummary(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize match %d: %w", matchID, err)
	}
	return summary, nil
}
