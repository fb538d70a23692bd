package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-stats/models"
	"github.com/lib/pq"
)

var (
	ErrMatchResultNotFound     = errors.New("match result not found")
	ErrMatchResultSetConflict  = errors.New("a result for this set already exists")
	ErrMatchResultMatchInvalid = errors.New("match result references an unknown match")
	ErrMatchResultScoreInvalid = errors.New("match result score rejected by storage")
)

// MatchResultRepository persists per-set results. A match has at most one
// result per set number.
type MatchResultRepository interface {
	// Create returns ErrMatchResultSetConflict when the set is already recorded
	// and ErrMatchResultMatchInvalid when the match does not exist.
	Create(ctx context.Context, result *models.MatchResult) error
	GetByID(ctx context.Context, id int) (*models.MatchResult, error)
	// ListByMatch returns the results ordered by set number.
	ListByMatch(ctx context.Context, matchID int) ([]*models.MatchResult, error)
	// ListByMatches loads the results of many matches in one query, keyed by match id.
	ListByMatches(ctx context.Context, matchIDs []int) (map[int][]*models.MatchResult, error)
	// Update corrects scores and payloads of an existing set.
	Update(ctx context.Context, result *models.MatchResult) error
	Delete(ctx context.Context, id int) error
	// GetMatchScoreSummary aggregates sets won and total points per side.
	GetMatchScoreSummary(ctx context.Context, matchID int) (*models.MatchScoreSummary, error)
}

type postgresMatchResultRepository struct {
	db *sql.DB
}

func NewPostgresMatchResultRepository(db *sql.DB) MatchResultRepository {
	return &postgresMatchResultRepository{db: db}
}

const matchResultColumns = `id, match_id, set_number, side1_score, side2_score, scoring_data, stats, created_at, updated_at`

func scanMatchResult(row rowScanner) (*models.MatchResult, error) {
	var (
		res                    models.MatchResult
		side1, side2           sql.NullInt64
		scoringData, statsData []byte
	)
	err := row.Scan(&res.ID, &res.MatchID, &res.SetNumber, &side1, &side2, &scoringData, &statsData, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	res.Side1Score = nullInt(side1)
	res.Side2Score = nullInt(side2)
	if len(scoringData) > 0 {
		res.ScoringData = json.RawMessage(scoringData)
	}
	if len(statsData) > 0 {
		res.Stats = json.RawMessage(statsData)
	}
	return &res, nil
}

// jsonbArg passes a raw JSON document to a JSONB column, NULL when empty.
func jsonbArg(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func (r *postgresMatchResultRepository) Create(ctx context.Context, result *models.MatchResult) error {
	query := `
		INSERT INTO match_results (match_id, set_number, side1_score, side2_score, scoring_data, stats)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		result.MatchID, result.SetNumber, result.Side1Score, result.Side2Score,
		jsonbArg(result.ScoringData), jsonbArg(result.Stats),
	).Scan(&result.ID, &result.CreatedAt, &result.UpdatedAt)
	return r.handleMatchResultError(err)
}

func (r *postgresMatchResultRepository) GetByID(ctx context.Context, id int) (*models.MatchResult, error) {
	query := `SELECT ` + matchResultColumns + ` FROM match_results WHERE id = $1`
	res, err := scanMatchResult(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchResultNotFound
		}
		return nil, fmt.Errorf("failed to scan match result %d: %w", id, err)
	}
	return res, nil
}

func (r *postgresMatchResultRepository) ListByMatch(ctx context.Context, matchID int) ([]*models.MatchResult, error) {
	byMatch, err := r.ListByMatches(ctx, []int{matchID})
	if err != nil {
		return nil, err
	}
	if results, ok := byMatch[matchID]; ok {
		return results, nil
	}
	return []*models.MatchResult{}, nil
}

// ListByMatches loads the results of several matches in one query, grouped by match id.
func (r *postgresMatchResultRepository) ListByMatches(ctx context.Context, matchIDs []int) (map[int][]*models.MatchResult, error) {
	grouped := make(map[int][]*models.MatchResult, len(matchIDs))
	if len(matchIDs) == 0 {
		return grouped, nil
	}
	// pq.Array needs a slice of a driver-supported element type.
	ids := make([]int64, len(matchIDs))
	for i, id := range matchIDs {
		ids[i] = int64(id)
	}
	query := `SELECT ` + matchResultColumns + ` FROM match_results WHERE match_id = ANY($1) ORDER BY match_id, set_number`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query match results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		res, scanErr := scanMatchResult(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match result row: %w", scanErr)
		}
		grouped[res.MatchID] = append(grouped[res.MatchID], res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match result rows iteration: %w", err)
	}
	return grouped, nil
}

func (r *postgresMatchResultRepository) Update(ctx context.Context, result *models.MatchResult) error {
	query := `
		UPDATE match_results SET
			set_number = $1, side1_score = $2, side2_score = $3, scoring_data = $4, stats = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING match_id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		result.SetNumber, result.Side1Score, result.Side2Score,
		jsonbArg(result.ScoringData), jsonbArg(result.Stats), result.ID,
	).Scan(&result.MatchID, &result.CreatedAt, &result.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrMatchResultNotFound
	}
	return r.handleMatchResultError(err)
}

func (r *postgresMatchResultRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM match_results WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchResultNotFound)
}

func (r *postgresMatchResultRepository) GetMatchScoreSummary(ctx context.Context, matchID int) (*models.MatchScoreSummary, error) {
	// Tied or half-scored sets are won by neither side but still add to the totals.
	query := `
		SELECT
			COUNT(*) FILTER (WHERE side1_score > side2_score),
			COUNT(*) FILTER (WHERE side2_score > side1_score),
			COALESCE(SUM(side1_score), 0),
			COALESCE(SUM(side2_score), 0)
		FROM match_results
		WHERE match_id = $1`
	summary := &models.MatchScoreSummary{MatchID: matchID}
	err := r.db.QueryRowContext(ctx, query, matchID).Scan(
		&summary.Side1SetsWon, &summary.Side2SetsWon, &summary.Side1TotalPoints, &summary.Side2TotalPoints,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize results of match %d: %w", matchID, err)
	}
	return summary, nil
}

func (r *postgresMatchResultRepository) handleMatchResultError(err error) error {
	if err == nil {
		return nil
	}
	if code, constraint, ok := pqErrorCode(err); ok {
		switch code {
		case pqUniqueViolation:
			if constraint == "match_results_match_id_set_number_key" {
				return ErrMatchResultSetConflict
			}
		case pqForeignKeyViolation:
			return ErrMatchResultMatchInvalid
		case pqCheckViolation:
			return ErrMatchResultScoreInvalid
		}
	}
	return err
}
