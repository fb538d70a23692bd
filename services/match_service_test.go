package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Dosada05/tournament-stats/metrics"
	"github.com/Dosada05/tournament-stats/models"
	"github.com/Dosada05/tournament-stats/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.March, 14, 15, 9, 26, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// inMemoryMatches wires a FakeMatchRepo to a map so status writes are visible to later reads.
func inMemoryMatches(matches ...*models.Match) *FakeMatchRepo {
	store := make(map[int]*models.Match, len(matches))
	for _, m := range matches {
		store[m.ID] = m
	}
	get := func(id int) (*models.Match, error) {
		m, ok := store[id]
		if !ok {
			return nil, repositories.ErrMatchNotFound
		}
		cp := *m
		return &cp, nil
	}
	repo := &FakeMatchRepo{}
	repo.GetByIDFunc = func(_ context.Context, id int) (*models.Match, error) { return get(id) }
	repo.StartMatchFunc = func(_ context.Context, id int, at time.Time) error {
		m := store[id]
		m.Status = models.MatchStatusInProgress
		m.ActualStart = &at
		return nil
	}
	repo.CompleteMatchFunc = func(_ context.Context, id int, winner *int, isDraw bool, at time.Time) error {
		m := store[id]
		m.Status = models.MatchStatusCompleted
		m.WinnerSide = winner
		m.IsDraw = isDraw
		m.ActualEnd = &at
		return nil
	}
	repo.ForfeitMatchFunc = func(_ context.Context, id int, winner int, at time.Time) error {
		m := store[id]
		m.Status = models.MatchStatusForfeited
		m.WinnerSide = &winner
		m.ActualEnd = &at
		return nil
	}
	repo.CancelMatchFunc = func(_ context.Context, id int, reason string, at time.Time) error {
		m := store[id]
		m.Status = models.MatchStatusCancelled
		m.WinnerSide = nil
		m.ActualEnd = &at
		if reason != "" {
			m.Notes = &reason
		}
		return nil
	}
	repo.PostponeMatchFunc = func(_ context.Context, id int) error {
		store[id].Status = models.MatchStatusPostponed
		return nil
	}
	repo.UpdateStatusFunc = func(_ context.Context, id int, status models.MatchStatus, at time.Time) error {
		m := store[id]
		m.Status = status
		if status.IsTerminal() {
			m.ActualEnd = &at
		}
		if !status.CarriesWinner() {
			m.WinnerSide = nil
		}
		return nil
	}
	return repo
}

func newTestMatchService(repo repositories.MatchRepository) MatchService {
	return NewMatchService(repo, metrics.NewNoop(), discardLogger(), fixedClock)
}

func scheduledMatch(id int) *models.Match {
	return &models.Match{
		ID:           id,
		TournamentID: 1,
		Side1:        models.MatchSide{PlayerID: intPtr(10)},
		Side2:        models.MatchSide{PlayerID: intPtr(20)},
		Status:       models.MatchStatusScheduled,
	}
}

func TestMatchService_CreateMatch(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateMatchInput
		repoErr error
		wantErr error
	}{
		{
			name: "creates singles match as scheduled",
			input: CreateMatchInput{
				TournamentID: 1,
				Side1:        models.MatchSide{PlayerID: intPtr(1)},
				Side2:        models.MatchSide{PlayerID: intPtr(2), PartnerID: intPtr(3)},
			},
		},
		{
			name:    "missing tournament",
			input:   CreateMatchInput{Side1: models.MatchSide{TeamID: intPtr(1)}, Side2: models.MatchSide{TeamID: intPtr(2)}},
			wantErr: ErrMatchTournamentRequired,
		},
		{
			name:    "empty side",
			input:   CreateMatchInput{TournamentID: 1, Side1: models.MatchSide{TeamID: intPtr(1)}},
			wantErr: ErrMatchParticipantsRequired,
		},
		{
			name: "team and player on one side",
			input: CreateMatchInput{
				TournamentID: 1,
				Side1:        models.MatchSide{TeamID: intPtr(1), PlayerID: intPtr(4)},
				Side2:        models.MatchSide{TeamID: intPtr(2)},
			},
			wantErr: ErrMatchSideMixed,
		},
		{
			name: "partner without player",
			input: CreateMatchInput{
				TournamentID: 1,
				Side1:        models.MatchSide{PartnerID: intPtr(4)},
				Side2:        models.MatchSide{PlayerID: intPtr(2)},
			},
			wantErr: ErrValidationFailed,
		},
		{
			name: "unknown tournament reference",
			input: CreateMatchInput{
				TournamentID: 99,
				Side1:        models.MatchSide{TeamID: intPtr(1)},
				Side2:        models.MatchSide{TeamID: intPtr(2)},
			},
			repoErr: repositories.ErrMatchTournamentInvalid,
			wantErr: ErrMatchReferenceInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var created *models.Match
			repo := &FakeMatchRepo{
				CreateFunc: func(_ context.Context, m *models.Match) error {
					if tt.repoErr != nil {
						return tt.repoErr
					}
					m.ID = 7
					created = m
					return nil
				},
			}
			svc := newTestMatchService(repo)

			got, err := svc.CreateMatch(context.Background(), tt.input)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 7, got.ID)
			assert.Equal(t, models.MatchStatusScheduled, got.Status)
			assert.Same(t, created, got)
		})
	}
}

func TestMatchService_GetMatch_NotFound(t *testing.T) {
	svc := newTestMatchService(&FakeMatchRepo{})

	_, err := svc.GetMatch(context.Background(), 404)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestMatchService_GetMatch_PropagatesStorageFailure(t *testing.T) {
	dbErr := errors.New("connection reset")
	repo := &FakeMatchRepo{GetByIDFunc: func(context.Context, int) (*models.Match, error) { return nil, dbErr }}
	svc := newTestMatchService(repo)

	_, err := svc.GetMatch(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrMatchNotFound)
}

func TestMatchService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := inMemoryMatches(scheduledMatch(1))
	svc := newTestMatchService(repo)

	started, err := svc.StartMatch(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusInProgress, started.Status)
	require.NotNil(t, started.ActualStart)
	assert.Equal(t, fixedNow, *started.ActualStart)
	assert.Nil(t, started.ActualEnd)

	completed, err := svc.CompleteMatch(ctx, 1, intPtr(models.SideTwo), false)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, completed.Status)
	require.NotNil(t, completed.WinnerSide)
	assert.Equal(t, models.SideTwo, *completed.WinnerSide)
	assert.False(t, completed.IsDraw)
	require.NotNil(t, completed.ActualEnd)

	_, err = svc.StartMatch(ctx, 1)
	assert.ErrorIs(t, err, ErrMatchInvalidStatusTransition)

	cancelled, err := svc.CancelMatch(ctx, 1, "  venue flooded ")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.WinnerSide)
	require.NotNil(t, cancelled.Notes)
	assert.Equal(t, "venue flooded", *cancelled.Notes)

	assert.Equal(t, []string{
		"GetByID", "StartMatch", "GetByID",
		"GetByID", "CompleteMatch", "GetByID",
		"GetByID",
		"GetByID", "CancelMatch", "GetByID",
	}, repo.Trace())
}

func TestMatchService_CompleteMatch_Validation(t *testing.T) {
	tests := []struct {
		name    string
		winner  *int
		isDraw  bool
		wantErr error
	}{
		{name: "draw with winner", winner: intPtr(1), isDraw: true, wantErr: ErrMatchDrawWithWinner},
		{name: "no winner and no draw", wantErr: ErrMatchInvalidWinnerSide},
		{name: "winner side out of range", winner: intPtr(3), wantErr: ErrMatchInvalidWinnerSide},
		{name: "draw", isDraw: true},
		{name: "side one wins", winner: intPtr(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestMatchService(inMemoryMatches(scheduledMatch(1)))
			got, err := svc.CompleteMatch(context.Background(), 1, tt.winner, tt.isDraw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.isDraw, got.IsDraw)
		})
	}
}

func TestMatchService_SetStatus_Transitions(t *testing.T) {
	tests := []struct {
		from    models.MatchStatus
		to      models.MatchStatus
		allowed bool
	}{
		{models.MatchStatusScheduled, models.MatchStatusInProgress, true},
		{models.MatchStatusScheduled, models.MatchStatusBye, true},
		{models.MatchStatusInProgress, models.MatchStatusScheduled, false},
		{models.MatchStatusPostponed, models.MatchStatusScheduled, true},
		{models.MatchStatusCompleted, models.MatchStatusScheduled, false},
		{models.MatchStatusCompleted, models.MatchStatusInProgress, false},
		{models.MatchStatusCompleted, models.MatchStatusCancelled, true},
		{models.MatchStatusForfeited, models.MatchStatusCompleted, false},
		{models.MatchStatusBye, models.MatchStatusCancelled, true},
		{models.MatchStatusCancelled, models.MatchStatusScheduled, false},
		{models.MatchStatusCancelled, models.MatchStatusCancelled, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			m := scheduledMatch(1)
			m.Status = tt.from
			svc := newTestMatchService(inMemoryMatches(m))

			got, err := svc.SetStatus(context.Background(), 1, tt.to)
			if !tt.allowed {
				assert.ErrorIs(t, err, ErrMatchInvalidStatusTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Status)
		})
	}
}

func TestMatchService_SetStatus_UnknownStatus(t *testing.T) {
	repo := inMemoryMatches(scheduledMatch(1))
	svc := newTestMatchService(repo)

	_, err := svc.SetStatus(context.Background(), 1, models.MatchStatus("paused"))
	assert.ErrorIs(t, err, ErrMatchInvalidStatus)
	assert.Empty(t, repo.Trace())
}

func TestMatchService_ForfeitAndPostpone(t *testing.T) {
	ctx := context.Background()
	svc := newTestMatchService(inMemoryMatches(scheduledMatch(1), scheduledMatch(2)))

	_, err := svc.ForfeitMatch(ctx, 1, 0)
	assert.ErrorIs(t, err, ErrMatchInvalidWinnerSide)

	forfeited, err := svc.ForfeitMatch(ctx, 1, models.SideOne)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusForfeited, forfeited.Status)
	assert.Equal(t, models.SideOne, *forfeited.WinnerSide)

	postponed, err := svc.PostponeMatch(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusPostponed, postponed.Status)
	assert.Nil(t, postponed.ActualEnd)

	_, err = svc.StartMatch(ctx, 2)
	assert.ErrorIs(t, err, ErrMatchInvalidStatusTransition)

	resumed, err := svc.SetStatus(ctx, 2, models.MatchStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusInProgress, resumed.Status)
}

func TestMatchService_StartMatch_OnlyFromScheduled(t *testing.T) {
	tests := []struct {
		from    models.MatchStatus
		allowed bool
	}{
		{models.MatchStatusScheduled, true},
		{models.MatchStatusInProgress, false},
		{models.MatchStatusPostponed, false},
		{models.MatchStatusCompleted, false},
		{models.MatchStatusCancelled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			m := scheduledMatch(1)
			m.Status = tt.from
			repo := inMemoryMatches(m)
			svc := newTestMatchService(repo)

			got, err := svc.StartMatch(context.Background(), 1)
			if !tt.allowed {
				assert.ErrorIs(t, err, ErrMatchInvalidStatusTransition)
				assert.Equal(t, []string{"GetByID"}, repo.Trace())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.MatchStatusInProgress, got.Status)
			assert.Equal(t, fixedNow, *got.ActualStart)
		})
	}
}

func TestMatchService_BulkUpdateStatus_PartialSuccess(t *testing.T) {
	done := scheduledMatch(2)
	done.Status = models.MatchStatusCompleted
	svc := newTestMatchService(inMemoryMatches(scheduledMatch(1), done, scheduledMatch(3)))

	result, err := svc.BulkUpdateStatus(context.Background(), []int{1, 2, 99, 3}, models.MatchStatusPostponed)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Items, 4)
	assert.True(t, result.Items[0].OK)
	assert.False(t, result.Items[1].OK)
	assert.Contains(t, result.Items[1].Error, ErrMatchInvalidStatusTransition.Error())
	assert.False(t, result.Items[2].OK)
	assert.Equal(t, ErrMatchNotFound.Error(), result.Items[2].Error)
	for i, item := range result.Items {
		assert.Equal(t, i, item.Index)
	}
	assert.True(t, result.Items[3].OK)
}

func TestMatchService_BulkCancel(t *testing.T) {
	svc := newTestMatchService(inMemoryMatches(scheduledMatch(1), scheduledMatch(2)))

	_, err := svc.BulkCancel(context.Background(), nil, "rain")
	assert.ErrorIs(t, err, ErrBulkEmpty)

	_, err = svc.BulkCancel(context.Background(), make([]int, maxBulkItems+1), "rain")
	assert.ErrorIs(t, err, ErrBulkTooLarge)

	result, err := svc.BulkCancel(context.Background(), []int{1, 2}, "rain")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)
	assert.Zero(t, result.Failed)
}

func TestMatchService_UpdateMatch(t *testing.T) {
	m := scheduledMatch(5)
	var saved *models.Match
	repo := &FakeMatchRepo{
		GetByIDFunc: func(context.Context, int) (*models.Match, error) { cp := *m; return &cp, nil },
		UpdateFunc:  func(_ context.Context, in *models.Match) error { saved = in; return nil },
	}
	svc := newTestMatchService(repo)

	when := fixedNow.Add(48 * time.Hour)
	got, err := svc.UpdateMatch(context.Background(), 5, UpdateMatchInput{
		ScheduledAt: &when,
		Side2:       &models.MatchSide{PlayerID: intPtr(30)},
	})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, when, *got.ScheduledAt)
	assert.Equal(t, 30, *got.Side2.PlayerID)
	assert.Equal(t, models.MatchStatusScheduled, got.Status)

	_, err = svc.UpdateMatch(context.Background(), 5, UpdateMatchInput{Side1: &models.MatchSide{}})
	assert.ErrorIs(t, err, ErrMatchParticipantsRequired)
}

func TestMatchService_DeleteMatch(t *testing.T) {
	svc := newTestMatchService(&FakeMatchRepo{
		DeleteFunc: func(context.Context, int) error { return repositories.ErrMatchNotFound },
	})
	assert.ErrorIs(t, svc.DeleteMatch(context.Background(), 3), ErrMatchNotFound)
}
