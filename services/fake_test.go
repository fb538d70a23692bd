package services

import (
	"context"
	"time"

	"github.com/Dosada05/tournament-stats/models"
	"github.com/Dosada05/tournament-stats/repositories"
)

// ------------------------
// Fake Match Repo
// ------------------------

type FakeMatchRepo struct {
	trace []string

	CreateFunc        func(ctx context.Context, match *models.Match) error
	GetByIDFunc       func(ctx context.Context, id int) (*models.Match, error)
	ListFunc          func(ctx context.Context, filter models.ListMatchesFilter) ([]*models.Match, error)
	CountFunc         func(ctx context.Context, filter models.ListMatchesFilter) (int, error)
	UpdateFunc        func(ctx context.Context, match *models.Match) error
	DeleteFunc        func(ctx context.Context, id int) error
	UpdateStatusFunc  func(ctx context.Context, id int, status models.MatchStatus, at time.Time) error
	StartMatchFunc    func(ctx context.Context, id int, startedAt time.Time) error
	CompleteMatchFunc func(ctx context.Context, id int, winnerSide *int, isDraw bool, endedAt time.Time) error
	ForfeitMatchFunc  func(ctx context.Context, id int, winnerSide int, endedAt time.Time) error
	CancelMatchFunc   func(ctx context.Context, id int, reason string, endedAt time.Time) error
	PostponeMatchFunc func(ctx context.Context, id int) error
}

var _ repositories.MatchRepository = (*FakeMatchRepo)(nil)

func (f *FakeMatchRepo) record(step string) { f.trace = append(f.trace, step) }

// Trace returns the sequence of method calls made to the fake.
func (f *FakeMatchRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeMatchRepo) Create(ctx context.Context, match *models.Match) error {
	f.record("Create")
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, match)
	}
	return nil
}

func (f *FakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	f.record("GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrMatchNotFound
}

func (f *FakeMatchRepo) List(ctx context.Context, filter models.ListMatchesFilter) ([]*models.Match, error) {
	f.record("List")
	if f.ListFunc != nil {
		return f.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (f *FakeMatchRepo) Count(ctx context.Context, filter models.ListMatchesFilter) (int, error) {
	f.record("Count")
	if f.CountFunc != nil {
		return f.CountFunc(ctx, filter)
	}
	return 0, nil
}

func (f *FakeMatchRepo) Update(ctx context.Context, match *models.Match) error {
	f.record("Update")
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, match)
	}
	return nil
}

func (f *FakeMatchRepo) Delete(ctx context.Context, id int) error {
	f.record("Delete")
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, id)
	}
	return nil
}

func (f *FakeMatchRepo) UpdateStatus(ctx context.Context, id int, status models.MatchStatus, at time.Time) error {
	f.record("UpdateStatus")
	if f.UpdateStatusFunc != nil {
		return f.UpdateStatusFunc(ctx, id, status, at)
	}
	return nil
}

func (f *FakeMatchRepo) StartMatch(ctx context.Context, id int, startedAt time.Time) error {
	f.record("StartMatch")
	if f.StartMatchFunc != nil {
		return f.StartMatchFunc(ctx, id, startedAt)
	}
	return nil
}

func (f *FakeMatchRepo) CompleteMatch(ctx context.Context, id int, winnerSide *int, isDraw bool, endedAt time.Time) error {
	f.record("CompleteMatch")
	if f.CompleteMatchFunc != nil {
		return f.CompleteMatchFunc(ctx, id, winnerSide, isDraw, endedAt)
	}
	return nil
}

func (f *FakeMatchRepo) ForfeitMatch(ctx context.Context, id int, winnerSide int, endedAt time.Time) error {
	f.record("ForfeitMatch")
	if f.ForfeitMatchFunc != nil {
		return f.ForfeitMatchFunc(ctx, id, winnerSide, endedAt)
	}
	return nil
}

func (f *FakeMatchRepo) CancelMatch(ctx context.Context, id int, reason string, endedAt time.Time) error {
	f.record("CancelMatch")
	if f.CancelMatchFunc != nil {
		return f.CancelMatchFunc(ctx, id, reason, endedAt)
	}
	return nil
}

func (f *FakeMatchRepo) PostponeMatch(ctx context.Context, id int) error {
	f.record("PostponeMatch")
	if f.PostponeMatchFunc != nil {
		return f.PostponeMatchFunc(ctx, id)
	}
	return nil
}

// ------------------------
// Fake Match Result Repo
// ------------------------

type FakeMatchResultRepo struct {
	CreateFunc               func(ctx context.Context, result *models.MatchResult) error
	GetByIDFunc              func(ctx context.Context, id int) (*models.MatchResult, error)
	ListByMatchFunc          func(ctx context.Context, matchID int) ([]*models.MatchResult, error)
	ListByMatchesFunc        func(ctx context.Context, matchIDs []int) (map[int][]*models.MatchResult, error)
	UpdateFunc               func(ctx context.Context, result *models.MatchResult) error
	DeleteFunc               func(ctx context.Context, id int) error
	GetMatchScoreSummaryFunc func(ctx context.Context, matchID int) (*models.MatchScoreSummary, error)
}

var _ repositories.MatchResultRepository = (*FakeMatchResultRepo)(nil)

func (f *FakeMatchResultRepo) Create(ctx context.Context, result *models.MatchResult) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, result)
	}
	return nil
}

func (f *FakeMatchResultRepo) GetByID(ctx context.Context, id int) (*models.MatchResult, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrMatchResultNotFound
}

func (f *FakeMatchResultRepo) ListByMatch(ctx context.Context, matchID int) ([]*models.MatchResult, error) {
	if f.ListByMatchFunc != nil {
		return f.ListByMatchFunc(ctx, matchID)
	}
	return nil, nil
}

func (f *FakeMatchResultRepo) ListByMatches(ctx context.Context, matchIDs []int) (map[int][]*models.MatchResult, error) {
	if f.ListByMatchesFunc != nil {
		return f.ListByMatchesFunc(ctx, matchIDs)
	}
	return map[int][]*models.MatchResult{}, nil
}

func (f *FakeMatchResultRepo) Update(ctx context.Context, result *models.MatchResult) error {
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, result)
	}
	return nil
}

func (f *FakeMatchResultRepo) Delete(ctx context.Context, id int) error {
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, id)
	}
	return nil
}

func (f *FakeMatchResultRepo) GetMatchScoreSummary(ctx context.Context, matchID int) (*models.MatchScoreSummary, error) {
	if f.GetMatchScoreSummaryFunc != nil {
		return f.GetMatchScoreSummaryFunc(ctx, matchID)
	}
	return &models.MatchScoreSummary{MatchID: matchID}, nil
}

// ------------------------
// Fake Standing Repo
// ------------------------

// FakeStandingRepo keeps rows in memory keyed like the unique constraint.
type FakeStandingRepo struct {
	rows   map[models.StandingKey]*models.TournamentStanding
	nextID int

	CreateErr error
	UpdateErr error
	ListErr   error
	DeleteErr error
}

var _ repositories.TournamentStandingRepository = (*FakeStandingRepo)(nil)

func NewFakeStandingRepo(seed ...*models.TournamentStanding) *FakeStandingRepo {
	f := &FakeStandingRepo{rows: make(map[models.StandingKey]*models.TournamentStanding)}
	for _, s := range seed {
		f.nextID++
		cp := *s
		cp.ID = f.nextID
		f.rows[cp.Key()] = &cp
	}
	return f
}

func (f *FakeStandingRepo) Create(_ context.Context, _ repositories.SQLExecutor, standing *models.TournamentStanding) error {
	if f.CreateErr != nil {
		return f.CreateErr
	}
	if _, exists := f.rows[standing.Key()]; exists {
		return repositories.ErrStandingConflict
	}
	f.nextID++
	standing.ID = f.nextID
	cp := *standing
	f.rows[cp.Key()] = &cp
	return nil
}

func (f *FakeStandingRepo) GetByKey(_ context.Context, _ repositories.SQLExecutor, key models.StandingKey) (*models.TournamentStanding, error) {
	row, ok := f.rows[key]
	if !ok {
		return nil, repositories.ErrTournamentStandingNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *FakeStandingRepo) Update(_ context.Context, _ repositories.SQLExecutor, standing *models.TournamentStanding) error {
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	if _, ok := f.rows[standing.Key()]; !ok {
		return repositories.ErrTournamentStandingNotFound
	}
	cp := *standing
	f.rows[cp.Key()] = &cp
	return nil
}

func (f *FakeStandingRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int, categoryID *int, _ bool) ([]*models.TournamentStanding, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]*models.TournamentStanding, 0)
	for _, row := range f.rows {
		if row.TournamentID != tournamentID {
			continue
		}
		if categoryID != nil && row.CategoryID != *categoryID {
			continue
		}
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (f *FakeStandingRepo) DeleteByTournamentID(_ context.Context, _ repositories.SQLExecutor, tournamentID int) (int64, error) {
	if f.DeleteErr != nil {
		return 0, f.DeleteErr
	}
	var n int64
	for key, row := range f.rows {
		if row.TournamentID == tournamentID {
			delete(f.rows, key)
			n++
		}
	}
	return n, nil
}

func (f *FakeStandingRepo) Len() int { return len(f.rows) }

func (f *FakeStandingRepo) Row(key models.StandingKey) *models.TournamentStanding {
	return f.rows[key]
}

// ------------------------
// Fake read-side repos
// ------------------------

type FakeTournamentRepo struct {
	GetByIDFunc    func(ctx context.Context, id int) (*models.Tournament, error)
	ListFunc       func(ctx context.Context, filter models.ListTournamentsFilter) ([]*models.Tournament, error)
	ListRecentFunc func(ctx context.Context, limit int) ([]*models.Tournament, error)
}

var _ repositories.TournamentRepository = (*FakeTournamentRepo)(nil)

func (f *FakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrTournamentNotFound
}

func (f *FakeTournamentRepo) List(ctx context.Context, filter models.ListTournamentsFilter) ([]*models.Tournament, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (f *FakeTournamentRepo) ListRecent(ctx context.Context, limit int) ([]*models.Tournament, error) {
	if f.ListRecentFunc != nil {
		return f.ListRecentFunc(ctx, limit)
	}
	return nil, nil
}

type FakeRegistrationRepo struct {
	ListFunc func(ctx context.Context, filter models.ListRegistrationsFilter) ([]*models.TournamentRegistration, error)
}

var _ repositories.RegistrationRepository = (*FakeRegistrationRepo)(nil)

func (f *FakeRegistrationRepo) List(ctx context.Context, filter models.ListRegistrationsFilter) ([]*models.TournamentRegistration, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx, filter)
	}
	return nil, nil
}

type FakePlayerRepo struct {
	GetByIDFunc func(ctx context.Context, id int) (*models.Player, error)
	ListFunc    func(ctx context.Context, created models.CreatedRange) ([]*models.Player, error)
}

var _ repositories.PlayerRepository = (*FakePlayerRepo)(nil)

func (f *FakePlayerRepo) GetByID(ctx context.Context, id int) (*models.Player, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrPlayerNotFound
}

func (f *FakePlayerRepo) List(ctx context.Context, created models.CreatedRange) ([]*models.Player, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx, created)
	}
	return nil, nil
}

type FakeTeamRepo struct {
	GetByIDFunc func(ctx context.Context, id int) (*models.Team, error)
	ListFunc    func(ctx context.Context, created models.CreatedRange) ([]*models.Team, error)
}

var _ repositories.TeamRepository = (*FakeTeamRepo)(nil)

func (f *FakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, id)
	}
	return nil, repositories.ErrTeamNotFound
}

func (f *FakeTeamRepo) List(ctx context.Context, created models.CreatedRange) ([]*models.Team, error) {
	if f.ListFunc != nil {
		return f.ListFunc(ctx, created)
	}
	return nil, nil
}
