package models

import "time"

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// StatisticsFilters narrows statistics queries. The zero value of every field
// means "no restriction"; Limit and Offset are normalized by Normalize.
type StatisticsFilters struct {
	Sport        string
	TournamentID int
	From         time.Time
	To           time.Time
	Limit        int
	Offset       int
}

func DefaultStatisticsFilters() StatisticsFilters {
	return StatisticsFilters{Limit: DefaultPageLimit}
}

// Normalize clamps Limit to [1, MaxPageLimit] (0 becomes the default) and Offset to >= 0.
func (f StatisticsFilters) Normalize() StatisticsFilters {
	if f.Limit == 0 {
		f.Limit = DefaultPageLimit
	}
	f.Limit = ClampLimit(f.Limit)
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// ClampLimit bounds a page size to [1, MaxPageLimit].
func ClampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxPageLimit {
		return MaxPageLimit
	}
	return limit
}

// MatchesTournament reports whether t passes the sport and tournament restrictions.
func (f StatisticsFilters) MatchesTournament(t *Tournament) bool {
	if t == nil {
		return f.Sport == "" && f.TournamentID == 0
	}
	if f.TournamentID != 0 && t.ID != f.TournamentID {
		return false
	}
	if f.Sport != "" && t.Sport != f.Sport {
		return false
	}
	return true
}

// InRange reports whether ts falls inside [From, To]. Zero bounds are open.
func (f StatisticsFilters) InRange(ts time.Time) bool {
	if !f.From.IsZero() && ts.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && ts.After(f.To) {
		return false
	}
	return true
}

// IsZero reports whether the filters restrict nothing besides paging.
func (f StatisticsFilters) IsZero() bool {
	return f.Sport == "" && f.TournamentID == 0 && f.From.IsZero() && f.To.IsZero()
}

// CreatedRange is a half-open [From, To) window on creation time. Zero bounds are open.
type CreatedRange struct {
	From time.Time
	To   time.Time
}
