package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
	MatchStatusCancelled  MatchStatus = "cancelled"
	MatchStatusPostponed  MatchStatus = "postponed"
	MatchStatusForfeited  MatchStatus = "forfeited"
	MatchStatusBye        MatchStatus = "bye"
)

// IsValid reports whether s is one of the known match statuses.
func (s MatchStatus) IsValid() bool {
	switch s {
	case MatchStatusScheduled, MatchStatusInProgress, MatchStatusCompleted, MatchStatusCancelled,
		MatchStatusPostponed, MatchStatusForfeited, MatchStatusBye:
		return true
	}
	return false
}

// IsTerminal reports whether no further lifecycle transition is expected from s.
func (s MatchStatus) IsTerminal() bool {
	switch s {
	case MatchStatusCompleted, MatchStatusCancelled, MatchStatusForfeited, MatchStatusBye:
		return true
	}
	return false
}

// CarriesWinner reports whether a match in status s may hold a winner side.
func (s MatchStatus) CarriesWinner() bool {
	return s == MatchStatusCompleted || s == MatchStatusForfeited
}

const (
	SideOne = 1
	SideTwo = 2
)

// MatchSide is one participant slot of a match: either a team, or a player
// with an optional doubles partner.
type MatchSide struct {
	TeamID    *int `json:"team_id,omitempty"`
	PlayerID  *int `json:"player_id,omitempty"`
	PartnerID *int `json:"partner_id,omitempty"`
}

func (s MatchSide) IsEmpty() bool {
	return s.TeamID == nil && s.PlayerID == nil && s.PartnerID == nil
}

// HasPlayer reports whether playerID plays on this side, as main player or partner.
func (s MatchSide) HasPlayer(playerID int) bool {
	return (s.PlayerID != nil && *s.PlayerID == playerID) || (s.PartnerID != nil && *s.PartnerID == playerID)
}

func (s MatchSide) HasTeam(teamID int) bool {
	return s.TeamID != nil && *s.TeamID == teamID
}

type Match struct {
	ID           int         `json:"id"`
	TournamentID int         `json:"tournament_id"`
	CategoryID   int         `json:"category_id"`
	Side1        MatchSide   `json:"side1"`
	Side2        MatchSide   `json:"side2"`
	Status       MatchStatus `json:"status"`
	ScheduledAt  *time.Time  `json:"scheduled_at,omitempty"`
	ActualStart  *time.Time  `json:"actual_start,omitempty"`
	ActualEnd    *time.Time  `json:"actual_end,omitempty"`
	WinnerSide   *int        `json:"winner_side,omitempty"`
	IsDraw       bool        `json:"is_draw"`
	Notes        *string     `json:"notes,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Side returns the slot for side 1 or 2.
func (m *Match) Side(n int) MatchSide {
	if n == SideTwo {
		return m.Side2
	}
	return m.Side1
}

// PlayerSide returns the side playerID plays on, or 0.
func (m *Match) PlayerSide(playerID int) int {
	switch {
	case m.Side1.HasPlayer(playerID):
		return SideOne
	case m.Side2.HasPlayer(playerID):
		return SideTwo
	}
	return 0
}

// TeamSide returns the side teamID plays on, or 0.
func (m *Match) TeamSide(teamID int) int {
	switch {
	case m.Side1.HasTeam(teamID):
		return SideOne
	case m.Side2.HasTeam(teamID):
		return SideTwo
	}
	return 0
}

// ListMatchesFilter narrows match listings. Zero values mean "any".
type ListMatchesFilter struct {
	TournamentID int
	CategoryID   *int
	Status       *MatchStatus
	Statuses     []MatchStatus
	PlayerID     int
	TeamID       int
	Limit        int
	Offset       int
}

// BulkItemResult reports the outcome of one item of a non-transactional bulk
// operation. Index is the item's position in the request, so failed items
// without a stored ID can still be told apart.
type BulkItemResult struct {
	Index     int    `json:"index"`
	ID        int    `json:"id"`
	SetNumber int    `json:"set_number,omitempty"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

type BulkResult struct {
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Items     []BulkItemResult `json:"items"`
}

// Add records the next item's outcome and returns it for further annotation.
func (r *BulkResult) Add(id int, err error) *BulkItemResult {
	item := BulkItemResult{Index: len(r.Items), ID: id, OK: err == nil}
	if err != nil {
		item.Error = err.Error()
		r.Failed++
	} else {
		r.Succeeded++
	}
	r.Items = append(r.Items, item)
	return &r.Items[len(r.Items)-1]
}
