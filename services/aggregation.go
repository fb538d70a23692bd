package services

import (
	"time"

	"github.com/Dosada05/tournament-stats/models"
)

// entityTally accumulates the raw figures of one player or team before they
// are turned into statistics.
type entityTally struct {
	totalMatches int
	matchesWon   int
	matchesLost  int
	tournaments  map[int]struct{}
	earnings     float64
	lastActive   time.Time
}

func newEntityTally() *entityTally {
	return &entityTally{tournaments: make(map[int]struct{})}
}

func (t *entityTally) winRate() float64 {
	return percentage(t.matchesWon, t.totalMatches)
}

// tournamentsWon approximates championships with completed-match wins.
func (t *entityTally) tournamentsWon() int {
	return t.matchesWon
}

func (t *entityTally) rankingPoints() int {
	return rankingPoints(t.tournamentsWon(), t.matchesWon)
}

func (t *entityTally) lastActiveOr(createdAt time.Time) time.Time {
	if t == nil || t.lastActive.IsZero() {
		return createdAt
	}
	return t.lastActive
}

type tallies map[int]*entityTally

func (ts tallies) get(id int) *entityTally {
	t, ok := ts[id]
	if !ok {
		t = newEntityTally()
		ts[id] = t
	}
	return t
}

// lookup never returns nil so callers can read zero figures for inactive entities.
func (ts tallies) lookup(id int) *entityTally {
	if t, ok := ts[id]; ok {
		return t
	}
	return newEntityTally()
}

// sideMembers lists the entity ids a match side or registration stands for.
type sideMembers func(side models.MatchSide) []int

func playerMembers(side models.MatchSide) []int {
	ids := make([]int, 0, 2)
	if side.PlayerID != nil {
		ids = append(ids, *side.PlayerID)
	}
	if side.PartnerID != nil && (side.PlayerID == nil || *side.PartnerID != *side.PlayerID) {
		ids = append(ids, *side.PartnerID)
	}
	return ids
}

func teamMembers(side models.MatchSide) []int {
	if side.TeamID == nil {
		return nil
	}
	return []int{*side.TeamID}
}

func registrationSide(reg *models.TournamentRegistration) models.MatchSide {
	return models.MatchSide{TeamID: reg.TeamID, PlayerID: reg.PlayerID, PartnerID: reg.PartnerID}
}

// tallyMatches counts completed matches per entity. A match is won when its
// winner side is the entity's side and lost when another side won; draws
// and matches without a winner only add to the total.
func tallyMatches(into tallies, matches []*models.Match, members sideMembers) {
	for _, m := range matches {
		if m.Status != models.MatchStatusCompleted {
			continue
		}
		for _, side := range []int{models.SideOne, models.SideTwo} {
			for _, id := range members(m.Side(side)) {
				t := into.get(id)
				t.totalMatches++
				if m.WinnerSide == nil {
					continue
				}
				if *m.WinnerSide == side {
					t.matchesWon++
				} else {
					t.matchesLost++
				}
			}
		}
	}
}

// tallyRegistrations adds earnings, tournaments played and activity from
// approved registrations.
func tallyRegistrations(into tallies, registrations []*models.TournamentRegistration, members sideMembers) {
	for _, reg := range registrations {
		if !reg.IsApproved() {
			continue
		}
		for _, id := range members(registrationSide(reg)) {
			t := into.get(id)
			t.earnings += reg.PaymentAmount
			t.tournaments[reg.TournamentID] = struct{}{}
			if reg.UpdatedAt.After(t.lastActive) {
				t.lastActive = reg.UpdatedAt
			}
		}
	}
}

func buildPlayerStatistics(playerID int, createdAt time.Time, t *entityTally) models.PlayerStatistics {
	return models.PlayerStatistics{
		PlayerID:          playerID,
		TotalMatches:      t.totalMatches,
		MatchesWon:        t.matchesWon,
		MatchesLost:       t.matchesLost,
		WinRate:           t.winRate(),
		TournamentsPlayed: len(t.tournaments),
		TournamentsWon:    t.tournamentsWon(),
		TotalEarnings:     round2(t.earnings),
		RankingPoints:     t.rankingPoints(),
		LastActive:        t.lastActiveOr(createdAt),
	}
}

func buildTeamStatistics(teamID int, createdAt time.Time, t *entityTally) models.TeamStatistics {
	return models.TeamStatistics{
		TeamID:            teamID,
		TotalMatches:      t.totalMatches,
		MatchesWon:        t.matchesWon,
		MatchesLost:       t.matchesLost,
		WinRate:           t.winRate(),
		TournamentsPlayed: len(t.tournaments),
		TournamentsWon:    t.tournamentsWon(),
		TotalEarnings:     round2(t.earnings),
		RankingPoints:     t.rankingPoints(),
		LastActive:        t.lastActiveOr(createdAt),
	}
}

// buildTournamentStatistics expects the matches and registrations of t only.
func buildTournamentStatistics(t *models.Tournament, matches []*models.Match, registrations []*models.TournamentRegistration) models.TournamentStatistics {
	stats := models.TournamentStatistics{
		TournamentID: t.ID,
		Name:         t.Name,
		Sport:        t.Sport,
		Status:       t.Status,
		PrizePool:    t.PrizePool,
		CreatedAt:    t.CreatedAt,
		TotalMatches: len(matches),
	}
	for _, m := range matches {
		if m.Status == models.MatchStatusCompleted {
			stats.CompletedMatches++
		}
	}
	stats.CompletionRate = percentage(stats.CompletedMatches, stats.TotalMatches)

	players := make(map[int]struct{})
	teams := make(map[int]struct{})
	var revenue float64
	for _, reg := range registrations {
		if !reg.IsApproved() {
			continue
		}
		stats.TotalRegistrations++
		switch {
		case reg.IsPlayerOnly():
			stats.PlayerRegistrations++
		case reg.IsTeamOnly():
			stats.TeamRegistrations++
		}
		for _, id := range playerMembers(registrationSide(reg)) {
			players[id] = struct{}{}
		}
		if reg.TeamID != nil {
			teams[*reg.TeamID] = struct{}{}
		}
		revenue += reg.PaymentAmount
	}
	stats.TotalParticipants = len(players) + len(teams)
	stats.TotalRevenue = round2(revenue)
	return stats
}

// statsScope applies StatisticsFilters to raw rows. Tournament restrictions
// need the tournament of each row; sport lookups go through sports.
type statsScope struct {
	filters models.StatisticsFilters
	sports  map[int]string
}

func (s statsScope) tournamentAllowed(tournamentID int) bool {
	if s.filters.TournamentID != 0 && tournamentID != s.filters.TournamentID {
		return false
	}
	if s.filters.Sport != "" && s.sports[tournamentID] != s.filters.Sport {
		return false
	}
	return true
}

// matchTime is the instant a match counts at: its end, else its schedule, else its creation.
func matchTime(m *models.Match) time.Time {
	switch {
	case m.ActualEnd != nil:
		return *m.ActualEnd
	case m.ScheduledAt != nil:
		return *m.ScheduledAt
	}
	return m.CreatedAt
}

func (s statsScope) matches(in []*models.Match) []*models.Match {
	if s.filters.IsZero() {
		return in
	}
	out := make([]*models.Match, 0, len(in))
	for _, m := range in {
		if s.tournamentAllowed(m.TournamentID) && s.filters.InRange(matchTime(m)) {
			out = append(out, m)
		}
	}
	return out
}

func (s statsScope) registrations(in []*models.TournamentRegistration) []*models.TournamentRegistration {
	if s.filters.IsZero() {
		return in
	}
	out := make([]*models.TournamentRegistration, 0, len(in))
	for _, r := range in {
		if s.tournamentAllowed(r.TournamentID) && s.filters.InRange(r.CreatedAt) {
			out = append(out, r)
		}
	}
	return out
}
