package services

import (
	"slices"

	"github.com/Dosada05/tournament-stats/models"
)

type standingRow struct {
	key             models.StandingKey
	participantType models.ParticipantType
	won             int
	lost            int
	drawn           int
	setsWon         int
	setsLost        int
	gamesWon        int
	gamesLost       int
	bonus           int
	penalty         int
	points          int
	position        int
}

func (r *standingRow) goalDifference() int { return r.gamesWon - r.gamesLost }

// toUpdate leaves bonus, penalty and elimination untouched; those belong to the organizers.
func (r *standingRow) toUpdate() models.StandingUpdate {
	gd := r.goalDifference()
	return models.StandingUpdate{
		TournamentID:    r.key.TournamentID,
		CategoryID:      r.key.CategoryID,
		ParticipantID:   r.key.ParticipantID,
		ParticipantType: r.participantType,
		Points:          intPtr(r.points),
		MatchesWon:      intPtr(r.won),
		MatchesLost:     intPtr(r.lost),
		MatchesDrawn:    intPtr(r.drawn),
		SetsWon:         intPtr(r.setsWon),
		SetsLost:        intPtr(r.setsLost),
		GamesWon:        intPtr(r.gamesWon),
		GamesLost:       intPtr(r.gamesLost),
		GoalDifference:  &gd,
		Position:        intPtr(r.position),
	}
}

// sideParticipant resolves the standings participant of a match side: the
// team when there is one, else the main player.
func sideParticipant(side models.MatchSide) (int, models.ParticipantType, bool) {
	switch {
	case side.TeamID != nil:
		return *side.TeamID, models.ParticipantTeam, true
	case side.PlayerID != nil:
		return *side.PlayerID, models.ParticipantPlayer, true
	}
	return 0, "", false
}

func registrationParticipant(reg *models.TournamentRegistration) (int, models.ParticipantType, bool) {
	switch {
	case reg.TeamID != nil:
		return *reg.TeamID, models.ParticipantTeam, true
	case reg.PlayerID != nil:
		return *reg.PlayerID, models.ParticipantPlayer, true
	}
	return 0, "", false
}

// buildStandingsTable folds decided matches into one row per participant.
// Approved registrations without a decided match get an empty row. Forfeits
// count as a win and a loss without set or game totals.
func buildStandingsTable(
	tournamentID, storedCategory int,
	categoryFilter *int,
	matches []*models.Match,
	results map[int][]*models.MatchResult,
	registrations []*models.TournamentRegistration,
	existing []*models.TournamentStanding,
	scheme models.PointsScheme,
) []*standingRow {
	rows := make(map[int]*standingRow)
	row := func(id int, pt models.ParticipantType) *standingRow {
		r, ok := rows[id]
		if !ok {
			r = &standingRow{
				key:             models.StandingKey{TournamentID: tournamentID, CategoryID: storedCategory, ParticipantID: id},
				participantType: pt,
			}
			rows[id] = r
		}
		return r
	}

	for _, reg := range registrations {
		if !reg.IsApproved() {
			continue
		}
		if categoryFilter != nil && reg.CategoryID != *categoryFilter {
			continue
		}
		if id, pt, ok := registrationParticipant(reg); ok {
			row(id, pt)
		}
	}

	for _, m := range matches {
		id1, pt1, ok1 := sideParticipant(m.Side1)
		id2, pt2, ok2 := sideParticipant(m.Side2)
		if !ok1 || !ok2 {
			continue
		}
		r1, r2 := row(id1, pt1), row(id2, pt2)

		if m.Status == models.MatchStatusForfeited {
			if m.WinnerSide == nil {
				continue
			}
			if *m.WinnerSide == models.SideOne {
				r1.won++
				r2.lost++
			} else {
				r2.won++
				r1.lost++
			}
			continue
		}
		if m.Status != models.MatchStatusCompleted {
			continue
		}

		switch {
		case m.IsDraw:
			r1.drawn++
			r2.drawn++
		case m.WinnerSide != nil && *m.WinnerSide == models.SideOne:
			r1.won++
			r2.lost++
		case m.WinnerSide != nil && *m.WinnerSide == models.SideTwo:
			r2.won++
			r1.lost++
		default:
			// completed without an outcome; nothing to count
			continue
		}

		summary := models.SummarizeResults(m.ID, results[m.ID])
		r1.setsWon += summary.Side1SetsWon
		r1.setsLost += summary.Side2SetsWon
		r2.setsWon += summary.Side2SetsWon
		r2.setsLost += summary.Side1SetsWon
		r1.gamesWon += summary.Side1TotalPoints
		r1.gamesLost += summary.Side2TotalPoints
		r2.gamesWon += summary.Side2TotalPoints
		r2.gamesLost += summary.Side1TotalPoints
	}

	for _, s := range existing {
		if r, ok := rows[s.ParticipantID]; ok && s.CategoryID == storedCategory {
			r.bonus = s.BonusPoints
			r.penalty = s.PenaltyPoints
		}
	}

	table := make([]*standingRow, 0, len(rows))
	for _, r := range rows {
		r.points = r.won*scheme.Win + r.drawn*scheme.Draw + r.lost*scheme.Loss + r.bonus - r.penalty
		table = append(table, r)
	}
	slices.SortFunc(table, func(a, b *standingRow) int {
		return compareTableOrder(
			tableOrder{a.points, a.goalDifference(), a.gamesWon, a.key.ParticipantID},
			tableOrder{b.points, b.goalDifference(), b.gamesWon, b.key.ParticipantID},
		)
	})
	for i, r := range table {
		r.position = i + 1
	}
	return table
}
