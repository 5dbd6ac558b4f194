// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"time"

	"github.com/danielhkuo/urna/lifecycle"
	"github.com/danielhkuo/urna/models"
)

// Participation reports, for every voter who can vote, which of the
// currently active elections they have voted in.
func Participation(voters []models.User, elections []models.Election, now time.Time, loc *time.Location) models.ParticipationReport {
	var active []string
	for _, e := range elections {
		if lifecycle.Evaluate(e.FechaInicio, e.FechaFin, now, loc) == models.StatusActive {
			active = append(active, e.ID)
		}
	}

	report := models.ParticipationReport{
		ActiveElections: make([]string, 0, len(active)),
		Voters:          []models.VoterParticipation{},
	}
	report.ActiveElections = append(report.ActiveElections, active...)

	for _, u := range voters {
		if !u.Rol.CanVote() {
			continue
		}
		vp := models.VoterParticipation{
			VoterID:     u.ID,
			Codigo:      u.Codigo,
			FullName:    u.FullName(),
			Curso:       u.Curso,
			Paralelo:    u.Paralelo,
			PerElection: make([]models.ElectionParticipation, 0, len(active)),
		}
		for _, id := range active {
			voted := u.HasVotedIn(id)
			if !voted {
				vp.MissingVotes++
			}
			vp.PerElection = append(vp.PerElection, models.ElectionParticipation{ElectionID: id, HasVoted: voted})
		}
		if vp.MissingVotes > 0 {
			report.VotersMissingVotes++
		}
		report.Voters = append(report.Voters, vp)
	}
	report.TotalVoters = len(report.Voters)

	return report
}
