package memory

import (
	"context"

	"github.com/riskibarqy/nfl-pickem/internal/domain/standing"
)

type StandingRepository struct {
	acc accessor
}

func (r *StandingRepository) Exists(_ context.Context, teamID int64, year int, week string) (bool, error) {
	found := false
	r.acc.read(func(d *dataset) {
		for _, s := range d.standings {
			if s.TeamID == teamID && s.Year == year && s.Week == week {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (r *StandingRepository) Create(_ context.Context, s standing.WeeklyTeamStanding) error {
	return r.acc.write(func(d *dataset) error {
		s.ID = d.nextID("weekly_team_standings")
		d.standings = append(d.standings, s)
		return nil
	})
}

func (r *StandingRepository) ListByWeek(_ context.Context, year int, week string) ([]standing.WeeklyTeamStanding, error) {
	var out []standing.WeeklyTeamStanding
	r.acc.read(func(d *dataset) {
		for _, s := range d.standings {
			if s.Year == year && s.Week == week {
				out = append(out, s)
			}
		}
	})
	return out, nil
}
