package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/riskibarqy/nfl-pickem/internal/domain/team"
)

type TeamRepository struct {
	acc accessor
}

func (r *TeamRepository) List(_ context.Context) ([]team.Team, error) {
	var out []team.Team
	r.acc.read(func(d *dataset) {
		out = append([]team.Team(nil), d.teams...)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *TeamRepository) GetByID(_ context.Context, id int64) (team.Team, bool, error) {
	var (
		out   team.Team
		found bool
	)
	r.acc.read(func(d *dataset) {
		for _, t := range d.teams {
			if t.ID == id {
				out, found = t, true
				return
			}
		}
	})
	return out, found, nil
}

func (r *TeamRepository) FindByName(_ context.Context, name string) (team.Team, bool, error) {
	var (
		out   team.Team
		found bool
	)
	r.acc.read(func(d *dataset) {
		out, found = findTeam(d.teams, name)
	})
	return out, found, nil
}

func (r *TeamRepository) Seed(_ context.Context, teams []team.Team) (int, error) {
	added := 0
	err := r.acc.write(func(d *dataset) error {
		for _, t := range teams {
			if _, exists := findTeam(d.teams, t.Name); exists {
				continue
			}
			t.ID = d.nextID("teams")
			t.Name = strings.TrimSpace(t.Name)
			if t.LogoFile == "" {
				t.LogoFile = team.LogoFileFor(t.Name)
			}
			d.teams = append(d.teams, t)
			added++
		}
		return nil
	})
	return added, err
}

func findTeam(teams []team.Team, name string) (team.Team, bool) {
	name = strings.TrimSpace(name)
	for _, t := range teams {
		if t.Name == name {
			return t, true
		}
	}
	return team.Team{}, false
}
