package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/nfl-pickem/internal/domain/match"
)

type MatchRepository struct {
	acc accessor
}

func (r *MatchRepository) GetByID(_ context.Context, id int64) (match.Match, bool, error) {
	return r.find(func(m match.Match) bool { return m.ID == id })
}

func (r *MatchRepository) FindByKickoff(_ context.Context, team1ID, team2ID int64, kickoff time.Time) (match.Match, bool, error) {
	minute := kickoff.Truncate(time.Minute)
	return r.find(func(m match.Match) bool {
		return m.Team1ID == team1ID && m.Team2ID == team2ID && m.KickoffAt.Truncate(time.Minute).Equal(minute)
	})
}

func (r *MatchRepository) FindOnDate(_ context.Context, team1ID, team2ID int64, day time.Time) (match.Match, bool, error) {
	y, mo, d := day.Date()
	return r.find(func(m match.Match) bool {
		my, mmo, md := m.KickoffAt.Date()
		return m.Team1ID == team1ID && m.Team2ID == team2ID && my == y && mmo == mo && md == d
	})
}

func (r *MatchRepository) find(pred func(match.Match) bool) (match.Match, bool, error) {
	var (
		out   match.Match
		found bool
	)
	r.acc.read(func(d *dataset) {
		for _, m := range d.matches {
			if pred(m) {
				out, found = m, true
				return
			}
		}
	})
	return out, found, nil
}

func (r *MatchRepository) ListByWeek(_ context.Context, seasonYear int, week string) ([]match.Match, error) {
	var out []match.Match
	r.acc.read(func(d *dataset) {
		for _, m := range d.matches {
			if m.Season == seasonYear && m.Week == week {
				out = append(out, m)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].KickoffAt.Before(out[j].KickoffAt) })
	return out, nil
}

func (r *MatchRepository) Create(_ context.Context, m match.Match) (match.Match, error) {
	err := r.acc.write(func(d *dataset) error {
		for _, existing := range d.matches {
			if existing.Team1ID == m.Team1ID && existing.Team2ID == m.Team2ID && existing.KickoffAt.Equal(m.KickoffAt) {
				return fmt.Errorf("match %d vs %d at %s already exists", m.Team1ID, m.Team2ID, m.KickoffAt)
			}
		}
		m.ID = d.nextID("matches")
		d.matches = append(d.matches, m)
		return nil
	})
	return m, err
}

func (r *MatchRepository) GetResult(_ context.Context, matchID int64) (match.Result, bool, error) {
	var (
		out   match.Result
		found bool
	)
	r.acc.read(func(d *dataset) {
		out, found = d.results[matchID]
	})
	return out, found, nil
}

func (r *MatchRepository) ListResults(_ context.Context, matchIDs []int64) ([]match.Result, error) {
	out := make([]match.Result, 0, len(matchIDs))
	r.acc.read(func(d *dataset) {
		for _, id := range matchIDs {
			if res, ok := d.results[id]; ok {
				out = append(out, res)
			}
		}
	})
	return out, nil
}

func (r *MatchRepository) CreateResult(_ context.Context, res match.Result) (match.Result, error) {
	err := r.acc.write(func(d *dataset) error {
		if _, exists := d.results[res.MatchID]; exists {
			return fmt.Errorf("result for match %d already exists", res.MatchID)
		}
		res.ID = d.nextID("match_results")
		d.results[res.MatchID] = res
		return nil
	})
	return res, err
}
