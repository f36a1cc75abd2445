package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/nfl-pickem/internal/domain/season"
)

type SeasonRepository struct {
	acc accessor
}

// LockRun is a no-op: units of work on the memory store already run one at a time.
func (r *SeasonRepository) LockRun(_ context.Context) error {
	return nil
}

func (r *SeasonRepository) GetCurrent(_ context.Context) (season.Pointer, bool, error) {
	var (
		out   season.Pointer
		found bool
	)
	r.acc.read(func(d *dataset) {
		if d.pointer != nil {
			out, found = *d.pointer, true
		}
	})
	return out, found, nil
}

func (r *SeasonRepository) SetCurrent(_ context.Context, p season.Pointer) error {
	return r.acc.write(func(d *dataset) error {
		d.pointer = &p
		return nil
	})
}

func (r *SeasonRepository) HasEntry(_ context.Context, year int, week string) (bool, error) {
	found := false
	r.acc.read(func(d *dataset) {
		for _, e := range d.entries {
			if e.Year == year && e.Week == week {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (r *SeasonRepository) AddEntry(_ context.Context, year int, week string) error {
	return r.acc.write(func(d *dataset) error {
		for _, e := range d.entries {
			if e.Year == year && e.Week == week {
				return nil
			}
		}
		d.entries = append(d.entries, season.Entry{ID: d.nextID("season_index"), Year: year, Week: week})
		return nil
	})
}

func (r *SeasonRepository) ListYears(_ context.Context) ([]int, error) {
	seen := make(map[int]struct{})
	var out []int
	r.acc.read(func(d *dataset) {
		for _, e := range d.entries {
			if _, ok := seen[e.Year]; ok {
				continue
			}
			seen[e.Year] = struct{}{}
			out = append(out, e.Year)
		}
	})
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out, nil
}

func (r *SeasonRepository) ListWeeks(_ context.Context, year int) ([]string, error) {
	var out []string
	r.acc.read(func(d *dataset) {
		for _, e := range d.entries {
			if e.Year == year {
				out = append(out, e.Week)
			}
		}
	})
	return out, nil
}
