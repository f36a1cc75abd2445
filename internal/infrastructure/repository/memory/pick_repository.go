package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/nfl-pickem/internal/domain/pick"
)

type PickRepository struct {
	acc accessor
}

func (r *PickRepository) Upsert(_ context.Context, p pick.Pick) (pick.Pick, error) {
	err := r.acc.write(func(d *dataset) error {
		key := pickKey{userID: p.UserID, matchID: p.MatchID}
		if existing, ok := d.picks[key]; ok {
			p.ID = existing.ID
		} else {
			p.ID = d.nextID("user_picks")
		}
		d.picks[key] = p
		return nil
	})
	return p, err
}

func (r *PickRepository) ListByUser(_ context.Context, userID int64, matchIDs []int64) ([]pick.Pick, error) {
	var out []pick.Pick
	r.acc.read(func(d *dataset) {
		for _, matchID := range matchIDs {
			if p, ok := d.picks[pickKey{userID: userID, matchID: matchID}]; ok {
				out = append(out, p)
			}
		}
	})
	return out, nil
}

func (r *PickRepository) ListByMatches(_ context.Context, matchIDs []int64) ([]pick.Pick, error) {
	wanted := make(map[int64]struct{}, len(matchIDs))
	for _, id := range matchIDs {
		wanted[id] = struct{}{}
	}
	var out []pick.Pick
	r.acc.read(func(d *dataset) {
		for key, p := range d.picks {
			if _, ok := wanted[key.matchID]; ok {
				out = append(out, p)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
