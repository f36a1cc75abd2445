package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/nfl-pickem/internal/domain/jobrun"
)

// JobRunRepository keeps the run ledger outside the unit of work so a
// rolled back run is still recorded.
type JobRunRepository struct {
	mu   sync.RWMutex
	runs map[string]jobrun.Run
}

func NewJobRunRepository() *JobRunRepository {
	return &JobRunRepository{runs: make(map[string]jobrun.Run)}
}

func (r *JobRunRepository) Upsert(_ context.Context, run jobrun.Run) error {
	r.mu.Lock()
	r.runs[run.ID] = run
	r.mu.Unlock()
	return nil
}

func (r *JobRunRepository) ListRecent(_ context.Context, limit int) ([]jobrun.Run, error) {
	r.mu.RLock()
	out := make([]jobrun.Run, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, run)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
