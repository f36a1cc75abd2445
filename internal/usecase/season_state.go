package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/nfl-pickem/internal/domain/season"
)

// SeasonState holds the current (year, week) for the whole process. It is
// loaded once from storage at startup and moved forward by the reconciler
// after each committed run. Before the first ingest it is empty and the
// first reconciled week initializes it.
type SeasonState struct {
	mu      sync.RWMutex
	current season.Pointer
	set     bool
}

func NewSeasonState() *SeasonState {
	return &SeasonState{}
}

// Init loads the persisted pointer. A missing pointer leaves the state empty.
func (s *SeasonState) Init(ctx context.Context, repo season.Repository) error {
	p, ok, err := repo.GetCurrent(ctx)
	if err != nil {
		return fmt.Errorf("load current season pointer: %w", err)
	}
	if ok {
		s.publish(p)
	}
	return nil
}

func (s *SeasonState) Current() (season.Pointer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.set
}

// Require returns the pointer or ErrNotFound before the first ingest.
func (s *SeasonState) Require() (season.Pointer, error) {
	p, ok := s.Current()
	if !ok {
		return season.Pointer{}, fmt.Errorf("%w: no season has been ingested yet", ErrNotFound)
	}
	return p, nil
}

func (s *SeasonState) publish(p season.Pointer) {
	s.mu.Lock()
	s.current = p
	s.set = true
	s.mu.Unlock()
}
