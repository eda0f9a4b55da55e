package server

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/graphmorph/pkg/pipeline"
)

// Default store limits.
const (
	DefaultRunTTL  = time.Hour
	DefaultMaxRuns = 64
)

// Run is a stored pipeline result.
type Run struct {
	Result    *pipeline.Result
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired reports whether the run has outlived its TTL.
func (r *Run) IsExpired(now time.Time) bool { return now.After(r.ExpiresAt) }

// Store keeps recent runs in memory. It is safe for concurrent use.
// When full, the oldest run is evicted.
type Store struct {
	mu    sync.RWMutex
	runs  map[string]*Run
	order []string // run IDs, oldest first
	ttl   time.Duration
	max   int
	now   func() time.Time
}

// NewStore creates a store. Non-positive arguments select the defaults.
func NewStore(ttl time.Duration, max int) *Store {
	if ttl <= 0 {
		ttl = DefaultRunTTL
	}
	if max <= 0 {
		max = DefaultMaxRuns
	}
	return &Store{runs: make(map[string]*Run), ttl: ttl, max: max, now: time.Now}
}

// Get returns a run by ID. Expired runs are reported as missing.
func (s *Store) Get(_ context.Context, id string) (*Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok || run.IsExpired(s.now()) {
		return nil, false
	}
	return run, true
}

// Set stores a result under its run ID.
func (s *Store) Set(_ context.Context, res *pipeline.Result) *Run {
	now := s.now()
	run := &Run{Result: res, CreatedAt: now, ExpiresAt: now.Add(s.ttl)}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[res.RunID]; !exists {
		s.order = append(s.order, res.RunID)
	}
	s.runs[res.RunID] = run
	for len(s.order) > s.max {
		delete(s.runs, s.order[0])
		s.order = s.order[1:]
	}
	return run
}

// Delete removes a run.
func (s *Store) Delete(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(id)
}

// Cleanup removes expired runs and returns how many were removed.
func (s *Store) Cleanup(_ context.Context) int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, run := range s.runs {
		if run.IsExpired(now) {
			s.remove(id)
			n++
		}
	}
	return n
}

// Len returns the number of stored runs, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

func (s *Store) remove(id string) {
	if _, ok := s.runs[id]; !ok {
		return
	}
	delete(s.runs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
