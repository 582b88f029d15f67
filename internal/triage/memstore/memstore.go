// Package memstore provides an in-memory implementation of triage.Store.
package memstore

import (
	"context"
	"sync"

	"github.com/linnemanlabs/sentinelle/internal/triage"
)

// Store holds triage results in memory. Suitable for dev/testing.
type Store struct {
	mu      sync.RWMutex
	results map[string]*triage.Result // prediction ID -> result
	order   []string                  // insertion order, oldest first
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{
		results: make(map[string]*triage.Result),
	}
}

// Get retrieves a triage result by its ID. Returns a copy.
func (s *Store) Get(_ context.Context, id string) (*triage.Result, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[id]
	if !ok {
		return nil, false, nil
	}
	cp := *r
	return &cp, true, nil
}

// GetByPatient retrieves every result for a patient, newest first.
func (s *Store) GetByPatient(_ context.Context, patientID string) ([]*triage.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*triage.Result
	for i := len(s.order) - 1; i >= 0; i-- {
		r := s.results[s.order[i]]
		if r.PatientID == patientID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Put stores a copy of the triage result. Results are immutable, so a
// second Put with the same ID replaces rather than merges.
func (s *Store) Put(_ context.Context, r *triage.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.results[r.ID]; !exists {
		s.order = append(s.order, r.ID)
	}
	cp := *r
	s.results[r.ID] = &cp
	return nil
}

// Recent returns the latest results, newest first.
func (s *Store) Recent(_ context.Context, limit int) ([]*triage.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.order) {
		limit = len(s.order)
	}
	out := make([]*triage.Result, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		cp := *s.results[s.order[i]]
		out = append(out, &cp)
	}
	return out, nil
}
