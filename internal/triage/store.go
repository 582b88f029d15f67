package triage

import "context"

// Store is the persistence interface for triage results.
type Store interface {
	Get(ctx context.Context, id string) (*Result, bool, error)
	GetByPatient(ctx context.Context, patientID string) ([]*Result, error)
	Put(ctx context.Context, result *Result) error
	Recent(ctx context.Context, limit int) ([]*Result, error)
}
