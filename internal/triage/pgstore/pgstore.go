// Package pgstore provides a PostgreSQL implementation of triage.Store.
package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/sentinelle/internal/patient"
	"github.com/linnemanlabs/sentinelle/internal/rules"
	"github.com/linnemanlabs/sentinelle/internal/triage"
)

var tracer = otel.Tracer("github.com/linnemanlabs/sentinelle/internal/triage/pgstore")

//go:embed schema.sql
var schema string

// Store persists triage results in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema on the given pool and returns a ready Store. The
// caller owns the pool's lifecycle.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

const predictionColumns = `id, patient_id, gravity, french_level, category, confidence, quality,
	red_flags, missing_features, recommendations, care_delay, orientation,
	ml_available, ml_error, ml_gravity, model_version, ml_latency_ms,
	justification, justification_source, gen_latency_ms, created_at`

// Get retrieves a triage result by ID.
func (s *Store) Get(ctx context.Context, id string) (*triage.Result, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Get", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + predictionColumns + ` FROM triage_predictions WHERE id = $1`
	r, err := scanResult(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if r == nil {
		return nil, false, nil
	}
	return r, true, nil
}

// GetByPatient retrieves every result for a patient, newest first.
func (s *Store) GetByPatient(ctx context.Context, patientID string) ([]*triage.Result, error) {
	ctx, span := tracer.Start(ctx, "pgstore.GetByPatient", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + predictionColumns + ` FROM triage_predictions
		WHERE patient_id = $1 ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, query, patientID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query by patient: %w", err)
	}
	defer rows.Close()
	return collectResults(rows, span)
}

// Recent returns the latest results, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*triage.Result, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Recent", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + predictionColumns + ` FROM triage_predictions
		ORDER BY created_at DESC LIMIT $1`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()
	return collectResults(rows, span)
}

// Put inserts a triage result. Results are immutable, so a replay of the
// same ID replaces the row wholesale instead of merging.
func (s *Store) Put(ctx context.Context, r *triage.Result) error {
	ctx, span := tracer.Start(ctx, "pgstore.Put", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPSERT"),
	))
	defer span.End()

	redFlags, err := json.Marshal(r.RedFlags)
	if err != nil {
		return fmt.Errorf("marshal red flags: %w", err)
	}
	missing, err := json.Marshal(r.MissingFeatures)
	if err != nil {
		return fmt.Errorf("marshal missing features: %w", err)
	}
	recs, err := json.Marshal(r.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}

	query := `INSERT INTO triage_predictions (` + predictionColumns + `)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
	ON CONFLICT (id) DO UPDATE SET
		patient_id           = EXCLUDED.patient_id,
		gravity              = EXCLUDED.gravity,
		french_level         = EXCLUDED.french_level,
		category             = EXCLUDED.category,
		confidence           = EXCLUDED.confidence,
		quality              = EXCLUDED.quality,
		red_flags            = EXCLUDED.red_flags,
		missing_features     = EXCLUDED.missing_features,
		recommendations      = EXCLUDED.recommendations,
		care_delay           = EXCLUDED.care_delay,
		orientation          = EXCLUDED.orientation,
		ml_available         = EXCLUDED.ml_available,
		ml_error             = EXCLUDED.ml_error,
		ml_gravity           = EXCLUDED.ml_gravity,
		model_version        = EXCLUDED.model_version,
		ml_latency_ms        = EXCLUDED.ml_latency_ms,
		justification        = EXCLUDED.justification,
		justification_source = EXCLUDED.justification_source,
		gen_latency_ms       = EXCLUDED.gen_latency_ms,
		created_at           = EXCLUDED.created_at`

	_, err = s.pool.Exec(ctx, query,
		r.ID, r.PatientID, r.Gravity.String(), r.French.String(), r.Category,
		r.Confidence, string(r.Quality), redFlags, missing, recs,
		r.CareDelay, r.Orientation,
		r.MLAvailable, r.MLError, r.MLGravity, r.ModelVersion, r.MLLatency,
		r.Justification, r.JustificationSource, r.GenLatency,
		r.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upsert prediction: %w", err)
	}
	return nil
}

func collectResults(rows pgx.Rows, span trace.Span) ([]*triage.Result, error) {
	var out []*triage.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

func scanResult(row pgx.Row) (*triage.Result, error) {
	var (
		r        triage.Result
		gravity  string
		french   string
		quality  string
		redFlags []byte
		missing  []byte
		recs     []byte
	)
	err := row.Scan(
		&r.ID, &r.PatientID, &gravity, &french, &r.Category,
		&r.Confidence, &quality, &redFlags, &missing, &recs,
		&r.CareDelay, &r.Orientation,
		&r.MLAvailable, &r.MLError, &r.MLGravity, &r.ModelVersion, &r.MLLatency,
		&r.Justification, &r.JustificationSource, &r.GenLatency,
		&r.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan prediction: %w", err)
	}

	if r.Gravity, err = patient.ParseGravity(gravity); err != nil {
		return nil, fmt.Errorf("row %s: %w", r.ID, err)
	}
	if r.French, err = rules.ParseFrench(french); err != nil {
		return nil, fmt.Errorf("row %s: %w", r.ID, err)
	}
	r.Quality = triage.Quality(quality)

	if err := json.Unmarshal(redFlags, &r.RedFlags); err != nil {
		return nil, fmt.Errorf("unmarshal red flags: %w", err)
	}
	if err := json.Unmarshal(missing, &r.MissingFeatures); err != nil {
		return nil, fmt.Errorf("unmarshal missing features: %w", err)
	}
	if err := json.Unmarshal(recs, &r.Recommendations); err != nil {
		return nil, fmt.Errorf("unmarshal recommendations: %w", err)
	}
	return &r, nil
}
