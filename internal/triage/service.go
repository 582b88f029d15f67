package triage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/oklog/ulid/v2"

	"github.com/linnemanlabs/sentinelle/internal/feedback"
	"github.com/linnemanlabs/sentinelle/internal/features"
	"github.com/linnemanlabs/sentinelle/internal/justify"
	"github.com/linnemanlabs/sentinelle/internal/model"
	"github.com/linnemanlabs/sentinelle/internal/patient"
	"github.com/linnemanlabs/sentinelle/internal/rules"
)

// ErrUnknownPrediction marks feedback that references no stored result.
var ErrUnknownPrediction = errors.New("unknown prediction")

// Notifier pushes critical results to an external channel.
type Notifier interface {
	Send(ctx context.Context, result *Result) error
}

// Classifier is the ML capability the service depends on. Swapping the
// implementation must not touch anything else.
type Classifier interface {
	Predict(v features.Vector) (*model.Prediction, error)
	Reload(path string) error
	Manifest() (*model.Manifest, bool)
}

// Service is the business boundary for triage operations.
type Service struct {
	store      Store
	grader     *rules.Grader
	classifier Classifier
	justifier  *justify.Justifier
	feedback   *feedback.Log
	notifier   Notifier
	metrics    *Metrics
	logger     log.Logger
}

// NewService creates a new triage service. notifier and metrics may be nil.
func NewService(store Store, grader *rules.Grader, classifier Classifier, justifier *justify.Justifier, fb *feedback.Log, notifier Notifier, metrics *Metrics, logger log.Logger) *Service {
	return &Service{
		store:      store,
		grader:     grader,
		classifier: classifier,
		justifier:  justifier,
		feedback:   fb,
		notifier:   notifier,
		metrics:    metrics,
		logger:     logger,
	}
}

// Triage runs the full pipeline for one patient: validate, normalize,
// grade, classify, combine, justify, persist. Only validation failures
// abort; a degraded ML or justification path still yields a result,
// honestly labeled through prediction_quality and ml_error.
func (s *Service) Triage(ctx context.Context, req *patient.Request) (*Result, error) {
	start := time.Now()

	id := ulid.Make().String()
	p := req.ToPatient(id, time.Now().UTC())
	if err := patient.Validate(p); err != nil {
		if s.metrics != nil {
			s.metrics.ValidationFailures.Inc()
		}
		return nil, err
	}

	L := s.logger.With("prediction_id", id)

	vector, missing := features.Normalize(p)
	assessment := s.grader.Grade(p)

	mlStart := time.Now()
	pred, mlErr := s.predict(vector)
	mlElapsed := time.Since(mlStart)
	if mlErr != nil {
		L.Warn(ctx, "ml path degraded, rules only",
			"error", mlErr,
			"rule_gravity", assessment.Gravity.String(),
		)
	}

	d := combine(assessment, pred, missing)

	result := &Result{
		ID:              id,
		PatientID:       id,
		Gravity:         d.Gravity,
		French:          d.French,
		Category:        assessment.Category,
		Confidence:      d.Confidence,
		Quality:         d.Quality,
		RedFlags:        assessment.RedFlags,
		MissingFeatures: missing,
		Recommendations: assessment.Recommendations,
		CareDelay:       d.French.CareDelay(),
		Orientation:     d.French.Orientation(),
		MLAvailable:     pred != nil,
		MLLatency:       float64(mlElapsed.Microseconds()) / 1000,
		CreatedAt:       time.Now().UTC(),
	}
	if mlErr != nil {
		result.MLError = mlErr.Error()
	}
	if pred != nil {
		result.MLGravity = pred.Level.String()
		result.ModelVersion = pred.ModelVersion
	}

	genStart := time.Now()
	in := &justify.Input{
		Patient:     p,
		Gravity:     d.Gravity,
		French:      d.French,
		Category:    assessment.Category,
		RedFlags:    assessment.RedFlags,
		Confidence:  d.Confidence,
		MLAvailable: pred != nil,
	}
	if pred != nil {
		in.MLGravity = pred.Level
	}
	text, source := s.justifier.Generate(ctx, in)
	result.Justification = text
	result.JustificationSource = string(source)
	genElapsed := time.Since(genStart)
	result.GenLatency = float64(genElapsed.Microseconds()) / 1000

	// A store failure must not cost the caller the triage opinion; the
	// result is returned anyway and the gap shows up in logs.
	if err := s.store.Put(ctx, result); err != nil {
		L.Error(ctx, err, "failed to persist triage result")
	}

	s.observe(result, pred, source, time.Since(start))

	if s.notifier != nil && result.Gravity == patient.Rouge {
		go s.notifyCritical(result)
	}

	L.Info(ctx, "triage complete",
		"gravity", result.Gravity.String(),
		"french", result.French.String(),
		"quality", string(result.Quality),
		"confidence", result.Confidence,
		"ml_available", result.MLAvailable,
		"red_flags", len(result.RedFlags),
	)
	return result, nil
}

// predict shields the pipeline from the classifier. Any panic inside tree
// traversal is converted to an inference error so the rules path carries
// the triage alone.
func (s *Service) predict(v features.Vector) (pred *model.Prediction, err error) {
	defer func() {
		if r := recover(); r != nil {
			pred = nil
			err = fmt.Errorf("%w: panic: %v", model.ErrInference, r)
		}
	}()
	return s.classifier.Predict(v)
}

func (s *Service) notifyCritical(result *Result) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := s.notifier.Send(ctx, result); err != nil {
		s.logger.Error(ctx, err, "critical notification failed",
			"prediction_id", result.ID,
		)
	}
}

func (s *Service) observe(result *Result, pred *model.Prediction, source justify.Source, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.TriagesTotal.WithLabelValues(result.Gravity.String()).Inc()
	s.metrics.TriageDuration.Observe(elapsed.Seconds())
	s.metrics.QualityTotal.WithLabelValues(string(result.Quality)).Inc()
	s.metrics.JustifyDuration.WithLabelValues(string(source)).Observe(result.GenLatency / 1000)
	if pred != nil {
		s.metrics.MLLatency.Observe(result.MLLatency / 1000)
		if pred.Level != result.Gravity {
			s.metrics.MLDisagreements.Inc()
		}
	} else {
		s.metrics.MLErrorsTotal.Inc()
	}
}

// Get returns a stored triage result.
func (s *Service) Get(ctx context.Context, id string) (*Result, bool, error) {
	return s.store.Get(ctx, id)
}

// Recent returns the latest results, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]*Result, error) {
	return s.store.Recent(ctx, limit)
}

// History returns every result for a patient, newest first.
func (s *Service) History(ctx context.Context, patientID string) ([]*Result, error) {
	return s.store.GetByPatient(ctx, patientID)
}

// SubmitFeedback validates a clinician correction against its prediction
// and appends it to the feedback log.
func (s *Service) SubmitFeedback(ctx context.Context, rec *feedback.Record) error {
	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	if _, ok, err := s.store.Get(ctx, rec.PredictionID); err != nil {
		return fmt.Errorf("%w: lookup prediction: %w", feedback.ErrStore, err)
	} else if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPrediction, rec.PredictionID)
	}

	if err := s.feedback.Append(rec); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.FeedbackTotal.WithLabelValues(string(rec.Kind)).Inc()
	}
	s.logger.Info(ctx, "feedback recorded",
		"feedback_id", rec.ID,
		"prediction_id", rec.PredictionID,
		"kind", string(rec.Kind),
	)
	return nil
}

// FeedbackStats aggregates the feedback log.
func (s *Service) FeedbackStats(since time.Time) (*feedback.Stats, error) {
	return s.feedback.Stats(since)
}

// ModelInfo describes the loaded artifact, or reports the ML path down.
func (s *Service) ModelInfo() (*model.Manifest, bool) {
	return s.classifier.Manifest()
}

// ReloadModel swaps in a new artifact. A failed load keeps the previous
// model serving.
func (s *Service) ReloadModel(ctx context.Context, path string) error {
	err := s.classifier.Reload(path)
	if s.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		s.metrics.ModelReloadsTotal.WithLabelValues(outcome).Inc()
	}
	if err != nil {
		s.logger.Error(ctx, err, "model reload failed", "path", path)
		return err
	}
	version := ""
	if m, ok := s.classifier.Manifest(); ok {
		version = m.ModelVersion
	}
	s.logger.Info(ctx, "model reloaded", "path", path, "model_version", version)
	return nil
}

// IsValidation reports whether err is a patient validation failure, the
// only error class that aborts a triage.
func IsValidation(err error) bool {
	var ve *patient.ValidationError
	return errors.As(err, &ve)
}
