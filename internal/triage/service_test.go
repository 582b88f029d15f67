package triage

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/sentinelle/internal/feedback"
	"github.com/linnemanlabs/sentinelle/internal/features"
	"github.com/linnemanlabs/sentinelle/internal/justify"
	"github.com/linnemanlabs/sentinelle/internal/model"
	"github.com/linnemanlabs/sentinelle/internal/patient"
	"github.com/linnemanlabs/sentinelle/internal/rules"
)

// fakeStore keeps results in a map without the full memstore machinery.
type fakeStore struct {
	mu      sync.Mutex
	results map[string]*Result
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{results: make(map[string]*Result)}
}

func (s *fakeStore) Get(_ context.Context, id string) (*Result, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[id]
	return r, ok, nil
}

func (s *fakeStore) GetByPatient(_ context.Context, patientID string) ([]*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Result
	for _, r := range s.results {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) Put(_ context.Context, r *Result) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[r.ID] = r
	return nil
}

func (s *fakeStore) Recent(_ context.Context, limit int) ([]*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Result
	for _, r := range s.results {
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// fakeClassifier returns a fixed prediction or error.
type fakeClassifier struct {
	pred      *model.Prediction
	err       error
	panicking bool
}

func (c *fakeClassifier) Predict(features.Vector) (*model.Prediction, error) {
	if c.panicking {
		panic("tree index out of range")
	}
	return c.pred, c.err
}

func (c *fakeClassifier) Reload(string) error { return c.err }

func (c *fakeClassifier) Manifest() (*model.Manifest, bool) {
	if c.pred == nil {
		return nil, false
	}
	return &model.Manifest{ModelVersion: c.pred.ModelVersion}, true
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []*Result
	done chan struct{}
}

func (n *fakeNotifier) Send(_ context.Context, r *Result) error {
	n.mu.Lock()
	n.sent = append(n.sent, r)
	n.mu.Unlock()
	if n.done != nil {
		close(n.done)
	}
	return nil
}

func newTestService(t *testing.T, c Classifier, n Notifier) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	fb, err := feedback.OpenLog(filepath.Join(t.TempDir(), "feedback.jsonl"))
	if err != nil {
		t.Fatalf("OpenLog: %v", err)
	}
	t.Cleanup(func() { _ = fb.Close() })

	svc := NewService(
		store,
		rules.New(rules.DefaultThresholds()),
		c,
		justify.New(nil, time.Second, log.Nop()),
		fb,
		n,
		nil,
		log.Nop(),
	)
	return svc, store
}

func intp(v int) *int { return &v }

func floatp(v float64) *float64 { return &v }

func normalRequest() *patient.Request {
	return &patient.Request{
		Age:               25,
		Sexe:              "M",
		MotifConsultation: "consultation de suivi",
		Constantes: patient.ConstantesPayload{
			FrequenceCardiaque:    intp(72),
			PressionSystolique:    intp(120),
			PressionDiastolique:   intp(80),
			FrequenceRespiratoire: intp(14),
			Temperature:           floatp(36.8),
			SaturationOxygene:     floatp(99),
			EchelleDouleur:        intp(0),
			Glycemie:              floatp(1.0),
		},
	}
}

func shockRequest() *patient.Request {
	return &patient.Request{
		Age:               75,
		Sexe:              "F",
		MotifConsultation: "malaise",
		Constantes: patient.ConstantesPayload{
			FrequenceCardiaque:    intp(145),
			PressionSystolique:    intp(85),
			PressionDiastolique:   intp(55),
			FrequenceRespiratoire: intp(28),
			Temperature:           floatp(36.2),
			SaturationOxygene:     floatp(82),
			EchelleDouleur:        intp(3),
			Glycemie:              floatp(1.1),
		},
	}
}

func TestTriageNormalPatient(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t, &fakeClassifier{
		pred: &model.Prediction{Level: patient.Gris, Confidence: 0.8, ModelVersion: "v1"},
	}, nil)

	r, err := svc.Triage(context.Background(), normalRequest())
	if err != nil {
		t.Fatalf("Triage: %v", err)
	}
	if r.Gravity != patient.Gris {
		t.Errorf("gravity = %s, want GRIS", r.Gravity)
	}
	if r.Quality != QualityHigh {
		t.Errorf("quality = %s, want HIGH", r.Quality)
	}
	if !r.MLAvailable || r.MLError != "" {
		t.Errorf("ml_available=%v ml_error=%q", r.MLAvailable, r.MLError)
	}
	if r.Justification == "" {
		t.Error("result carries no justification")
	}
	if _, ok, _ := store.Get(context.Background(), r.ID); !ok {
		t.Error("result was not persisted")
	}
}

func TestTriageShockPatient(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, &fakeClassifier{
		pred: &model.Prediction{Level: patient.Rouge, Confidence: 0.93, ModelVersion: "v1"},
	}, nil)

	r, err := svc.Triage(context.Background(), shockRequest())
	if err != nil {
		t.Fatalf("Triage: %v", err)
	}
	if r.Gravity != patient.Rouge {
		t.Errorf("gravity = %s, want ROUGE", r.Gravity)
	}
	if len(r.RedFlags) == 0 {
		t.Error("shock patient produced no red flags")
	}
	if r.Quality != QualityHigh && r.Quality != QualityMedium {
		t.Errorf("quality = %s, want HIGH or MEDIUM", r.Quality)
	}
}

func TestTriageValidationAborts(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t, &fakeClassifier{}, nil)

	req := normalRequest()
	req.Constantes.FrequenceCardiaque = intp(500)
	_, err := svc.Triage(context.Background(), req)
	if err == nil {
		t.Fatal("out-of-range heart rate accepted")
	}
	if !IsValidation(err) {
		t.Errorf("error %v is not a validation failure", err)
	}
	if n, _ := store.Recent(context.Background(), 0); len(n) != 0 {
		t.Error("aborted triage left a persisted result")
	}
}

func TestTriageMLUnavailable(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, &fakeClassifier{
		err: model.ErrUnavailable,
	}, nil)

	r, err := svc.Triage(context.Background(), normalRequest())
	if err != nil {
		t.Fatalf("Triage: %v", err)
	}
	if r.MLAvailable {
		t.Error("ml_available = true with a dead classifier")
	}
	if r.MLError == "" {
		t.Error("ml_error empty on degraded path")
	}
	if r.Gravity != patient.Gris {
		t.Errorf("gravity = %s, want rules-only GRIS", r.Gravity)
	}
	if r.Quality != QualityMedium {
		t.Errorf("quality = %s, want MEDIUM cap without ML", r.Quality)
	}
}

func TestTriageClassifierPanicIsContained(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, &fakeClassifier{panicking: true}, nil)

	r, err := svc.Triage(context.Background(), normalRequest())
	if err != nil {
		t.Fatalf("Triage: %v", err)
	}
	if r.MLAvailable {
		t.Error("ml_available = true after classifier panic")
	}
	if !strings.Contains(r.MLError, "panic") {
		t.Errorf("ml_error = %q, want panic detail", r.MLError)
	}
}

func TestTriageMissingGlycemia(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, &fakeClassifier{
		pred: &model.Prediction{Level: patient.Gris, Confidence: 0.8, ModelVersion: "v1"},
	}, nil)

	req := normalRequest()
	req.Constantes.Glycemie = nil
	r, err := svc.Triage(context.Background(), req)
	if err != nil {
		t.Fatalf("Triage: %v", err)
	}
	if r.Quality != QualityMedium {
		t.Errorf("quality = %s, want MEDIUM", r.Quality)
	}
	found := false
	for _, name := range r.MissingFeatures {
		if name == "glycemie" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing_features = %v, want glycemie listed", r.MissingFeatures)
	}
}

func TestTriageStoreFailureStillAnswers(t *testing.T) {
	t.Parallel()

	svc, store := newTestService(t, &fakeClassifier{
		pred: &model.Prediction{Level: patient.Gris, Confidence: 0.8},
	}, nil)
	store.putErr = errors.New("disk full")

	r, err := svc.Triage(context.Background(), normalRequest())
	if err != nil {
		t.Fatalf("Triage: %v", err)
	}
	if r == nil || r.Gravity != patient.Gris {
		t.Error("store failure cost the caller the triage opinion")
	}
}

func TestTriageNotifiesOnRouge(t *testing.T) {
	t.Parallel()

	n := &fakeNotifier{done: make(chan struct{})}
	svc, _ := newTestService(t, &fakeClassifier{
		pred: &model.Prediction{Level: patient.Rouge, Confidence: 0.9},
	}, n)

	if _, err := svc.Triage(context.Background(), shockRequest()); err != nil {
		t.Fatalf("Triage: %v", err)
	}

	select {
	case <-n.done:
	case <-time.After(2 * time.Second):
		t.Fatal("no notification for a ROUGE result")
	}
}

func TestTriageNoNotificationBelowRouge(t *testing.T) {
	t.Parallel()

	n := &fakeNotifier{}
	svc, _ := newTestService(t, &fakeClassifier{
		pred: &model.Prediction{Level: patient.Gris, Confidence: 0.8},
	}, n)

	if _, err := svc.Triage(context.Background(), normalRequest()); err != nil {
		t.Fatalf("Triage: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) != 0 {
		t.Errorf("GRIS result triggered %d notifications", len(n.sent))
	}
}

func TestSubmitFeedback(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, &fakeClassifier{
		pred: &model.Prediction{Level: patient.Gris, Confidence: 0.8},
	}, nil)

	r, err := svc.Triage(context.Background(), normalRequest())
	if err != nil {
		t.Fatalf("Triage: %v", err)
	}

	corrected := patient.Vert
	rec := &feedback.Record{
		PredictionID:     r.ID,
		OriginalGravity:  r.Gravity,
		Kind:             feedback.KindUpgrade,
		CorrectedGravity: &corrected,
		Reason:           "douleur sous-évaluée",
	}
	if err := svc.SubmitFeedback(context.Background(), rec); err != nil {
		t.Fatalf("SubmitFeedback: %v", err)
	}
	if rec.ID == "" || rec.RecordedAt.IsZero() {
		t.Error("feedback identity not filled in")
	}

	stats, err := svc.FeedbackStats(time.Time{})
	if err != nil {
		t.Fatalf("FeedbackStats: %v", err)
	}
	if stats.Total != 1 || stats.UpgradeRate != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestSubmitFeedbackUnknownPrediction(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, &fakeClassifier{}, nil)

	rec := &feedback.Record{
		PredictionID:    "does-not-exist",
		OriginalGravity: patient.Vert,
		Kind:            feedback.KindCorrect,
	}
	if err := svc.SubmitFeedback(context.Background(), rec); err == nil {
		t.Fatal("feedback for unknown prediction accepted")
	}
}
