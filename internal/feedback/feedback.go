// Package feedback records clinician corrections of triage predictions in
// an append-only log. Records are never rewritten or deleted: a correction
// is a new fact about a past prediction, and retraining consumes the log in
// batches.
package feedback

import (
	"fmt"
	"time"

	"github.com/linnemanlabs/sentinelle/internal/patient"
)

// Kind classifies a clinician's verdict on a prediction.
type Kind string

const (
	// KindCorrect confirms the predicted level.
	KindCorrect Kind = "correct"

	// KindUpgrade says the patient was more severe than predicted.
	KindUpgrade Kind = "upgrade"

	// KindDowngrade says the patient was less severe than predicted.
	KindDowngrade Kind = "downgrade"

	// KindDisagree rejects the prediction entirely.
	KindDisagree Kind = "disagree"
)

// Valid reports whether k is a known feedback kind.
func (k Kind) Valid() bool {
	switch k {
	case KindCorrect, KindUpgrade, KindDowngrade, KindDisagree:
		return true
	}
	return false
}

// Record is one feedback event. The patient feature snapshot travels with
// the record so retraining does not need to join against the prediction
// store.
type Record struct {
	ID               string                `json:"feedback_id"`
	PredictionID     string                `json:"prediction_id"`
	NurseID          string                `json:"nurse_id,omitempty"`
	OriginalGravity  patient.GravityLevel  `json:"original_gravity"`
	Kind             Kind                  `json:"feedback_type"`
	CorrectedGravity *patient.GravityLevel `json:"corrected_gravity,omitempty"`
	Reason           string                `json:"reason,omitempty"`
	MissedSymptoms   []string              `json:"missed_symptoms,omitempty"`
	PatientFeatures  map[string]float64    `json:"patient_features,omitempty"`
	RecordedAt       time.Time             `json:"timestamp"`
}

// Validate checks a record before it is appended.
func (r *Record) Validate() error {
	if r.PredictionID == "" {
		return fmt.Errorf("feedback missing prediction_id")
	}
	if !r.Kind.Valid() {
		return fmt.Errorf("unknown feedback_type %q", r.Kind)
	}
	if !r.OriginalGravity.Valid() {
		return fmt.Errorf("invalid original_gravity %d", int(r.OriginalGravity))
	}
	if (r.Kind == KindUpgrade || r.Kind == KindDowngrade) && r.CorrectedGravity == nil {
		return fmt.Errorf("feedback_type %q requires corrected_gravity", r.Kind)
	}
	if r.CorrectedGravity != nil && !r.CorrectedGravity.Valid() {
		return fmt.Errorf("invalid corrected_gravity %d", int(*r.CorrectedGravity))
	}
	return nil
}
