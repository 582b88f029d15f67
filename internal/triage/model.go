package triage

import (
	"time"

	"github.com/linnemanlabs/sentinelle/internal/patient"
	"github.com/linnemanlabs/sentinelle/internal/rules"
)

// Quality grades how much the inputs behind a prediction can be trusted.
// It reflects feature completeness, not the model's probability score.
type Quality string

const (
	// QualityHigh means every required and important feature was measured.
	QualityHigh Quality = "HIGH"

	// QualityMedium means an important feature was imputed, or the ML path
	// was unavailable.
	QualityMedium Quality = "MEDIUM"

	// QualityLow means one or two required features were imputed.
	QualityLow Quality = "LOW"

	// QualityInsufficient means three or more required features were
	// imputed. The prediction ships anyway, honestly labeled.
	QualityInsufficient Quality = "INSUFFICIENT"
)

// rank orders qualities from best to worst for capping.
func (q Quality) rank() int {
	switch q {
	case QualityHigh:
		return 0
	case QualityMedium:
		return 1
	case QualityLow:
		return 2
	default:
		return 3
	}
}

// Cap returns the worse of q and limit.
func (q Quality) Cap(limit Quality) Quality {
	if limit.rank() > q.rank() {
		return limit
	}
	return q
}

// Result is the outcome of one triage. It is created once, persisted, and
// never mutated; a clinician correction becomes a feedback record, not an
// edit of the result.
type Result struct {
	ID              string               `json:"prediction_id"`
	PatientID       string               `json:"patient_id"`
	Gravity         patient.GravityLevel `json:"gravity_level"`
	French          rules.FrenchLevel    `json:"french_triage_level"`
	Category        string               `json:"categorie,omitempty"`
	Confidence      float64              `json:"confidence_score"`
	Quality         Quality              `json:"prediction_quality"`
	RedFlags        []string             `json:"red_flags"`
	MissingFeatures []string             `json:"missing_features"`
	Recommendations []string             `json:"recommendations,omitempty"`
	CareDelay       string               `json:"delai_prise_en_charge,omitempty"`
	Orientation     string               `json:"orientation,omitempty"`

	MLAvailable  bool    `json:"ml_available"`
	MLError      string  `json:"ml_error,omitempty"`
	MLGravity    string  `json:"ml_gravity_level,omitempty"`
	ModelVersion string  `json:"model_version,omitempty"`
	MLLatency    float64 `json:"ml_latency_ms"`

	Justification       string  `json:"justification"`
	JustificationSource string  `json:"justification_source,omitempty"`
	GenLatency          float64 `json:"generation_latency_ms"`

	CreatedAt time.Time `json:"created_at"`
}
