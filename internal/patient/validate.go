package patient

import (
	"fmt"
	"strings"
)

// Absolute physiological envelopes. A present value outside its envelope is
// a validation failure, never silently clamped. Absent optional values are
// not failures.
const (
	MinHeartRate = 20
	MaxHeartRate = 250

	MinSystolicBP = 40
	MaxSystolicBP = 250

	MinDiastolicBP = 20
	MaxDiastolicBP = 150

	MinRespiratoryRate = 5
	MaxRespiratoryRate = 60

	MinTemperature = 30.0
	MaxTemperature = 45.0

	MinSpO2 = 50.0
	MaxSpO2 = 100.0

	MinPainScore = 0
	MaxPainScore = 10

	MinGlycemia = 0.2
	MaxGlycemia = 6.0

	MinGlasgow = 3
	MaxGlasgow = 15

	MinAge = 0
	MaxAge = 120
)

// FieldError describes one out-of-range or malformed field.
type FieldError struct {
	Field  string  `json:"field"`
	Value  float64 `json:"value"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Reason string  `json:"reason,omitempty"`
}

func (f FieldError) String() string {
	if f.Reason != "" {
		return fmt.Sprintf("%s: %s", f.Field, f.Reason)
	}
	return fmt.Sprintf("%s: %g outside [%g, %g]", f.Field, f.Value, f.Min, f.Max)
}

// ValidationError reports every invalid field, not just the first, so the
// caller can surface the full list in one round trip.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return "invalid patient input: " + strings.Join(parts, "; ")
}

// Validate checks the patient record against the physiological envelopes.
// It is pure: no I/O, no mutation. On failure it returns a *ValidationError
// listing all offending fields.
func Validate(p *Patient) error {
	var fields []FieldError

	if p.Age < MinAge || p.Age > MaxAge {
		fields = append(fields, FieldError{Field: "age", Value: float64(p.Age), Min: MinAge, Max: MaxAge})
	}
	if p.Sex != SexMale && p.Sex != SexFemale {
		fields = append(fields, FieldError{Field: "sexe", Reason: fmt.Sprintf("must be M or F, got %q", p.Sex)})
	}
	if strings.TrimSpace(p.ChiefComplaint) == "" {
		fields = append(fields, FieldError{Field: "motif_consultation", Reason: "must not be empty"})
	}

	fields = append(fields, validateVitals(&p.Vitals)...)

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func validateVitals(v *VitalSigns) []FieldError {
	var fields []FieldError

	checkInt := func(name string, val *int, min, max int) {
		if val != nil && (*val < min || *val > max) {
			fields = append(fields, FieldError{Field: name, Value: float64(*val), Min: float64(min), Max: float64(max)})
		}
	}
	checkFloat := func(name string, val *float64, min, max float64) {
		if val != nil && (*val < min || *val > max) {
			fields = append(fields, FieldError{Field: name, Value: *val, Min: min, Max: max})
		}
	}

	checkInt("frequence_cardiaque", v.HeartRate, MinHeartRate, MaxHeartRate)
	checkInt("pression_systolique", v.SystolicBP, MinSystolicBP, MaxSystolicBP)
	checkInt("pression_diastolique", v.DiastolicBP, MinDiastolicBP, MaxDiastolicBP)
	checkInt("frequence_respiratoire", v.RespiratoryRate, MinRespiratoryRate, MaxRespiratoryRate)
	checkFloat("temperature", v.Temperature, MinTemperature, MaxTemperature)
	checkFloat("saturation_oxygene", v.SpO2, MinSpO2, MaxSpO2)
	checkInt("echelle_douleur", v.PainScore, MinPainScore, MaxPainScore)
	checkFloat("glycemie", v.Glycemia, MinGlycemia, MaxGlycemia)
	checkInt("glasgow", v.Glasgow, MinGlasgow, MaxGlasgow)

	return fields
}
