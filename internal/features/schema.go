// Package features maps a validated patient record onto the fixed-order
// numeric vector the classifier was trained on. The feature order is a
// versioned contract shared with the model artifact: a stored model that
// expects a different schema must be rejected before inference, never
// silently misaligned.
package features

import (
	"fmt"

	"github.com/linnemanlabs/sentinelle/internal/patient"
)

// SchemaVersion tags the current feature contract. Bump on any change to
// Names, their order, or their encoding.
const SchemaVersion = "v2"

// Names is the canonical feature order. Index i of a Vector is the value of
// Names[i].
var Names = []string{
	"age",
	"sexe",
	"frequence_cardiaque",
	"pression_systolique",
	"pression_diastolique",
	"frequence_respiratoire",
	"temperature",
	"saturation_oxygene",
	"echelle_douleur",
	"glycemie",
	"glasgow",
}

// Feature classes for the prediction-quality grade. Required features drive
// the decision; important ones can be imputed at the cost of confidence;
// optional ones never lower the grade.
var (
	Required = []string{
		"age",
		"sexe",
		"frequence_cardiaque",
		"pression_systolique",
		"pression_diastolique",
		"frequence_respiratoire",
		"temperature",
		"saturation_oxygene",
	}

	Important = []string{
		"echelle_douleur",
		"glycemie",
	}

	Optional = []string{
		"glasgow",
	}
)

var requiredSet, importantSet = toSet(Required), toSet(Important)

func toSet(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// IsRequired reports whether the named feature is in the required class.
func IsRequired(name string) bool { return requiredSet[name] }

// IsImportant reports whether the named feature is in the important class.
func IsImportant(name string) bool { return importantSet[name] }

// Sex encoding is a fixed contract with the trained model.
const (
	SexMaleEncoded   = 0
	SexFemaleEncoded = 1
)

// Clinically normal defaults used when imputing absent values. Every
// imputation is reported back so quality scoring can discount it.
const (
	DefaultHeartRate       = 80
	DefaultSystolicBP      = 120
	DefaultDiastolicBP     = 80
	DefaultRespiratoryRate = 16
	DefaultTemperature     = 37.0
	DefaultSpO2            = 98
	DefaultGlycemia        = 1.0
	DefaultGlasgow         = 15
)

// DefaultPainScore returns the imputed pain score for an unreported EVA.
// Children under-report pain at intake, so the pediatric bracket defaults
// above zero.
func DefaultPainScore(age int) float64 {
	if age < 16 {
		return 2
	}
	return 0
}

// Vector is a feature vector in the canonical order of Names.
type Vector []float64

// CheckCompatible verifies that a model artifact's declared schema matches
// the current feature contract. It fails fast on any drift so columns are
// never silently misaligned.
func CheckCompatible(artifactVersion string, artifactNames []string) error {
	if artifactVersion != SchemaVersion {
		return fmt.Errorf("feature schema version mismatch: artifact %q, runtime %q", artifactVersion, SchemaVersion)
	}
	if len(artifactNames) != len(Names) {
		return fmt.Errorf("feature count mismatch: artifact has %d, runtime expects %d", len(artifactNames), len(Names))
	}
	for i, n := range Names {
		if artifactNames[i] != n {
			return fmt.Errorf("feature order mismatch at %d: artifact %q, runtime %q", i, artifactNames[i], n)
		}
	}
	return nil
}

// Normalize converts a validated patient into the canonical vector,
// imputing absent values from the default table. The returned missing list
// holds the names of imputed features in schema order.
func Normalize(p *patient.Patient) (Vector, []string) {
	v := make(Vector, 0, len(Names))
	var missing []string

	pick := func(name string, present bool, value, def float64) {
		if present {
			v = append(v, value)
			return
		}
		v = append(v, def)
		missing = append(missing, name)
	}

	v = append(v, float64(p.Age))
	if p.Sex == patient.SexFemale {
		v = append(v, SexFemaleEncoded)
	} else {
		v = append(v, SexMaleEncoded)
	}

	vs := &p.Vitals
	pick("frequence_cardiaque", vs.HeartRate != nil, intVal(vs.HeartRate), DefaultHeartRate)
	pick("pression_systolique", vs.SystolicBP != nil, intVal(vs.SystolicBP), DefaultSystolicBP)
	pick("pression_diastolique", vs.DiastolicBP != nil, intVal(vs.DiastolicBP), DefaultDiastolicBP)
	pick("frequence_respiratoire", vs.RespiratoryRate != nil, intVal(vs.RespiratoryRate), DefaultRespiratoryRate)
	pick("temperature", vs.Temperature != nil, floatVal(vs.Temperature), DefaultTemperature)
	pick("saturation_oxygene", vs.SpO2 != nil, floatVal(vs.SpO2), DefaultSpO2)
	pick("echelle_douleur", vs.PainScore != nil, intVal(vs.PainScore), DefaultPainScore(p.Age))
	pick("glycemie", vs.Glycemia != nil, floatVal(vs.Glycemia), DefaultGlycemia)
	pick("glasgow", vs.Glasgow != nil, intVal(vs.Glasgow), DefaultGlasgow)

	return v, missing
}

func intVal(p *int) float64 {
	if p == nil {
		return 0
	}
	return float64(*p)
}

func floatVal(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
