// Package patient defines the triage domain model: the four-level gravity
// scale, a patient's vital-sign bundle, and validation against absolute
// physiological bounds. A Patient that passed Validate is immutable by
// convention; the triage pipeline never mutates it.
package patient

import "time"

// Sex is the administrative sex used for ML feature encoding.
type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

// VitalSigns is the bundle of vitals measured at intake. PainScore, Glycemia
// and Glasgow are optional: a nil pointer means "not measured", which is a
// legitimate state distinct from an out-of-range value. The required vitals
// are also pointers so that an incomplete intake can still be triaged; the
// normalizer imputes missing values and the quality grade discounts them.
type VitalSigns struct {
	HeartRate       *int     // bpm
	SystolicBP      *int     // mmHg
	DiastolicBP     *int     // mmHg
	RespiratoryRate *int     // breaths/min
	Temperature     *float64 // degrees C
	SpO2            *float64 // percent
	PainScore       *int     // EVA 0-10
	Glycemia        *float64 // g/L
	Glasgow         *int     // GCS 3-15
}

// Patient is a validated triage subject. Owned by the request that created
// it; the stored TriageResult references it by ID only.
type Patient struct {
	ID             string
	Age            int
	Sex            Sex
	ChiefComplaint string
	Vitals         VitalSigns
	History        []string
	Allergies      []string
	ArrivedAt      time.Time
}
