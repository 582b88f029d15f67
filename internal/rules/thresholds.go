package rules

// Thresholds holds the numeric cut points of the grading rules. Boundary
// conventions at tier edges vary between published versions of the grid, so
// the values are configuration rather than hard-coded literals; tests pin
// both sides of each boundary for the defaults below.
type Thresholds struct {
	// Systolic blood pressure (mmHg).
	SystolicSevere   int // below: vital distress
	SystolicLow      int // at or below: patent damage
	SystolicGuarded  int // at or below, with HR above TachycardiaMild: patent damage
	TachycardiaMild  int

	// Heart rate (bpm).
	HeartRateCritHigh int // above: vital distress
	HeartRateCritLow  int // below: vital distress
	TachycardiaHigh   int // at or above: patent damage
	TachycardiaNotice int // at or above: mild abnormality
	BradycardiaLow    int // at or below: potential damage

	// Oxygen saturation (%).
	SpO2Critical float64 // below: vital distress
	SpO2Low      float64 // at or below: potential damage

	// Respiratory rate (breaths/min).
	RespRateCrit   int // above: vital distress
	RespRateHigh   int // at or above: patent damage
	RespRateNotice int // at or above: mild abnormality

	// Temperature (degrees C).
	TempCritHigh float64 // at or above: critical
	TempCritLow  float64 // at or below: critical
	TempFever    float64 // at or above: potential damage
	TempNotice   float64 // at or above: mild abnormality

	// Glasgow coma scale.
	GlasgowComa    int // at or below: vital distress
	GlasgowAltered int // at or below: patent damage

	// Pain (EVA 0-10).
	PainUrgent int // at or above: JAUNE floor regardless of vitals
	PainNotice int // at or above: mild abnormality

	// Age brackets for surcotation (escalate one tier on any abnormal vital).
	AgeInfant  int // strictly below
	AgeElderly int // strictly above
}

// DefaultThresholds returns the grid's published cut points. Notable
// boundary choice: SpO2 at exactly 90% is graded as moderate hypoxia
// (JAUNE band), strictly below 90% as vital distress (ROUGE band).
func DefaultThresholds() Thresholds {
	return Thresholds{
		SystolicSevere:  70,
		SystolicLow:     90,
		SystolicGuarded: 100,
		TachycardiaMild: 100,

		HeartRateCritHigh: 180,
		HeartRateCritLow:  40,
		TachycardiaHigh:   130,
		TachycardiaNotice: 100,
		BradycardiaLow:    50,

		SpO2Critical: 90,
		SpO2Low:      94,

		RespRateCrit:   40,
		RespRateHigh:   30,
		RespRateNotice: 21,

		TempCritHigh: 40.0,
		TempCritLow:  35.0,
		TempFever:    38.5,
		TempNotice:   37.8,

		GlasgowComa:    8,
		GlasgowAltered: 13,

		PainUrgent: 7,
		PainNotice: 4,

		AgeInfant:  2,
		AgeElderly: 75,
	}
}
