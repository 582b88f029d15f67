package triage

import (
	"github.com/linnemanlabs/sentinelle/internal/features"
	"github.com/linnemanlabs/sentinelle/internal/model"
	"github.com/linnemanlabs/sentinelle/internal/patient"
	"github.com/linnemanlabs/sentinelle/internal/rules"
)

// Decision is the fused outcome of the rule grader and the ML classifier.
type Decision struct {
	Gravity    patient.GravityLevel
	French     rules.FrenchLevel
	Confidence float64
	Quality    Quality
}

// combine fuses the grader's assessment with an optional ML prediction.
// The FRENCH grid is authoritative; the classifier can only escalate, never
// soften. The final level is the more severe of the two, so a rule-side
// ROUGE stays ROUGE whatever the model says.
func combine(a rules.Assessment, pred *model.Prediction, missing []string) Decision {
	d := Decision{
		Gravity:    a.Gravity,
		French:     a.French,
		Confidence: ruleConfidence(a, pred),
		Quality:    qualityFor(missing, pred != nil),
	}

	if pred != nil {
		d.Gravity = patient.MoreSevere(d.Gravity, pred.Level)
	}

	// When ML escalated past the rules, the FRENCH level follows the new
	// gravity band.
	if d.Gravity != a.Gravity {
		d.French = rules.MostSevere(a.French, rules.FloorFor(d.Gravity))
	}
	return d
}

// ruleConfidence scores the fused decision. The grid carries a 0.7 base;
// agreement with the classifier and the classifier's own probability raise
// it, a pile of contradictory alerts lowers it. Bounded to [0.5, 0.99],
// never 1.0.
func ruleConfidence(a rules.Assessment, pred *model.Prediction) float64 {
	c := 0.7

	if pred != nil {
		if pred.Level == a.Gravity {
			c += 0.15
		}
		c += pred.Confidence * 0.1
	}
	if len(a.RedFlags) > 3 {
		c -= 0.05
	}

	if c < 0.5 {
		c = 0.5
	}
	if c > 0.99 {
		c = 0.99
	}
	return c
}

// qualityFor derives the prediction quality from which features had to be
// imputed. Required features weigh more than important ones; a missing
// optional feature costs nothing. Without ML the quality is capped at
// MEDIUM even when every feature was measured.
func qualityFor(missing []string, mlAvailable bool) Quality {
	var required, important int
	for _, name := range missing {
		switch {
		case features.IsRequired(name):
			required++
		case features.IsImportant(name):
			important++
		}
	}

	var q Quality
	switch {
	case required >= 3:
		q = QualityInsufficient
	case required >= 1:
		q = QualityLow
	case important >= 1:
		q = QualityMedium
	default:
		q = QualityHigh
	}

	if !mlAvailable {
		q = q.Cap(QualityMedium)
	}
	return q
}
