package rules

import (
	"fmt"
	"strings"

	"github.com/linnemanlabs/sentinelle/internal/patient"
)

// Assessment is the grader's verdict: the FRENCH level, its four-level
// gravity mapping, and the named rules that fired, in evaluation order.
type Assessment struct {
	French          FrenchLevel
	Gravity         patient.GravityLevel
	Category        string
	RedFlags        []string
	Recommendations []string
	AbnormalVitals  int
	AgeEscalated    bool
}

// CareDelay returns the recommended physician-contact delay for the verdict.
func (a *Assessment) CareDelay() string { return a.French.CareDelay() }

// Orientation returns the recommended care area for the verdict.
func (a *Assessment) Orientation() string { return a.French.Orientation() }

// Grader applies the FRENCH grid. Safe for concurrent use: it holds only
// immutable thresholds.
type Grader struct {
	t Thresholds
}

// New creates a grader with the given cut points.
func New(t Thresholds) *Grader {
	return &Grader{t: t}
}

// Grade evaluates a validated patient. Absent optional vitals contribute no
// signal. Ties across rule groups always resolve to the most severe level;
// the grid may escalate a borderline case but never under-triage it, and
// extreme age (surcotation) escalates one tier whenever any vital is
// abnormal.
func (g *Grader) Grade(p *patient.Patient) Assessment {
	level, flags, abnormal := g.gradeVitals(&p.Vitals)

	// Pain floor: EVA at or above the urgent cut point is JAUNE minimum
	// regardless of vitals.
	if ps := p.Vitals.PainScore; ps != nil {
		switch {
		case *ps >= g.t.PainUrgent:
			level = MostSevere(level, Tri3B)
			flags = append(flags, fmt.Sprintf("Douleur intense: EVA %d/10", *ps))
		case *ps >= g.t.PainNotice:
			level = MostSevere(level, Tri4)
			flags = append(flags, fmt.Sprintf("Douleur modérée: EVA %d/10", *ps))
		}
	}

	category := "DIVERS"
	var recommendations []string
	if rule := matchComplaint(p.ChiefComplaint, p.History); rule != nil {
		level = MostSevere(level, rule.level)
		category = rule.category
		recommendations = append(recommendations, rule.recommendations...)
		if rule.level.Gravity() == patient.Rouge {
			flags = append(flags, "Motif critique: "+rule.name)
		}
	}

	// Comorbidity adjustment: potential damage with heavy antecedents is
	// seen sooner (Tri 3B -> Tri 3A). Gravity band is unchanged.
	if level == Tri3B && hasHeavyComorbidity(p.History) {
		level = Tri3A
	}

	a := Assessment{
		French:          level,
		Gravity:         level.Gravity(),
		Category:        category,
		RedFlags:        flags,
		Recommendations: recommendations,
		AbnormalVitals:  abnormal,
	}

	// Surcotation: an abnormal vital on an infant or elderly patient
	// escalates one gravity tier from what would otherwise be assigned.
	if abnormal > 0 && (p.Age < g.t.AgeInfant || p.Age > g.t.AgeElderly) {
		escalated := a.Gravity.Escalate()
		if escalated != a.Gravity {
			a.Gravity = escalated
			a.French = MostSevere(a.French, FloorFor(escalated))
			a.AgeEscalated = true
			a.RedFlags = append(a.RedFlags, fmt.Sprintf("Terrain à risque: âge %d ans", p.Age))
		}
	}

	return a
}

// gradeVitals walks every vital-sign rule, collecting the most severe level
// and a red flag per abnormality. All rules are evaluated; nothing
// short-circuits, so the worst signal always wins.
func (g *Grader) gradeVitals(v *patient.VitalSigns) (FrenchLevel, []string, int) {
	level := Tri5
	var flags []string
	abnormal := 0

	raise := func(to FrenchLevel, flag string) {
		level = MostSevere(level, to)
		flags = append(flags, flag)
		abnormal++
	}

	if v.SystolicBP != nil {
		sbp := *v.SystolicBP
		hr := 0
		if v.HeartRate != nil {
			hr = *v.HeartRate
		}
		switch {
		case sbp < g.t.SystolicSevere:
			raise(Tri1, fmt.Sprintf("Hypotension sévère: PAS %d mmHg", sbp))
		case sbp <= g.t.SystolicLow:
			raise(Tri2, fmt.Sprintf("Hypotension: PAS %d mmHg", sbp))
		case sbp <= g.t.SystolicGuarded && hr > g.t.TachycardiaMild:
			raise(Tri2, fmt.Sprintf("Hypotension relative: PAS %d mmHg avec FC %d bpm", sbp, hr))
		}
	}

	if v.HeartRate != nil {
		hr := *v.HeartRate
		switch {
		case hr > g.t.HeartRateCritHigh || hr < g.t.HeartRateCritLow:
			raise(Tri1, fmt.Sprintf("FC critique: %d bpm", hr))
		case hr >= g.t.TachycardiaHigh:
			raise(Tri2, fmt.Sprintf("Tachycardie: FC %d bpm", hr))
		case hr <= g.t.BradycardiaLow:
			raise(Tri3B, fmt.Sprintf("Bradycardie: FC %d bpm", hr))
		case hr >= g.t.TachycardiaNotice:
			raise(Tri4, fmt.Sprintf("Tachycardie modérée: FC %d bpm", hr))
		}
	}

	if v.SpO2 != nil {
		spo2 := *v.SpO2
		switch {
		case spo2 < g.t.SpO2Critical:
			raise(Tri1, fmt.Sprintf("Hypoxie sévère: SpO2 %.0f%%", spo2))
		case spo2 <= g.t.SpO2Low:
			raise(Tri3B, fmt.Sprintf("Hypoxie modérée: SpO2 %.0f%%", spo2))
		}
	}

	if v.RespiratoryRate != nil {
		rr := *v.RespiratoryRate
		switch {
		case rr > g.t.RespRateCrit:
			raise(Tri1, fmt.Sprintf("Détresse respiratoire: FR %d/min", rr))
		case rr >= g.t.RespRateHigh:
			raise(Tri2, fmt.Sprintf("Polypnée: FR %d/min", rr))
		case rr >= g.t.RespRateNotice:
			raise(Tri4, fmt.Sprintf("Polypnée modérée: FR %d/min", rr))
		}
	}

	if v.Temperature != nil {
		temp := *v.Temperature
		switch {
		case temp >= g.t.TempCritHigh || temp <= g.t.TempCritLow:
			raise(Tri2, fmt.Sprintf("Température critique: %.1f°C", temp))
		case temp >= g.t.TempFever:
			raise(Tri3B, fmt.Sprintf("Fièvre élevée: %.1f°C", temp))
		case temp >= g.t.TempNotice:
			raise(Tri4, fmt.Sprintf("Fébricule: %.1f°C", temp))
		}
	}

	if v.Glasgow != nil {
		gcs := *v.Glasgow
		switch {
		case gcs <= g.t.GlasgowComa:
			raise(Tri1, fmt.Sprintf("Coma: GCS %d", gcs))
		case gcs <= g.t.GlasgowAltered:
			raise(Tri2, fmt.Sprintf("Altération conscience: GCS %d", gcs))
		}
	}

	return level, flags, abnormal
}

// Heavy comorbidities that move a Tri 3B patient to Tri 3A.
var heavyComorbidities = []string{
	"diabète",
	"insuffisance cardiaque",
	"insuffisance rénale",
	"cancer",
	"immunodépression",
	"dialyse",
}

func hasHeavyComorbidity(history []string) bool {
	if len(history) == 0 {
		return false
	}
	joined := strings.ToLower(strings.Join(history, " "))
	for _, c := range heavyComorbidities {
		if strings.Contains(joined, c) {
			return true
		}
	}
	return false
}
