// Package rules implements the deterministic triage grader based on the
// FRENCH grid (FRench Emergency Nurses Classification in-Hospital, SFMU
// V1 2018). Grading is a pure function over validated vitals, age, pain and
// complaint keywords: same input, same output, no I/O.
package rules

import (
	"encoding/json"
	"fmt"

	"github.com/linnemanlabs/sentinelle/internal/patient"
)

// FrenchLevel is the six-level FRENCH triage ladder. Lower numeric value
// means higher urgency.
type FrenchLevel int

const (
	// Tri1 is major vital distress, care without delay.
	Tri1 FrenchLevel = iota + 1

	// Tri2 is patent organ damage, physician within 20 minutes.
	Tri2

	// Tri3A is potential damage with heavy comorbidities, within 60 minutes.
	Tri3A

	// Tri3B is potential damage without comorbidities, within 90 minutes.
	Tri3B

	// Tri4 is stable functional damage, within 120 minutes.
	Tri4

	// Tri5 shows no evident damage, within 240 minutes.
	Tri5
)

var frenchNames = map[FrenchLevel]string{
	Tri1:  "Tri 1",
	Tri2:  "Tri 2",
	Tri3A: "Tri 3A",
	Tri3B: "Tri 3B",
	Tri4:  "Tri 4",
	Tri5:  "Tri 5",
}

func (l FrenchLevel) String() string { return frenchNames[l] }

// MarshalJSON encodes the level as its display name.
func (l FrenchLevel) MarshalJSON() ([]byte, error) {
	s, ok := frenchNames[l]
	if !ok {
		return nil, fmt.Errorf("cannot marshal invalid FRENCH level %d", int(l))
	}
	return json.Marshal(s)
}

// UnmarshalJSON decodes a display name back into the level.
func (l *FrenchLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseFrench(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseFrench converts a display name back into a FrenchLevel.
func ParseFrench(s string) (FrenchLevel, error) {
	for l, name := range frenchNames {
		if name == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown FRENCH level %q", s)
}

// Gravity maps the FRENCH ladder onto the four-level scale:
// Tri 1/2 are ROUGE, Tri 3A/3B JAUNE, Tri 4 VERT, Tri 5 GRIS.
func (l FrenchLevel) Gravity() patient.GravityLevel {
	switch l {
	case Tri1, Tri2:
		return patient.Rouge
	case Tri3A, Tri3B:
		return patient.Jaune
	case Tri4:
		return patient.Vert
	default:
		return patient.Gris
	}
}

// CareDelay returns the maximum recommended time to physician contact.
func (l FrenchLevel) CareDelay() string {
	switch l {
	case Tri1:
		return "Sans délai (IDE et Médecin)"
	case Tri2:
		return "Infirmière < 10 min, Médecin < 20 min"
	case Tri3A:
		return "Médecin < 60 min"
	case Tri3B:
		return "Médecin < 90 min"
	case Tri4:
		return "Médecin < 120 min"
	default:
		return "Médecin < 240 min"
	}
}

// Orientation returns the recommended care area for the level.
func (l FrenchLevel) Orientation() string {
	switch l {
	case Tri1:
		return "SAUV (Salle d'Accueil des Urgences Vitales)"
	case Tri2:
		return "SAUV ou Box"
	case Tri3A:
		return "Box ou SAUV"
	case Tri3B:
		return "Box ou salle d'attente"
	case Tri4:
		return "Box ou salle d'attente"
	default:
		return "Box, salle d'attente ou maison médicale de garde"
	}
}

// MostSevere returns the more urgent of two FRENCH levels.
func MostSevere(a, b FrenchLevel) FrenchLevel {
	if a < b {
		return a
	}
	return b
}

// FloorFor is the least severe FRENCH level inside a gravity band, used
// when an escalation moves the gravity and the FRENCH level must follow.
func FloorFor(g patient.GravityLevel) FrenchLevel {
	switch g {
	case patient.Rouge:
		return Tri2
	case patient.Jaune:
		return Tri3B
	case patient.Vert:
		return Tri4
	default:
		return Tri5
	}
}
