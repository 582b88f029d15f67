package patient

import (
	"encoding/json"
	"fmt"
)

// GravityLevel is the four-level triage priority. Lower numeric value means
// higher urgency, so ordering comparisons use < for "more severe".
type GravityLevel int

const (
	// Rouge is a vital emergency requiring immediate care.
	Rouge GravityLevel = 1

	// Jaune is urgent, requiring rapid care.
	Jaune GravityLevel = 2

	// Vert is low urgency, waiting is acceptable.
	Vert GravityLevel = 3

	// Gris is non-urgent, the patient can wait several hours.
	Gris GravityLevel = 4
)

var gravityNames = map[GravityLevel]string{
	Rouge: "ROUGE",
	Jaune: "JAUNE",
	Vert:  "VERT",
	Gris:  "GRIS",
}

// String returns the wire name of the level (ROUGE/JAUNE/VERT/GRIS).
func (g GravityLevel) String() string {
	if s, ok := gravityNames[g]; ok {
		return s
	}
	return fmt.Sprintf("GravityLevel(%d)", int(g))
}

// Valid reports whether g is one of the four defined levels.
func (g GravityLevel) Valid() bool {
	_, ok := gravityNames[g]
	return ok
}

// ParseGravity converts a wire name back into a GravityLevel.
func ParseGravity(s string) (GravityLevel, error) {
	for g, name := range gravityNames {
		if name == s {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown gravity level %q", s)
}

// MoreSevere returns the more urgent of two levels. This is the surcotation
// tie-break: levels are never averaged, the worst one wins.
func MoreSevere(a, b GravityLevel) GravityLevel {
	if a < b {
		return a
	}
	return b
}

// Escalate moves a level one tier toward ROUGE. Already-ROUGE stays ROUGE.
func (g GravityLevel) Escalate() GravityLevel {
	if g <= Rouge {
		return Rouge
	}
	return g - 1
}

// MarshalJSON encodes the level as its wire name.
func (g GravityLevel) MarshalJSON() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid gravity level %d", int(g))
	}
	return json.Marshal(g.String())
}

// UnmarshalJSON decodes a wire name into the level.
func (g *GravityLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseGravity(s)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
