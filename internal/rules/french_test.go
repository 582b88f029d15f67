package rules

import (
	"testing"

	"github.com/linnemanlabs/sentinelle/internal/patient"
)

func TestFrenchGravityMapping(t *testing.T) {
	t.Parallel()

	want := map[FrenchLevel]patient.GravityLevel{
		Tri1:  patient.Rouge,
		Tri2:  patient.Rouge,
		Tri3A: patient.Jaune,
		Tri3B: patient.Jaune,
		Tri4:  patient.Vert,
		Tri5:  patient.Gris,
	}
	for l, g := range want {
		if got := l.Gravity(); got != g {
			t.Errorf("%s.Gravity() = %s, want %s", l, got, g)
		}
	}
}

func TestMostSevere(t *testing.T) {
	t.Parallel()

	if got := MostSevere(Tri3A, Tri1); got != Tri1 {
		t.Errorf("MostSevere(Tri3A, Tri1) = %s, want Tri 1", got)
	}
	if got := MostSevere(Tri5, Tri4); got != Tri4 {
		t.Errorf("MostSevere(Tri5, Tri4) = %s, want Tri 4", got)
	}
	if got := MostSevere(Tri2, Tri2); got != Tri2 {
		t.Errorf("MostSevere(Tri2, Tri2) = %s, want Tri 2", got)
	}
}

func TestFloorForRoundTripsGravity(t *testing.T) {
	t.Parallel()

	// The floor of a gravity band must itself sit in that band.
	for _, g := range []patient.GravityLevel{patient.Rouge, patient.Jaune, patient.Vert, patient.Gris} {
		if got := FloorFor(g).Gravity(); got != g {
			t.Errorf("FloorFor(%s).Gravity() = %s", g, got)
		}
	}
}

func TestParseFrench(t *testing.T) {
	t.Parallel()

	for _, l := range []FrenchLevel{Tri1, Tri2, Tri3A, Tri3B, Tri4, Tri5} {
		got, err := ParseFrench(l.String())
		if err != nil {
			t.Fatalf("ParseFrench(%q): %v", l.String(), err)
		}
		if got != l {
			t.Errorf("ParseFrench(%q) = %v, want %v", l.String(), got, l)
		}
	}

	if _, err := ParseFrench("Tri 6"); err == nil {
		t.Error("ParseFrench accepted an unknown level")
	}
}

func TestCareDelayAndOrientationCoverAllLevels(t *testing.T) {
	t.Parallel()

	for _, l := range []FrenchLevel{Tri1, Tri2, Tri3A, Tri3B, Tri4, Tri5} {
		if l.CareDelay() == "" {
			t.Errorf("%s has no care delay", l)
		}
		if l.Orientation() == "" {
			t.Errorf("%s has no orientation", l)
		}
	}
}
