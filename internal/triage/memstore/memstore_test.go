package memstore

import (
	"context"
	"strconv"
	"testing"

	"github.com/linnemanlabs/sentinelle/internal/patient"
	"github.com/linnemanlabs/sentinelle/internal/triage"
)

func result(id, patientID string) *triage.Result {
	return &triage.Result{
		ID:        id,
		PatientID: patientID,
		Gravity:   patient.Jaune,
	}
}

func TestPutGet(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	if err := s.Put(ctx, result("t1", "p1")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Get(ctx, "t1")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.PatientID != "p1" {
		t.Errorf("PatientID = %q, want p1", got.PatientID)
	}

	// Mutating the returned copy must not touch the stored result.
	got.Gravity = patient.Rouge
	again, _, _ := s.Get(ctx, "t1")
	if again.Gravity != patient.Jaune {
		t.Error("Get returned a reference to the stored result")
	}
}

func TestGetMissing(t *testing.T) {
	t.Parallel()

	s := New()
	_, ok, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("found a result that was never stored")
	}
}

func TestGetByPatient(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := s.Put(ctx, result("t"+strconv.Itoa(i), "p1")); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if err := s.Put(ctx, result("other", "p2")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.GetByPatient(ctx, "p1")
	if err != nil {
		t.Fatalf("GetByPatient: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d results, want 3", len(got))
	}
	if got[0].ID != "t2" {
		t.Errorf("first result = %s, want newest (t2)", got[0].ID)
	}
}

func TestRecent(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := s.Put(ctx, result("t"+strconv.Itoa(i), "p")); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	got, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 || got[0].ID != "t4" || got[1].ID != "t3" {
		t.Errorf("Recent(2) = %v, want [t4 t3]", []string{got[0].ID, got[1].ID})
	}

	all, err := s.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("Recent(0) returned %d results, want all 5", len(all))
	}
}
