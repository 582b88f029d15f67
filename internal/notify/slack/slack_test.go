package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/linnemanlabs/sentinelle/internal/patient"
	"github.com/linnemanlabs/sentinelle/internal/rules"
	"github.com/linnemanlabs/sentinelle/internal/triage"
)

func rougeResult() *triage.Result {
	return &triage.Result{
		ID:            "01JN123",
		PatientID:     "01JN123",
		Gravity:       patient.Rouge,
		French:        rules.Tri1,
		Confidence:    0.92,
		Quality:       triage.QualityHigh,
		RedFlags:      []string{"Hypoxie sévère: SpO2 82%", "Tachycardie: FC 145 bpm"},
		CareDelay:     rules.Tri1.CareDelay(),
		Orientation:   rules.Tri1.Orientation(),
		MLAvailable:   true,
		MLGravity:     "ROUGE",
		Justification: "Patient en urgence vitale présentant une hypoxie sévère.",
		CreatedAt:     time.Date(2026, 2, 26, 14, 23, 0, 0, time.UTC),
	}
}

func TestSend_PostsToWebhook(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content-type = %q, want application/json", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL)
	if err := n.Send(context.Background(), rougeResult()); err != nil {
		t.Fatalf("Send: %v", err)
	}

	blocks, ok := got["blocks"].([]any)
	if !ok {
		t.Fatal("expected blocks array in payload")
	}

	// header, divider, fields, divider, justification, divider, context = 7 blocks
	if len(blocks) != 7 {
		t.Errorf("blocks count = %d, want 7", len(blocks))
	}

	header := blocks[0].(map[string]any)
	headerText := header["text"].(map[string]any)["text"].(string)
	if !strings.Contains(headerText, "ROUGE") {
		t.Errorf("header text = %q, want to contain ROUGE", headerText)
	}
	if !strings.Contains(headerText, "\U0001f534") {
		t.Errorf("header should contain red circle for ROUGE")
	}
}

func TestSend_NoOpWithoutURL(t *testing.T) {
	t.Parallel()

	n := New("")
	if err := n.Send(context.Background(), rougeResult()); err != nil {
		t.Fatalf("Send with empty URL should be no-op, got: %v", err)
	}
}

func TestSend_TruncatesLongJustification(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := rougeResult()
	r.RedFlags = nil
	r.Justification = strings.Repeat("x", 4000)
	n := New(srv.URL)
	if err := n.Send(context.Background(), r); err != nil {
		t.Fatalf("Send: %v", err)
	}

	blocks := got["blocks"].([]any)
	section := blocks[4].(map[string]any)
	text := section["text"].(map[string]any)["text"].(string)

	if len(text) > maxJustificationLen+len("*Justification*\n") {
		t.Errorf("justification text length = %d, expected <= %d", len(text), maxJustificationLen+len("*Justification*\n"))
	}
	if !strings.HasSuffix(text, "...") {
		t.Error("expected truncated justification to end with ...")
	}
}

func TestGravityEmoji(t *testing.T) {
	t.Parallel()

	tests := []struct {
		gravity patient.GravityLevel
		want    string
	}{
		{patient.Rouge, "\U0001f534"},
		{patient.Jaune, "\U0001f7e1"},
		{patient.Vert, "\U0001f7e2"},
		{patient.Gris, "\U0001f7e2"},
	}

	for _, tt := range tests {
		if got := gravityEmoji(tt.gravity); got != tt.want {
			t.Errorf("gravityEmoji(%s) = %q, want %q", tt.gravity, got, tt.want)
		}
	}
}

func TestMLStatus(t *testing.T) {
	t.Parallel()

	r := rougeResult()
	if got := mlStatus(r); got != "concordant" {
		t.Errorf("mlStatus = %q, want concordant", got)
	}

	r.MLGravity = "JAUNE"
	if got := mlStatus(r); !strings.Contains(got, "divergent") {
		t.Errorf("mlStatus = %q, want divergent note", got)
	}

	r.MLAvailable = false
	if got := mlStatus(r); got != "indisponible" {
		t.Errorf("mlStatus = %q, want indisponible", got)
	}
}

func FuzzSlackBuild(f *testing.F) {
	f.Add("Patient en urgence vitale.", "Hypoxie sévère: SpO2 82%", "ROUGE")
	f.Add("", "", "")
	f.Add("<@U123> mention", "*bold* _italic_ ~strike~", "JAUNE")
	f.Add("texte\x00\x01\x02", "alerte\nligne", "g\x00ris")
	f.Add(strings.Repeat("A", 5000), strings.Repeat("x", 10000), "VERT")

	f.Fuzz(func(t *testing.T, justification, flag, mlGravity string) {
		r := rougeResult()
		r.Justification = justification
		r.RedFlags = []string{flag}
		r.MLGravity = mlGravity

		// Must not panic
		msg := buildMessage(r)

		// Must produce valid JSON
		data, err := json.Marshal(msg)
		if err != nil {
			t.Fatalf("buildMessage produced non-marshalable output: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("buildMessage JSON does not round-trip: %v", err)
		}

		blocks, ok := decoded["blocks"].([]any)
		if !ok {
			t.Fatal("expected blocks array")
		}
		if len(blocks) != 7 {
			t.Fatalf("blocks count = %d, want 7", len(blocks))
		}
	})
}

func TestSend_NonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal error"))
	}))
	defer srv.Close()

	n := New(srv.URL)
	if err := n.Send(context.Background(), rougeResult()); err == nil {
		t.Fatal("expected error on non-OK status")
	} else if !strings.Contains(err.Error(), "500") {
		t.Errorf("error = %q, want to contain status code 500", err.Error())
	}
}
