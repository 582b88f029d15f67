// Package justify produces the clinical justification text attached to a
// triage result. A remote LLM provider writes the primary text; a
// deterministic template takes over when the provider is absent, slow or
// failing, so every result carries a justification.
package justify

import (
	"context"
	"time"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/sentinelle/internal/patient"
	"github.com/linnemanlabs/sentinelle/internal/rules"
)

// DefaultTimeout bounds one provider call. The triage response must not
// wait on a slow LLM; past this budget the template answer ships instead.
const DefaultTimeout = 5 * time.Second

// Source records which path produced the justification text.
type Source string

const (
	SourceProvider Source = "llm"
	SourceTemplate Source = "template"
)

// Input carries everything the generator may reference. It must not invent
// facts beyond these fields.
type Input struct {
	Patient    *patient.Patient
	Gravity    patient.GravityLevel
	French     rules.FrenchLevel
	Category   string
	RedFlags   []string
	Confidence float64

	// MLAvailable tells the generator whether MLGravity is meaningful.
	MLAvailable bool
	MLGravity   patient.GravityLevel
}

// Provider is the interface for any LLM backend.
type Provider interface {
	Generate(ctx context.Context, in *Input) (string, error)
}

// Justifier wraps a Provider with a timeout and the template fallback.
type Justifier struct {
	provider Provider
	timeout  time.Duration
	logger   log.Logger
}

// New creates a justifier. provider may be nil, in which case every call
// takes the template path. A non-positive timeout falls back to
// DefaultTimeout.
func New(provider Provider, timeout time.Duration, logger log.Logger) *Justifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Justifier{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
	}
}

// Generate returns the justification text and which path produced it.
// It never fails: any provider error is logged and replaced by the
// deterministic template.
func (j *Justifier) Generate(ctx context.Context, in *Input) (string, Source) {
	if j.provider == nil {
		return Template(in), SourceTemplate
	}

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	text, err := j.provider.Generate(ctx, in)
	if err != nil {
		j.logger.Warn(ctx, "justification provider failed, using template",
			"error", err,
			"gravity", in.Gravity.String(),
		)
		return Template(in), SourceTemplate
	}
	if text == "" {
		return Template(in), SourceTemplate
	}
	return text, SourceProvider
}
