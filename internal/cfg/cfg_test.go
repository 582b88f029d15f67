package cfg

import (
	"flag"
	"math"
	"strings"
	"testing"
)

// validBase returns a Config with all required fields set to valid values.
func validBase() Config {
	return Config{
		DrainSeconds:          60,
		ShutdownBudgetSeconds: 90,
		APIPort:               8080,
		FeedbackPath:          "feedback.jsonl",
		JustifyTimeoutSeconds: 5,
	}
}

func TestRegisterFlags_Defaults(t *testing.T) {
	t.Parallel()

	var c Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)

	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse empty args: %v", err)
	}

	if c.DrainSeconds != 60 {
		t.Errorf("DrainSeconds = %d, want 60", c.DrainSeconds)
	}
	if c.ShutdownBudgetSeconds != 90 {
		t.Errorf("ShutdownBudgetSeconds = %d, want 90", c.ShutdownBudgetSeconds)
	}
	if c.APIPort != 8080 {
		t.Errorf("APIPort = %d, want 8080", c.APIPort)
	}
	if c.FeedbackPath != "feedback.jsonl" {
		t.Errorf("FeedbackPath = %q, want feedback.jsonl", c.FeedbackPath)
	}
	if c.JustifyTimeoutSeconds != 5 {
		t.Errorf("JustifyTimeoutSeconds = %d, want 5", c.JustifyTimeoutSeconds)
	}
	if c.ClaudeModel != "claude-sonnet-4-20250514" {
		t.Errorf("ClaudeModel = %q, want %q", c.ClaudeModel, "claude-sonnet-4-20250514")
	}

	// Degraded modes are the default: no ML, no LLM, no Postgres, no auth
	if c.ModelPath != "" || c.ClaudeAPIKey != "" || c.DatabaseURL != "" || c.APIToken != "" {
		t.Errorf("optional integrations should default to empty: %+v", c)
	}
}

func TestRegisterFlags_Override(t *testing.T) {
	t.Parallel()

	var c Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)

	args := []string{
		"-drain-seconds", "30",
		"-shutdown-budget-seconds", "120",
		"-http-port", "9090",
		"-model-path", "/models/triage_v3.json",
		"-feedback-path", "/var/lib/sentinelle/feedback.jsonl",
		"-database-url", "postgres://triage:pw@db/sentinelle",
		"-claude-api-key", "sk-override",
		"-claude-model", "claude-opus-4-20250514",
		"-justify-timeout-seconds", "10",
		"-api-token", "tok-123",
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse args: %v", err)
	}

	if c.DrainSeconds != 30 {
		t.Errorf("DrainSeconds = %d, want 30", c.DrainSeconds)
	}
	if c.ShutdownBudgetSeconds != 120 {
		t.Errorf("ShutdownBudgetSeconds = %d, want 120", c.ShutdownBudgetSeconds)
	}
	if c.APIPort != 9090 {
		t.Errorf("APIPort = %d, want 9090", c.APIPort)
	}
	if c.ModelPath != "/models/triage_v3.json" {
		t.Errorf("ModelPath = %q", c.ModelPath)
	}
	if c.FeedbackPath != "/var/lib/sentinelle/feedback.jsonl" {
		t.Errorf("FeedbackPath = %q", c.FeedbackPath)
	}
	if c.DatabaseURL != "postgres://triage:pw@db/sentinelle" {
		t.Errorf("DatabaseURL = %q", c.DatabaseURL)
	}
	if c.ClaudeAPIKey != "sk-override" {
		t.Errorf("ClaudeAPIKey = %q, want %q", c.ClaudeAPIKey, "sk-override")
	}
	if c.ClaudeModel != "claude-opus-4-20250514" {
		t.Errorf("ClaudeModel = %q, want %q", c.ClaudeModel, "claude-opus-4-20250514")
	}
	if c.JustifyTimeoutSeconds != 10 {
		t.Errorf("JustifyTimeoutSeconds = %d, want 10", c.JustifyTimeoutSeconds)
	}
	if c.APIToken != "tok-123" {
		t.Errorf("APIToken = %q, want tok-123", c.APIToken)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cfg       Config
		wantErr   bool
		errSubstr []string // substrings that must appear in error message
	}{
		{
			name:    "defaults are valid",
			cfg:     validBase(),
			wantErr: false,
		},
		{
			name: "minimum valid values",
			cfg: Config{
				DrainSeconds: 1, ShutdownBudgetSeconds: 2, APIPort: 1,
				FeedbackPath: "f", JustifyTimeoutSeconds: 1,
			},
			wantErr: false,
		},
		{
			name: "maximum valid values",
			cfg: Config{
				DrainSeconds: 299, ShutdownBudgetSeconds: 300, APIPort: 65535,
				FeedbackPath: "f", JustifyTimeoutSeconds: 60,
			},
			wantErr: false,
		},
		// DrainSeconds boundaries
		{
			name:      "drain zero",
			cfg:       Config{DrainSeconds: 0, ShutdownBudgetSeconds: 90, APIPort: 8080, FeedbackPath: "f", JustifyTimeoutSeconds: 5},
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS"},
		},
		{
			name:      "drain negative",
			cfg:       Config{DrainSeconds: -1, ShutdownBudgetSeconds: 90, APIPort: 8080, FeedbackPath: "f", JustifyTimeoutSeconds: 5},
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS"},
		},
		{
			name:      "drain above max",
			cfg:       Config{DrainSeconds: 301, ShutdownBudgetSeconds: 302, APIPort: 8080, FeedbackPath: "f", JustifyTimeoutSeconds: 5},
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS", "SHUTDOWN_BUDGET_SECONDS"},
		},
		// Cross-field: budget vs drain
		{
			name:      "budget equals drain",
			cfg:       Config{DrainSeconds: 60, ShutdownBudgetSeconds: 60, APIPort: 8080, FeedbackPath: "f", JustifyTimeoutSeconds: 5},
			wantErr:   true,
			errSubstr: []string{"must be greater than"},
		},
		{
			name:      "budget less than drain",
			cfg:       Config{DrainSeconds: 60, ShutdownBudgetSeconds: 30, APIPort: 8080, FeedbackPath: "f", JustifyTimeoutSeconds: 5},
			wantErr:   true,
			errSubstr: []string{"must be greater than"},
		},
		{
			name:    "budget is drain plus one",
			cfg:     Config{DrainSeconds: 60, ShutdownBudgetSeconds: 61, APIPort: 8080, FeedbackPath: "f", JustifyTimeoutSeconds: 5},
			wantErr: false,
		},
		// APIPort boundaries
		{
			name:      "port zero",
			cfg:       Config{DrainSeconds: 60, ShutdownBudgetSeconds: 90, APIPort: 0, FeedbackPath: "f", JustifyTimeoutSeconds: 5},
			wantErr:   true,
			errSubstr: []string{"HTTP_PORT"},
		},
		{
			name:      "port above max",
			cfg:       Config{DrainSeconds: 60, ShutdownBudgetSeconds: 90, APIPort: 65536, FeedbackPath: "f", JustifyTimeoutSeconds: 5},
			wantErr:   true,
			errSubstr: []string{"HTTP_PORT"},
		},
		// Justification timeout boundaries
		{
			name:      "justify timeout zero",
			cfg:       Config{DrainSeconds: 60, ShutdownBudgetSeconds: 90, APIPort: 8080, FeedbackPath: "f", JustifyTimeoutSeconds: 0},
			wantErr:   true,
			errSubstr: []string{"JUSTIFY_TIMEOUT_SECONDS"},
		},
		{
			name:      "justify timeout above max",
			cfg:       Config{DrainSeconds: 60, ShutdownBudgetSeconds: 90, APIPort: 8080, FeedbackPath: "f", JustifyTimeoutSeconds: 61},
			wantErr:   true,
			errSubstr: []string{"JUSTIFY_TIMEOUT_SECONDS"},
		},
		// Required and conditional string fields
		{
			name:      "empty feedback path",
			cfg:       Config{DrainSeconds: 60, ShutdownBudgetSeconds: 90, APIPort: 8080, FeedbackPath: "", JustifyTimeoutSeconds: 5},
			wantErr:   true,
			errSubstr: []string{"FEEDBACK_PATH"},
		},
		{
			name: "claude key without model",
			cfg: Config{
				DrainSeconds: 60, ShutdownBudgetSeconds: 90, APIPort: 8080,
				FeedbackPath: "f", JustifyTimeoutSeconds: 5,
				ClaudeAPIKey: "sk-test", ClaudeModel: "",
			},
			wantErr:   true,
			errSubstr: []string{"CLAUDE_MODEL"},
		},
		{
			name: "claude fully configured",
			cfg: Config{
				DrainSeconds: 60, ShutdownBudgetSeconds: 90, APIPort: 8080,
				FeedbackPath: "f", JustifyTimeoutSeconds: 5,
				ClaudeAPIKey: "sk-test", ClaudeModel: "claude-sonnet-4-20250514",
			},
			wantErr: false,
		},
		// Error accumulation: all fields invalid
		{
			name:      "all fields invalid",
			cfg:       Config{DrainSeconds: 0, ShutdownBudgetSeconds: 0, APIPort: 0},
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS", "SHUTDOWN_BUDGET_SECONDS", "HTTP_PORT", "JUSTIFY_TIMEOUT_SECONDS", "FEEDBACK_PATH"},
		},
		// Extreme values
		{
			name:      "extreme negative values",
			cfg:       Config{DrainSeconds: math.MinInt32, ShutdownBudgetSeconds: math.MinInt32, APIPort: math.MinInt32},
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS", "SHUTDOWN_BUDGET_SECONDS", "HTTP_PORT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				errMsg := err.Error()
				for _, sub := range tt.errSubstr {
					if !strings.Contains(errMsg, sub) {
						t.Errorf("error %q does not contain %q", errMsg, sub)
					}
				}
			}
		})
	}
}

func FuzzValidate(f *testing.F) {
	// Seeds: defaults, boundaries, extremes
	seeds := []struct {
		drain, budget, port, justify int
		feedbackPath, key, model     string
	}{
		{60, 90, 8080, 5, "feedback.jsonl", "", "claude-sonnet"},
		{1, 2, 1, 1, "f", "k", "m"},
		{299, 300, 65535, 60, "f", "k", "m"},
		{0, 0, 0, 0, "", "", ""},
		{-1, -1, -1, -1, "", "", ""},
		{300, 300, 65535, 60, "f", "k", "m"},
		{301, 302, 65536, 61, "", "", ""},
		{150, 100, 8080, 5, "f", "k", "m"},
		{60, 90, 8080, 5, "f", "sk-test", ""},
		{math.MinInt32, math.MinInt32, math.MinInt32, math.MinInt32, "", "", ""},
		{math.MaxInt32, math.MaxInt32, math.MaxInt32, math.MaxInt32, "", "", ""},
	}
	for _, s := range seeds {
		f.Add(s.drain, s.budget, s.port, s.justify, s.feedbackPath, s.key, s.model)
	}

	f.Fuzz(func(t *testing.T, drain, budget, port, justify int, feedbackPath, key, model string) {
		c := Config{
			DrainSeconds:          drain,
			ShutdownBudgetSeconds: budget,
			APIPort:               port,
			JustifyTimeoutSeconds: justify,
			FeedbackPath:          feedbackPath,
			ClaudeAPIKey:          key,
			ClaudeModel:           model,
		}
		err := c.Validate()

		drainOK := drain >= 1 && drain <= 300
		budgetOK := budget >= 1 && budget <= 300
		portOK := port >= 1 && port <= 65535
		justifyOK := justify >= 1 && justify <= 60
		crossOK := budget > drain
		feedbackOK := feedbackPath != ""
		claudeOK := key == "" || model != ""

		allValid := drainOK && budgetOK && portOK && justifyOK && crossOK && feedbackOK && claudeOK

		if allValid && err != nil {
			t.Errorf("expected no error for valid config %+v, got: %v", c, err)
		}
		if !allValid && err == nil {
			t.Errorf("expected error for invalid config %+v, got nil", c)
		}
	})
}
