// Package slack pushes critical triage results to Slack via incoming
// webhooks. Only ROUGE predictions are routed here; the caller decides.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/linnemanlabs/sentinelle/internal/patient"
	"github.com/linnemanlabs/sentinelle/internal/triage"
)

const (
	maxJustificationLen = 3000
	httpTimeout         = 10 * time.Second
)

// Notifier sends triage results to a Slack webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

// New creates a new Slack notifier. If webhookURL is empty, Send is a no-op.
func New(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// Send posts a triage result to the configured Slack webhook.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) Send(ctx context.Context, result *triage.Result) error {
	if n.webhookURL == "" {
		return nil
	}

	msg := buildMessage(result)

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(r *triage.Result) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(r),
			{"type": "divider"},
			fieldsBlock(r),
			{"type": "divider"},
			justificationBlock(r),
			{"type": "divider"},
			contextBlock(r),
		},
	}
}

func headerBlock(r *triage.Result) map[string]any {
	text := fmt.Sprintf("%s Patient %s: prise en charge immédiate", gravityEmoji(r.Gravity), r.Gravity)

	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": text,
		},
	}
}

func fieldsBlock(r *triage.Result) map[string]any {
	fields := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Niveau:* %s (%s)", r.Gravity, r.French),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Confiance:* %.0f%%", r.Confidence*100),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Qualité:* %s", r.Quality),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Délai:* %s", r.CareDelay),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Orientation:* %s", r.Orientation),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*ML:* %s", mlStatus(r)),
		},
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func justificationBlock(r *triage.Result) map[string]any {
	var parts []string
	if len(r.RedFlags) > 0 {
		parts = append(parts, fmt.Sprintf("*Alertes*\n%s", "• "+strings.Join(r.RedFlags, "\n• ")))
	}
	text := truncate(r.Justification, maxJustificationLen)
	if text == "" {
		text = "_Pas de justification disponible._"
	}
	parts = append(parts, fmt.Sprintf("*Justification*\n%s", text))

	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": strings.Join(parts, "\n\n"),
		},
	}
}

func contextBlock(r *triage.Result) map[string]any {
	elements := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("sentinelle • prediction %s • %s", r.ID, r.CreatedAt.UTC().Format("2006-01-02 15:04 UTC")),
		},
	}

	return map[string]any{
		"type":     "context",
		"elements": elements,
	}
}

func gravityEmoji(g patient.GravityLevel) string {
	switch g {
	case patient.Rouge:
		return "\U0001f534" // red circle
	case patient.Jaune:
		return "\U0001f7e1" // yellow circle
	default:
		return "\U0001f7e2" // green circle
	}
}

func mlStatus(r *triage.Result) string {
	if !r.MLAvailable {
		return "indisponible"
	}
	if r.MLGravity != "" && r.MLGravity != r.Gravity.String() {
		return fmt.Sprintf("%s (divergent)", r.MLGravity)
	}
	return "concordant"
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
