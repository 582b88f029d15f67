package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/linnemanlabs/sentinelle/internal/feedback"
	"github.com/linnemanlabs/sentinelle/internal/triage"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func (a *API) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var rec feedback.Record
	if err := decodeJSON(r, &rec); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}

	if err := a.svc.SubmitFeedback(r.Context(), &rec); err != nil {
		switch {
		case errors.Is(err, feedback.ErrStore):
			a.logger.Error(r.Context(), err, "feedback store failed",
				"prediction_id", rec.PredictionID,
			)
			http.Error(w, `{"error":"feedback store unavailable"}`, http.StatusInternalServerError)
		case errors.Is(err, triage.ErrUnknownPrediction):
			http.Error(w, `{"error":"unknown prediction_id"}`, http.StatusNotFound)
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"feedback_id": rec.ID,
		"status":      "recorded",
	})
}

func (a *API) handleFeedbackStats(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if raw := r.URL.Query().Get("since_days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 0 {
			http.Error(w, `{"error":"since_days must be a non-negative integer"}`, http.StatusBadRequest)
			return
		}
		since = time.Now().AddDate(0, 0, -days)
	}

	stats, err := a.svc.FeedbackStats(since)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to aggregate feedback")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
