package api

import (
	"errors"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/sentinelle/internal/patient"
)

const defaultListLimit = 50

func (a *API) handleTriage(w http.ResponseWriter, r *http.Request) {
	var req patient.Request
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}

	result, err := a.svc.Triage(r.Context(), &req)
	if err != nil {
		var ve *patient.ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": ve.Fields,
			})
			return
		}
		a.logger.Error(r.Context(), err, "triage failed")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.String("sentinelle.prediction.id", result.ID),
		attribute.String("sentinelle.prediction.gravity", result.Gravity.String()),
		attribute.String("sentinelle.prediction.quality", string(result.Quality)),
	)

	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleListTriage(w http.ResponseWriter, r *http.Request) {
	if patientID := r.URL.Query().Get("patient_id"); patientID != "" {
		results, err := a.svc.History(r.Context(), patientID)
		if err != nil {
			a.logger.Error(r.Context(), err, "failed to list patient history", "patient_id", patientID)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": results})
		return
	}

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, `{"error":"invalid limit"}`, http.StatusBadRequest)
			return
		}
		limit = n
	}

	results, err := a.svc.Recent(r.Context(), limit)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to list recent results")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
