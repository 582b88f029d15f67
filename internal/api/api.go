// Package api exposes the triage service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/sentinelle/internal/feedback"
	"github.com/linnemanlabs/sentinelle/internal/model"
	"github.com/linnemanlabs/sentinelle/internal/patient"
	"github.com/linnemanlabs/sentinelle/internal/triage"
)

// TriageService defines the business operations the API needs.
type TriageService interface {
	Triage(ctx context.Context, req *patient.Request) (*triage.Result, error)
	Get(ctx context.Context, id string) (*triage.Result, bool, error)
	Recent(ctx context.Context, limit int) ([]*triage.Result, error)
	History(ctx context.Context, patientID string) ([]*triage.Result, error)
	SubmitFeedback(ctx context.Context, rec *feedback.Record) error
	FeedbackStats(since time.Time) (*feedback.Stats, error)
	ModelInfo() (*model.Manifest, bool)
	ReloadModel(ctx context.Context, path string) error
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger log.Logger
	svc    TriageService

	// admin wraps the model administration routes, typically bearer auth.
	// nil leaves them open.
	admin func(http.Handler) http.Handler
}

// New creates a new API handler.
func New(logger log.Logger, svc TriageService, admin func(http.Handler) http.Handler) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("triage service is required"))
	}
	return &API{
		logger: logger,
		svc:    svc,
		admin:  admin,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/triage", a.handleTriage)
		r.Get("/triage", a.handleListTriage)
		r.Get("/triage/{id}", a.handleGetTriage)
		r.Post("/feedback", a.handleSubmitFeedback)
		r.Get("/feedback/stats", a.handleFeedbackStats)
		r.Get("/model", a.handleGetModel)

		reload := http.HandlerFunc(a.handleReloadModel)
		if a.admin != nil {
			r.Method(http.MethodPost, "/model/reload", a.admin(reload))
		} else {
			r.Method(http.MethodPost, "/model/reload", reload)
		}
	})
}

func (a *API) handleGetTriage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.String("sentinelle.prediction.id", id))

	result, ok, err := a.svc.Get(r.Context(), id)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to get triage result", "id", id)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	span.SetAttributes(attribute.String("sentinelle.prediction.gravity", result.Gravity.String()))
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
