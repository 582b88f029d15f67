package api

import (
	"net/http"
)

func (a *API) handleGetModel(w http.ResponseWriter, r *http.Request) {
	manifest, ok := a.svc.ModelInfo()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"ml_available": false,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ml_available": true,
		"model":        manifest,
	})
}

type reloadRequest struct {
	Path string `json:"path"`
}

func (a *API) handleReloadModel(w http.ResponseWriter, r *http.Request) {
	var req reloadRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}
	if req.Path == "" {
		http.Error(w, `{"error":"path is required"}`, http.StatusBadRequest)
		return
	}

	if err := a.svc.ReloadModel(r.Context(), req.Path); err != nil {
		// The previous artifact keeps serving; the caller gets the detail.
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": err.Error(),
		})
		return
	}

	manifest, _ := a.svc.ModelInfo()
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "reloaded",
		"model":  manifest,
	})
}
