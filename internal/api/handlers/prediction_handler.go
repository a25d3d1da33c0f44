package handlers

import (
	"net/http"

	"github.com/isdelr/machine-monitor-be/internal/metrics"
	"github.com/isdelr/machine-monitor-be/internal/services"
)

// PredictionHandler serves simulated machine predictions.
type PredictionHandler struct {
	service services.PredictionServiceProvider
}

// NewPredictionHandler creates a new PredictionHandler.
func NewPredictionHandler(service services.PredictionServiceProvider) *PredictionHandler {
	return &PredictionHandler{service: service}
}

// Predict returns a fresh prediction for the authenticated caller.
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	result := h.service.Predict()
	metrics.PredictionsTotal.WithLabelValues(result.Status).Inc()
	writeJSON(w, http.StatusOK, result)
}
