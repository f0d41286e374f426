package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/davidbz/tally/internal/domain"
	"github.com/davidbz/tally/internal/observability"
)

// Handler handles HTTP requests.
type Handler struct {
	estimator *domain.EstimatorService
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(estimator *domain.EstimatorService) *Handler {
	return &Handler{
		estimator: estimator,
	}
}

// HandleEstimate processes cost estimate requests.
func (h *Handler) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Early validation.
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse request.
	var req domain.EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if req.Model == "" || req.Region == "" {
		http.Error(w, "model and region are required", http.StatusBadRequest)
		return
	}

	// Inject request fields into context for downstream logging.
	ctx = observability.WithRegion(ctx, req.Region)
	ctx = observability.WithModel(ctx, req.Model)

	logger := observability.FromContext(ctx)
	logger.Info("estimate request received",
		zap.Int("prompt_tokens", req.PromptTokens),
		zap.Int("completion_tokens", req.CompletionTokens),
	)

	response, err := h.estimator.Estimate(ctx, &req)
	if err != nil {
		h.writeEstimateError(ctx, w, err)
		return
	}

	logger.Info("estimate succeeded",
		zap.Float64("cost", response.Cost),
		zap.String("currency", response.Currency),
	)

	w.Header().Set("Content-Type", "application/json")
	encodeErr := json.NewEncoder(w).Encode(response)
	if encodeErr != nil {
		logger.Error("failed to encode response", zap.Error(encodeErr))
		http.Error(w, fmt.Sprintf("failed to encode response: %v", encodeErr), http.StatusInternalServerError)
		return
	}
}

// writeEstimateError maps domain errors onto HTTP status codes: unknown
// models are the caller's problem, upstream fetch failures are a bad gateway.
func (h *Handler) writeEstimateError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := observability.FromContext(ctx)

	var notFound *domain.PricingNotFoundError
	var badShape *domain.UnsupportedMeterShapeError

	switch {
	case errors.As(err, &notFound):
		logger.Warn("pricing not found", zap.Error(err))
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &badShape):
		logger.Error("unsupported meter shape", zap.Error(err))
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		logger.Error("estimate failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	}); err != nil {
		// Status already written, can't change it.
		observability.FromContext(r.Context()).Error("failed to encode health response", zap.Error(err))
	}
}
