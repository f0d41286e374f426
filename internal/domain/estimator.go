package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/davidbz/tally/internal/metrics"
	"github.com/davidbz/tally/internal/observability"
)

// Estimate outcomes as recorded in metrics.
const (
	outcomeOK            = "ok"
	outcomeInvalid       = "invalid_request"
	outcomeNotFound      = "not_found"
	outcomeUnsupported   = "unsupported_shape"
	outcomeUpstreamError = "upstream_error"
)

// EstimatorService prices single API calls against the cached retail price
// tables. One service is bound to one currency at construction; independent
// services never share cache state.
type EstimatorService struct {
	cache    *PricingCache
	currency string
	events   EventPublisher
	metrics  *metrics.Metrics
}

// NewEstimatorService creates a new estimator service (DI constructor).
// Events and m may be nil.
func NewEstimatorService(cache *PricingCache, currency string, events EventPublisher, m *metrics.Metrics) *EstimatorService {
	return &EstimatorService{
		cache:    cache,
		currency: currency,
		events:   events,
		metrics:  m,
	}
}

func (s *EstimatorService) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveEstimate(outcome)
	}
}

// Currency returns the currency code every estimate is expressed in.
func (s *EstimatorService) Currency() string {
	return s.currency
}

// Estimate computes the cost of one API call: ensure the region table is
// fresh, canonicalize the requested model name, look up its meters and apply
// the matching pricing formula.
func (s *EstimatorService) Estimate(ctx context.Context, req *EstimateRequest) (*EstimateResponse, error) {
	if req == nil {
		s.observe(outcomeInvalid)
		return nil, errors.New("request cannot be nil")
	}

	if req.Model == "" {
		s.observe(outcomeInvalid)
		return nil, errors.New("model cannot be empty")
	}

	if req.Region == "" {
		s.observe(outcomeInvalid)
		return nil, errors.New("region cannot be empty")
	}

	region := strings.ToLower(req.Region)
	ctx = observability.WithRegion(ctx, region)
	ctx = observability.WithModel(ctx, req.Model)

	entry, err := s.cache.EnsureFresh(ctx, region)
	if err != nil {
		s.observe(outcomeUpstreamError)
		return nil, fmt.Errorf("pricing refresh failed: %w", err)
	}

	key := ModelKey(req.Model)
	meters, ok := entry.Models[key]
	if !ok {
		s.observe(outcomeNotFound)
		return nil, &PricingNotFoundError{Model: req.Model, Region: region}
	}

	cost, err := ComputeCost(key, meters, req)
	if err != nil {
		s.observe(outcomeUnsupported)
		return nil, err
	}

	s.observe(outcomeOK)

	observability.FromContext(ctx).Info("estimate computed",
		zap.String("canonical_model", key),
		zap.Float64("cost", cost),
		zap.String("currency", s.currency),
	)

	if s.events != nil {
		s.events.Publish(ctx, "estimate.completed", map[string]interface{}{
			"region":   region,
			"model":    key,
			"cost":     cost,
			"currency": s.currency,
		})
	}

	return &EstimateResponse{
		Model:    req.Model,
		Region:   region,
		Currency: s.currency,
		Cost:     cost,
	}, nil
}
