package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/tally/internal/domain"
	internalhttp "github.com/davidbz/tally/internal/http"
)

type staticFetcher struct {
	items []domain.RawPrice
}

func (f *staticFetcher) FetchRegionPrices(_ context.Context, _ string) ([]domain.RawPrice, error) {
	return f.items, nil
}

type failingFetcher struct{}

func (f *failingFetcher) FetchRegionPrices(_ context.Context, _ string) ([]domain.RawPrice, error) {
	return nil, errors.New("connection refused")
}

func newTestHandler() *internalhttp.Handler {
	fetcher := &staticFetcher{items: []domain.RawPrice{
		{MeterName: "gpt-4-8K Input Tokens", SkuName: "GPT-4", UnitPrice: 0.03},
		{MeterName: "gpt-4-8K Output Tokens", SkuName: "GPT-4", UnitPrice: 0.06},
	}}
	cache := domain.NewPricingCache(fetcher, time.Hour, nil, nil)
	estimator := domain.NewEstimatorService(cache, "USD", nil, nil)
	return internalhttp.NewHandler(estimator)
}

func TestHandler_HandleEstimate(t *testing.T) {
	t.Run("returns the estimated cost", func(t *testing.T) {
		handler := newTestHandler()

		body := `{"region":"eastus","model":"gpt-4-8k","prompt_tokens":500,"completion_tokens":200}`
		req := httptest.NewRequest(http.MethodPost, "/v1/estimate", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleEstimate(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var response domain.EstimateResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		require.InDelta(t, 0.027, response.Cost, 1e-6)
		require.Equal(t, "USD", response.Currency)
		require.Equal(t, "eastus", response.Region)
	})

	t.Run("unknown model maps to 404 with the original spelling", func(t *testing.T) {
		handler := newTestHandler()

		body := `{"region":"eastus","model":"made-up-model"}`
		req := httptest.NewRequest(http.MethodPost, "/v1/estimate", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleEstimate(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Contains(t, rec.Body.String(), `"made-up-model"`)
		require.Contains(t, rec.Body.String(), `"eastus"`)
	})

	t.Run("invalid body maps to 400", func(t *testing.T) {
		handler := newTestHandler()

		req := httptest.NewRequest(http.MethodPost, "/v1/estimate", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()

		handler.HandleEstimate(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing model maps to 400", func(t *testing.T) {
		handler := newTestHandler()

		req := httptest.NewRequest(http.MethodPost, "/v1/estimate", strings.NewReader(`{"region":"eastus"}`))
		rec := httptest.NewRecorder()

		handler.HandleEstimate(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("upstream failure maps to 502", func(t *testing.T) {
		cache := domain.NewPricingCache(&failingFetcher{}, time.Hour, nil, nil)
		estimator := domain.NewEstimatorService(cache, "USD", nil, nil)
		handler := internalhttp.NewHandler(estimator)

		body := `{"region":"eastus","model":"gpt-4"}`
		req := httptest.NewRequest(http.MethodPost, "/v1/estimate", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleEstimate(rec, req)

		require.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("rejects non-POST methods", func(t *testing.T) {
		handler := newTestHandler()

		req := httptest.NewRequest(http.MethodGet, "/v1/estimate", nil)
		rec := httptest.NewRecorder()

		handler.HandleEstimate(rec, req)

		require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestHandler_HandleHealth(t *testing.T) {
	handler := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	handler.HandleHealth(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}
