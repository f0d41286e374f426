package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/tally/internal/domain"
)

func ptr(v float64) *float64 { return &v }
func intPtr(v int) *int      { return &v }

func TestComputeCost(t *testing.T) {
	tests := []struct {
		name         string
		meters       domain.PriceMeters
		request      domain.EstimateRequest
		expectedCost float64
		expectError  bool
	}{
		{
			name:         "text model with prompt and completion",
			meters:       domain.PriceMeters{InputPer1K: ptr(0.03), OutputPer1K: ptr(0.06)},
			request:      domain.EstimateRequest{PromptTokens: 500, CompletionTokens: 200},
			expectedCost: 0.027, // 0.015 + 0.012
		},
		{
			name:         "text model missing counts bills zero",
			meters:       domain.PriceMeters{InputPer1K: ptr(0.03), OutputPer1K: ptr(0.06)},
			request:      domain.EstimateRequest{},
			expectedCost: 0,
		},
		{
			name:         "text model without completion dimension",
			meters:       domain.PriceMeters{InputPer1K: ptr(0.03)},
			request:      domain.EstimateRequest{PromptTokens: 500, CompletionTokens: 200},
			expectedCost: 0.015,
		},
		{
			name:         "embedding shape",
			meters:       domain.PriceMeters{InputPer1K: ptr(0.0001)},
			request:      domain.EstimateRequest{PromptTokens: 1000},
			expectedCost: 0.0001,
		},
		{
			name:         "image shape with explicit count",
			meters:       domain.PriceMeters{PerImage: ptr(0.20)},
			request:      domain.EstimateRequest{ImageCount: intPtr(5)},
			expectedCost: 1.0,
		},
		{
			name:         "image count defaults to one",
			meters:       domain.PriceMeters{PerImage: ptr(0.20)},
			request:      domain.EstimateRequest{},
			expectedCost: 0.20,
		},
		{
			name:         "explicit zero images bills nothing",
			meters:       domain.PriceMeters{PerImage: ptr(0.20)},
			request:      domain.EstimateRequest{ImageCount: intPtr(0)},
			expectedCost: 0,
		},
		{
			name:        "empty meters are unsupported",
			meters:      domain.PriceMeters{},
			request:     domain.EstimateRequest{PromptTokens: 100},
			expectError: true,
		},
		{
			name:        "output-only meters are unsupported",
			meters:      domain.PriceMeters{OutputPer1K: ptr(0.06)},
			request:     domain.EstimateRequest{CompletionTokens: 100},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost, err := domain.ComputeCost("test-model", tt.meters, &tt.request)

			if tt.expectError {
				require.Error(t, err)

				var shapeErr *domain.UnsupportedMeterShapeError
				require.ErrorAs(t, err, &shapeErr)
				return
			}

			require.NoError(t, err)
			require.InDelta(t, tt.expectedCost, cost, 1e-6)
		})
	}
}

func TestComputeCost_TruncatesAtSixDecimals(t *testing.T) {
	// 7 prompt tokens at 0.001/1K = 0.000007 exactly; 1 token at 0.0003/1K
	// = 0.0000003, which falls below the sixth decimal and must disappear.
	meters := domain.PriceMeters{InputPer1K: ptr(0.001), OutputPer1K: ptr(0.0003)}
	request := domain.EstimateRequest{PromptTokens: 7, CompletionTokens: 1}

	cost, err := domain.ComputeCost("test-model", meters, &request)
	require.NoError(t, err)
	require.InDelta(t, 0.000007, cost, 1e-9)
}
