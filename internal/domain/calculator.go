package domain

import "math"

const (
	tokensPerUnit = 1000.0
	costPrecision = 1e6 // six decimal places
	defaultImages = 1
)

// ComputeCost applies the pricing formula matching the meter shape. Meters
// with an input price are text (or embedding) models billed per token; meters
// with only an image price are billed per image, one image if the request
// does not say. The result is truncated at six decimal places.
func ComputeCost(key string, meters PriceMeters, req *EstimateRequest) (float64, error) {
	var cost float64

	switch {
	case meters.InputPer1K != nil:
		var outputPer1K float64
		if meters.OutputPer1K != nil {
			outputPer1K = *meters.OutputPer1K
		}
		cost = float64(req.PromptTokens)/tokensPerUnit*(*meters.InputPer1K) +
			float64(req.CompletionTokens)/tokensPerUnit*outputPer1K

	case meters.PerImage != nil:
		images := defaultImages
		if req.ImageCount != nil {
			images = *req.ImageCount
		}
		cost = float64(images) * *meters.PerImage

	default:
		return 0, &UnsupportedMeterShapeError{Key: key}
	}

	return math.Trunc(cost*costPrecision) / costPrecision, nil
}
