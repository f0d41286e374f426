package domain

import "time"

// PriceMeters holds the unit prices for one canonical model. A nil field
// means that billing dimension does not apply to the model. Token prices are
// per 1K tokens, the image price is per single image, all in the estimator's
// configured currency.
type PriceMeters struct {
	InputPer1K  *float64 `json:"input_per_1k,omitempty"`
	OutputPer1K *float64 `json:"output_per_1k,omitempty"`
	PerImage    *float64 `json:"per_image,omitempty"`
}

// RawPrice is one upstream price-list record as reported by the fetcher.
type RawPrice struct {
	MeterName string  `json:"meterName"`
	SkuName   string  `json:"skuName"`
	UnitPrice float64 `json:"unitPrice"`
}

// RegionPrices is one cache entry: the normalized model price table for a
// region plus the time it was fetched.
type RegionPrices struct {
	FetchedAt time.Time
	Models    map[string]PriceMeters
}

// EstimateRequest describes one API call to price. Token counts default to
// zero; ImageCount is a pointer so that "absent" (defaults to 1 for image
// models) is distinguishable from an explicit zero.
type EstimateRequest struct {
	Region           string `json:"region"`
	Model            string `json:"model"`
	PromptTokens     int    `json:"prompt_tokens,omitempty"`
	CompletionTokens int    `json:"completion_tokens,omitempty"`
	ImageCount       *int   `json:"image_count,omitempty"`
}

// EstimateResponse carries the estimated cost for one request.
type EstimateResponse struct {
	Model    string  `json:"model"`
	Region   string  `json:"region"`
	Currency string  `json:"currency"`
	Cost     float64 `json:"cost"`
}
