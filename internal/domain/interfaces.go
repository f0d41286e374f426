package domain

import "context"

// PriceFetcher retrieves the raw price list for one region from the upstream
// retail pricing service.
type PriceFetcher interface {
	// FetchRegionPrices returns every price record for the region, all pages
	// concatenated.
	FetchRegionPrices(ctx context.Context, region string) ([]RawPrice, error)
}

// EventPublisher publishes events for observability.
type EventPublisher interface {
	// Publish publishes an event with the given type and data.
	Publish(ctx context.Context, eventType string, data map[string]interface{})
}
