package domain

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/davidbz/tally/internal/observability"
)

// The upstream vendor bills image meters in batches of this size; token
// meters are already per 1K tokens.
const imageBatchSize = 100.0

// NormalizePrices folds raw price-list records into a canonical-key price
// table. Records naming no recognized model family are dropped (training,
// reserved-capacity and similar non-LLM meters), as are records whose meter
// name carries no billing-dimension keyword.
func NormalizePrices(ctx context.Context, items []RawPrice) map[string]PriceMeters {
	table := make(map[string]PriceMeters)

	for _, item := range items {
		key, ok := MeterModelKey(item.MeterName + " " + item.SkuName)
		if !ok {
			continue
		}

		meterName := strings.ToLower(item.MeterName)
		entry := table[key]

		// Keyword priority: image, then input/prompt, then
		// output/completion, then embedding. Embedding-only meters bill
		// under the input dimension.
		switch {
		case strings.Contains(meterName, "image"):
			setMeter(ctx, &entry.PerImage, item.UnitPrice/imageBatchSize, key, "image")
		case strings.Contains(meterName, "input") || strings.Contains(meterName, "prompt"):
			setMeter(ctx, &entry.InputPer1K, item.UnitPrice, key, "input")
		case strings.Contains(meterName, "output") || strings.Contains(meterName, "completion"):
			setMeter(ctx, &entry.OutputPer1K, item.UnitPrice, key, "output")
		case strings.Contains(meterName, "embedding"):
			setMeter(ctx, &entry.InputPer1K, item.UnitPrice, key, "input")
		default:
			continue
		}

		table[key] = entry
	}

	return table
}

// setMeter assigns a dimension price, last write wins. Two upstream records
// setting the same dimension for one key is a vendor data anomaly, so it is
// logged rather than treated as an error.
func setMeter(ctx context.Context, dst **float64, price float64, key, dimension string) {
	if *dst != nil {
		observability.FromContext(ctx).Warn("duplicate price meter, keeping last",
			zap.String("model", key),
			zap.String("dimension", dimension),
			zap.Float64("price", price),
		)
	}

	value := price
	*dst = &value
}
