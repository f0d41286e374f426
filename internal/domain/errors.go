package domain

import "fmt"

// PricingNotFoundError reports a model with no entry in a region's price
// table. The message carries the caller's original model spelling, not the
// canonical key.
type PricingNotFoundError struct {
	Model  string
	Region string
}

func (e *PricingNotFoundError) Error() string {
	return fmt.Sprintf("Pricing for model %q not found in region %q.", e.Model, e.Region)
}

// UnsupportedMeterShapeError reports meters that match none of the known
// billing shapes (text, embedding, image). Well-formed upstream data never
// produces this.
type UnsupportedMeterShapeError struct {
	Key string
}

func (e *UnsupportedMeterShapeError) Error() string {
	return fmt.Sprintf("model %q has no usable billing meters for the given usage", e.Key)
}
