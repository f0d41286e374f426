package retail

// Config contains retail pricing service settings. The service name, region
// and currency become exact-match filter predicates on every fetch; the
// currency is fixed at construction and never converted afterwards.
type Config struct {
	BaseURL     string `env:"RETAIL_API_BASE_URL"     envDefault:"https://prices.azure.com/api/retail/prices"`
	ServiceName string `env:"RETAIL_API_SERVICE_NAME" envDefault:"Cognitive Services"`
	Currency    string `env:"PRICING_CURRENCY"        envDefault:"USD"`
	Timeout     int    `env:"RETAIL_API_TIMEOUT"      envDefault:"30"`
}
