package retail

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/davidbz/tally/internal/domain"
	"github.com/davidbz/tally/internal/metrics"
)

// Client fetches the retail price list over plain paginated GET requests.
type Client struct {
	baseURL     string
	serviceName string
	currency    string
	httpClient  *http.Client
	metrics     *metrics.Metrics
}

// NewClient creates a new retail prices client. Metrics may be nil.
func NewClient(config Config, m *metrics.Metrics) *Client {
	return &Client{
		baseURL:     config.BaseURL,
		serviceName: config.ServiceName,
		currency:    config.Currency,
		httpClient: &http.Client{
			Timeout: time.Duration(config.Timeout) * time.Second,
		},
		metrics: m,
	}
}

// Currency returns the configured currency code.
func (c *Client) Currency() string {
	return c.currency
}

// page is one response page of the retail prices API.
type page struct {
	Items        []domain.RawPrice `json:"Items"`
	NextPageLink string            `json:"NextPageLink"`
}

// FetchRegionPrices returns every price record for the region, following
// NextPageLink until exhausted. The filter ANDs three exact-match predicates:
// service name, region and currency.
func (c *Client) FetchRegionPrices(ctx context.Context, region string) ([]domain.RawPrice, error) {
	filter := fmt.Sprintf("serviceName eq '%s' and armRegionName eq '%s' and currencyCode eq '%s'",
		c.serviceName, region, c.currency)

	query := url.Values{}
	query.Set("$filter", filter)

	started := time.Now()
	pages := 0
	next := c.baseURL + "?" + query.Encode()

	var items []domain.RawPrice
	for next != "" {
		result, err := c.fetchPage(ctx, next)
		if err != nil {
			if c.metrics != nil {
				c.metrics.ObserveRetailFetch(region, pages, time.Since(started), err)
			}
			return nil, err
		}

		items = append(items, result.Items...)
		pages++
		next = result.NextPageLink
	}

	if c.metrics != nil {
		c.metrics.ObserveRetailFetch(region, pages, time.Since(started), nil)
	}

	return items, nil
}

func (c *Client) fetchPage(ctx context.Context, pageURL string) (*page, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result page
	if decodeErr := json.NewDecoder(resp.Body).Decode(&result); decodeErr != nil {
		return nil, fmt.Errorf("failed to decode response: %w", decodeErr)
	}

	return &result, nil
}
