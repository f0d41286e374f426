package retail_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/tally/internal/domain"
	"github.com/davidbz/tally/internal/metrics"
	"github.com/davidbz/tally/internal/retail"
)

func testConfig(baseURL, currency string) retail.Config {
	return retail.Config{
		BaseURL:     baseURL,
		ServiceName: "Cognitive Services",
		Currency:    currency,
		Timeout:     5,
	}
}

func TestClient_FetchRegionPrices(t *testing.T) {
	ctx := context.Background()

	t.Run("sends exact-match filter predicates", func(t *testing.T) {
		var gotFilter string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotFilter = r.URL.Query().Get("$filter")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"Items":        []domain.RawPrice{},
				"NextPageLink": nil,
			})
		}))
		defer server.Close()

		client := retail.NewClient(testConfig(server.URL, "EUR"), nil)

		_, err := client.FetchRegionPrices(ctx, "westeurope")
		require.NoError(t, err)

		require.Equal(t,
			"serviceName eq 'Cognitive Services' and armRegionName eq 'westeurope' and currencyCode eq 'EUR'",
			gotFilter)
	})

	t.Run("follows NextPageLink until null and concatenates items", func(t *testing.T) {
		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/page2":
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"Items": []domain.RawPrice{
						{MeterName: "gpt-4 Output Tokens", SkuName: "GPT-4", UnitPrice: 0.06},
					},
					"NextPageLink": nil,
				})
			default:
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"Items": []domain.RawPrice{
						{MeterName: "gpt-4 Input Tokens", SkuName: "GPT-4", UnitPrice: 0.03},
					},
					"NextPageLink": server.URL + "/page2",
				})
			}
		}))
		defer server.Close()

		client := retail.NewClient(testConfig(server.URL, "USD"), metrics.NewMetrics())

		items, err := client.FetchRegionPrices(ctx, "eastus")
		require.NoError(t, err)

		require.Len(t, items, 2)
		require.Equal(t, "gpt-4 Input Tokens", items[0].MeterName)
		require.Equal(t, "gpt-4 Output Tokens", items[1].MeterName)
	})

	t.Run("non-2xx responses fail the fetch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "throttled", http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := retail.NewClient(testConfig(server.URL, "USD"), nil)

		_, err := client.FetchRegionPrices(ctx, "eastus")
		require.Error(t, err)
		require.Contains(t, err.Error(), "429")
	})

	t.Run("malformed JSON fails the fetch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("{not json"))
		}))
		defer server.Close()

		client := retail.NewClient(testConfig(server.URL, "USD"), nil)

		_, err := client.FetchRegionPrices(ctx, "eastus")
		require.Error(t, err)
	})

	t.Run("currency accessor reflects configuration", func(t *testing.T) {
		client := retail.NewClient(testConfig("http://unused", "GBP"), nil)
		require.Equal(t, "GBP", client.Currency())
	})
}
