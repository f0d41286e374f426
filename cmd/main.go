package main

import (
	"log"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/davidbz/tally/internal/config"
	"github.com/davidbz/tally/internal/domain"
	"github.com/davidbz/tally/internal/http"
	"github.com/davidbz/tally/internal/http/middleware"
	"github.com/davidbz/tally/internal/metrics"
	"github.com/davidbz/tally/internal/observability"
	"github.com/davidbz/tally/internal/retail"
)

func main() {
	container := buildContainer()

	err := container.Invoke(func(server *http.Server) {
		if err := server.Start(); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}
	if err := container.Provide(func(logger *zap.Logger) domain.EventPublisher {
		return observability.NewEventBus(logger)
	}); err != nil {
		log.Fatalf("Failed to provide event bus: %v", err)
	}
	if err := container.Provide(metrics.NewMetrics); err != nil {
		log.Fatalf("Failed to provide metrics: %v", err)
	}

	// Retail prices client
	if err := container.Provide(func(cfg *retail.Config, m *metrics.Metrics) *retail.Client {
		return retail.NewClient(*cfg, m)
	}); err != nil {
		log.Fatalf("Failed to provide retail client: %v", err)
	}
	if err := container.Provide(func(client *retail.Client) domain.PriceFetcher {
		return client
	}); err != nil {
		log.Fatalf("Failed to provide price fetcher: %v", err)
	}

	// Domain Services
	if err := container.Provide(func(
		fetcher domain.PriceFetcher,
		pricingCfg *config.PricingConfig,
		events domain.EventPublisher,
		m *metrics.Metrics,
	) *domain.PricingCache {
		return domain.NewPricingCache(fetcher, pricingCfg.CacheTTL(), events, m)
	}); err != nil {
		log.Fatalf("Failed to provide pricing cache: %v", err)
	}
	if err := container.Provide(func(
		cache *domain.PricingCache,
		retailCfg *retail.Config,
		events domain.EventPublisher,
		m *metrics.Metrics,
	) *domain.EstimatorService {
		return domain.NewEstimatorService(cache, retailCfg.Currency, events, m)
	}); err != nil {
		log.Fatalf("Failed to provide estimator service: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(http.NewHandler); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(http.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}
