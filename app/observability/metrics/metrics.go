package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	PlaceSearchesTotal        metric.Int64Counter
	PlaceSearchErrorsTotal    metric.Int64Counter
	PlaceSearchDuration       metric.Float64Histogram
	LLMRequestsTotal          metric.Int64Counter
	LLMRequestErrorsTotal     metric.Int64Counter
	ItineraryDuration         metric.Float64Histogram
	ItineraryRepeatViolations metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments exactly once,
// using the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("tourist-app-binan")
		var err error
		m := &AppMetrics{}

		m.PlaceSearchesTotal, err = meter.Int64Counter(
			"place_searches_total",
			metric.WithDescription("Total number of places-provider search calls issued"),
			metric.WithUnit("{call}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create place_searches_total: %v", err)
		}

		m.PlaceSearchErrorsTotal, err = meter.Int64Counter(
			"place_search_errors_total",
			metric.WithDescription("Total number of failed places-provider calls (skipped grid points)"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create place_search_errors_total: %v", err)
		}

		m.PlaceSearchDuration, err = meter.Float64Histogram(
			"place_search_duration_seconds",
			metric.WithDescription("Duration of aggregated grid searches in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create place_search_duration_seconds: %v", err)
		}

		m.LLMRequestsTotal, err = meter.Int64Counter(
			"llm_requests_total",
			metric.WithDescription("Total number of text-generation requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create llm_requests_total: %v", err)
		}

		m.LLMRequestErrorsTotal, err = meter.Int64Counter(
			"llm_request_errors_total",
			metric.WithDescription("Total number of failed text-generation requests"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create llm_request_errors_total: %v", err)
		}

		m.ItineraryDuration, err = meter.Float64Histogram(
			"itinerary_generation_duration_seconds",
			metric.WithDescription("End-to-end duration of itinerary assembly in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_generation_duration_seconds: %v", err)
		}

		m.ItineraryRepeatViolations, err = meter.Int64Counter(
			"itinerary_repeat_violations_total",
			metric.WithDescription("Day plans that repeated a place despite the exclusion instruction"),
			metric.WithUnit("{violation}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_repeat_violations_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
