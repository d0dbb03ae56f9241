package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Manager holds the custom Prometheus metrics for the listing API.
type Manager struct {
	Registry             *prometheus.Registry
	ListingsCreatedTotal prometheus.Counter
	ListingUpdatesTotal  prometheus.Counter
	ListingDeletesTotal  prometheus.Counter
	APIErrorsTotal       *prometheus.CounterVec
	APILatency           *prometheus.HistogramVec
}

// NewManager initializes and registers the metrics on a dedicated registry.
func NewManager(serviceName string) *Manager {
	registry := prometheus.NewRegistry()

	listingsCreatedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listings_created_total",
		Help:      "Total number of listings created.",
	})
	listingUpdatesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listing_updates_total",
		Help:      "Total number of listings updated.",
	})
	listingDeletesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listing_deletes_total",
		Help:      "Total number of listings deleted.",
	})
	apiErrorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "api_errors_total",
		Help:      "Total number of non-2xx API responses by route.",
	}, []string{"route", "method", "status"})
	apiLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: serviceName,
		Name:      "api_request_latency_seconds",
		Help:      "Latency of API requests by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	registry.MustRegister(
		listingsCreatedTotal,
		listingUpdatesTotal,
		listingDeletesTotal,
		apiErrorsTotal,
		apiLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Manager{
		Registry:             registry,
		ListingsCreatedTotal: listingsCreatedTotal,
		ListingUpdatesTotal:  listingUpdatesTotal,
		ListingDeletesTotal:  listingDeletesTotal,
		APIErrorsTotal:       apiErrorsTotal,
		APILatency:           apiLatency,
	}
}

// Server exposes the registry via promhttp on its own port.
type Server struct {
	srv *http.Server
}

func NewServer(port string, registry *prometheus.Registry) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return &Server{srv: &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}}
}

func (s *Server) Start(log *zap.Logger) error {
	log.Info("Prometheus metrics server starting", zap.String("addr", s.srv.Addr), zap.String("path", "/metrics"))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
