package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/smartdevs17/event-ticketing/internal/chain"
	"github.com/smartdevs17/event-ticketing/internal/metrics"
	"github.com/smartdevs17/event-ticketing/internal/payments"
	"github.com/smartdevs17/event-ticketing/internal/storage"
	"github.com/smartdevs17/event-ticketing/internal/ticketing"
	"github.com/smartdevs17/event-ticketing/pkg/utils"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port          int           `json:"port"`
	Host          string        `json:"host"`
	ReadTimeout   time.Duration `json:"read_timeout"`
	WriteTimeout  time.Duration `json:"write_timeout"`
	EnableMetrics bool          `json:"enable_metrics"`
	EnableHealth  bool          `json:"enable_health"`
}

// HTTPServer exposes the contract operations and the query layer. The caller
// identity travels in the request body of mutating calls; the server trusts
// it as supplied, matching the contract's identity model.
type HTTPServer struct {
	config         *ServerConfig
	server         *http.Server
	router         *mux.Router
	engine         *ticketing.Engine
	store          storage.Store
	bank           payments.Bank
	manualHeights  *chain.ManualSource
	metricsManager *metrics.Manager
	logger         *logrus.Logger
	validate       *validator.Validate
}

// NewHTTPServer creates a new HTTP server
func NewHTTPServer(
	config *ServerConfig,
	engine *ticketing.Engine,
	store storage.Store,
	bank payments.Bank,
	manualHeights *chain.ManualSource,
	metricsManager *metrics.Manager,
) (*HTTPServer, error) {

	server := &HTTPServer{
		config:         config,
		engine:         engine,
		store:          store,
		bank:           bank,
		manualHeights:  manualHeights,
		metricsManager: metricsManager,
		logger:         utils.GetLogger(),
		validate:       validator.New(),
	}

	// Setup router
	server.setupRouter()

	// Create HTTP server
	server.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      server.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return server, nil
}

// setupRouter sets up the HTTP routes
func (s *HTTPServer) setupRouter() {
	s.router = mux.NewRouter()

	// Middleware
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.corsMiddleware)
	if s.metricsManager != nil {
		s.router.Use(s.metricsMiddleware)
	}

	// API routes
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Health check endpoints
	if s.config.EnableHealth {
		api.HandleFunc("/health", s.healthHandler).Methods("GET")
		api.HandleFunc("/health/detailed", s.detailedHealthHandler).Methods("GET")
	}

	// Metrics endpoint
	if s.config.EnableMetrics {
		s.router.Handle("/metrics", promhttp.Handler())
		api.HandleFunc("/stats", s.statsHandler).Methods("GET")
	}

	// Event operations
	api.HandleFunc("/events", s.createEventHandler).Methods("POST")
	api.HandleFunc("/events/{id}", s.getEventHandler).Methods("GET")
	api.HandleFunc("/events/{id}/tickets", s.purchaseTicketHandler).Methods("POST")

	// Ticket operations
	api.HandleFunc("/tickets/{id}", s.getTicketHandler).Methods("GET")
	api.HandleFunc("/tickets/{id}/validate", s.validateTicketHandler).Methods("POST")
	api.HandleFunc("/tickets/{id}/refund", s.refundTicketHandler).Methods("POST")

	// Query layer
	api.HandleFunc("/users/{address}/tickets", s.userTicketsHandler).Methods("GET")
	api.HandleFunc("/organizers/{address}/revenue", s.organizerRevenueHandler).Methods("GET")
	api.HandleFunc("/platform-fee", s.calculateFeeHandler).Methods("GET")

	// Administration
	api.HandleFunc("/admin/platform-fee", s.updatePlatformFeeHandler).Methods("PUT")
	api.HandleFunc("/admin/min-ticket-price", s.updateMinTicketPriceHandler).Methods("PUT")

	// Ledger height
	api.HandleFunc("/height", s.heightHandler).Methods("GET")
	api.HandleFunc("/height/advance", s.advanceHeightHandler).Methods("POST")

	// Dev faucet for the in-memory bank
	api.HandleFunc("/bank/deposit", s.depositHandler).Methods("POST")
	api.HandleFunc("/bank/balance/{address}", s.balanceHandler).Methods("GET")
}

// Start starts the HTTP server
func (s *HTTPServer) Start() error {
	s.logger.WithFields(logrus.Fields{
		"address":         s.server.Addr,
		"metrics_enabled": s.config.EnableMetrics,
	}).Info("Starting HTTP server")

	if s.metricsManager != nil {
		s.metricsManager.UpdateSystemMetrics()
		go s.systemMetricsUpdater()
	}

	// Create a channel to receive startup errors
	errChan := make(chan error, 1)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("HTTP server error")
			errChan <- err
		}
	}()

	// Give the server a moment to fail fast on bind errors
	select {
	case err := <-errChan:
		return utils.NewAppError(utils.ErrCodeInternal, "Failed to start HTTP server", err.Error())
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// Stop stops the HTTP server gracefully
func (s *HTTPServer) Stop() error {
	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// Router returns the underlying router, used by handler tests
func (s *HTTPServer) Router() http.Handler {
	return s.router
}

func (s *HTTPServer) systemMetricsUpdater() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.metricsManager.UpdateSystemMetrics()
	}
}

// healthHandler returns basic liveness
func (s *HTTPServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

// detailedHealthHandler reports per-component health
func (s *HTTPServer) detailedHealthHandler(w http.ResponseWriter, r *http.Request) {
	components := map[string]bool{}

	storageHealthy := true
	if s.store != nil {
		storageHealthy = s.store.Ping() == nil
	}
	components["storage"] = storageHealthy

	status := "healthy"
	httpStatus := http.StatusOK
	for _, healthy := range components {
		if !healthy {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	if s.metricsManager != nil {
		for name, healthy := range components {
			s.metricsManager.GetPrometheusMetrics().UpdateComponentHealth(name, healthy)
		}
	}

	s.writeJSON(w, httpStatus, map[string]interface{}{
		"status":     status,
		"components": components,
		"timestamp":  time.Now(),
	})
}

// statsHandler returns engine and storage statistics
func (s *HTTPServer) statsHandler(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"engine": s.engine.GetStats(),
	}

	if s.store != nil {
		if storeStats, err := s.store.GetStats(); err == nil {
			stats["storage"] = storeStats
		}
	}

	s.writeJSON(w, http.StatusOK, stats)
}
