// Package api exposes the HTTP surface of the search and pricing service.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"needlist/internal/observability"
	"needlist/internal/pricing"
	"needlist/internal/search"
	"needlist/internal/storage"
)

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	searcher  *search.Aggregator
	pricer    *pricing.Service
	wishlists storage.WishlistStore
	items     storage.ItemStore
	events    storage.SearchEventStore
	logger    *log.Logger
	metrics   *observability.Metrics

	mu      sync.Mutex
	started time.Time
}

// Options configures a Server. Search, Pricing, Wishlists and Items are
// required; Events and Metrics are optional.
type Options struct {
	Search    *search.Aggregator
	Pricing   *pricing.Service
	Wishlists storage.WishlistStore
	Items     storage.ItemStore
	Events    storage.SearchEventStore
	Logger    *log.Logger
	Metrics   *observability.Metrics
}

// NewServer creates the API server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Server{
		searcher:  opts.Search,
		pricer:    opts.Pricing,
		wishlists: opts.Wishlists,
		items:     opts.Items,
		events:    opts.Events,
		logger:    logger,
		metrics:   opts.Metrics,
		started:   time.Now(),
	}
}

// Routes returns the HTTP handler with all endpoints registered.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /search", s.instrument("search", s.handleSearch))
	mux.HandleFunc("GET /wishlist/{id}/pricing", s.instrument("wishlist_pricing", s.handleWishlistPricing))
	mux.HandleFunc("GET /wishlist/{id}/amazon-pricing", s.instrument("wishlist_amazon_pricing", s.handleWishlistAmazonPricing))
	mux.HandleFunc("GET /item/{id}/pricing", s.instrument("item_pricing", s.handleItemPricing))
	mux.HandleFunc("GET /ws/wishlist/{id}/pricing", s.handlePricingStream)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.Handle("GET /metrics", observability.Handler())

	return mux
}

// statusRecorder captures the response status for the requests counter.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument counts requests per endpoint and status class.
func (s *Server) instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		if s.metrics != nil {
			s.metrics.HTTPRequestsTotal.WithLabelValues(endpoint, observability.StatusClass(rec.status)).Inc()
		}
	}
}

// dataEnvelope is the uniform success payload.
type dataEnvelope struct {
	Data any `json:"data"`
}

// errorEnvelope is the uniform failure payload.
type errorEnvelope struct {
	Error string `json:"error"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dataEnvelope{Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorEnvelope{Error: message})
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status          string `json:"status"`
	Uptime          string `json:"uptime"`
	SearchesPastDay int64  `json:"searches_past_day,omitempty"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status: "running",
		Uptime: time.Since(s.started).String(),
	}
	s.mu.Unlock()

	if s.events != nil {
		since := time.Now().Add(-24 * time.Hour).UnixMilli()
		if count, err := s.events.CountSince(r.Context(), since); err == nil {
			resp.SearchesPastDay = count
		} else {
			s.logger.Printf("status: count search events: %v", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
