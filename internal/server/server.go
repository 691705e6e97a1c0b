package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quartzlab/tradepost/internal/catalog"
	"github.com/quartzlab/tradepost/internal/database"
	"github.com/quartzlab/tradepost/internal/economy"
	"github.com/quartzlab/tradepost/internal/equip"
	"github.com/quartzlab/tradepost/internal/handler"
	"github.com/quartzlab/tradepost/internal/inventory"
	"github.com/quartzlab/tradepost/internal/logger"
	"github.com/quartzlab/tradepost/internal/lootbox"
	"github.com/quartzlab/tradepost/internal/metrics"
	"github.com/quartzlab/tradepost/internal/trade"
	"github.com/quartzlab/tradepost/internal/wallet"
)

// Services bundles everything the router exposes.
type Services struct {
	Catalog   catalog.Service
	Inventory inventory.Service
	Wallet    wallet.Service
	Economy   economy.Service
	Lootbox   lootbox.Service
	Trade     trade.Service
	Equip     equip.Service
}

type Server struct {
	httpServer *http.Server
	dbPool     database.Pool
}

// NewServer creates a new Server instance
func NewServer(port int, apiKey string, trustedProxies []string, dbPool database.Pool, svcs Services) *Server {
	r := chi.NewRouter()

	// Middleware stack
	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(apiKey, trustedProxies, detector))
	r.Use(SecurityLoggingMiddleware(trustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(1 << 20)) // 1MB limit
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool))

	// Version endpoint (public, for deployment verification)
	r.Get("/version", handler.HandleVersion())

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	catalogHandler := handler.NewCatalogHandler(svcs.Catalog)
	tradeHandler := handler.NewTradeHandler(svcs.Trade)
	equipHandler := handler.NewEquipHandler(svcs.Equip)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Catalog reads
		r.Route("/items", func(r chi.Router) {
			r.Get("/", catalogHandler.HandleListItems)
			r.Get("/{itemID}", catalogHandler.HandleGetItem)
			r.Get("/{itemID}/contents", catalogHandler.HandleGetCaseContents)
		})

		// Wallet
		r.Get("/wallet", handler.HandleGetBalance(svcs.Wallet))

		// Purchases
		r.Post("/purchase", handler.HandlePurchaseItem(svcs.Economy))

		// Inventory and per-instance operations
		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", handler.HandleGetInventory(svcs.Inventory))
			r.Route("/{instanceID}", func(r chi.Router) {
				r.Get("/", handler.HandleGetInstance(svcs.Inventory))
				r.Post("/experience", handler.HandleAddExperience(svcs.Inventory))
				r.Post("/durability", handler.HandleMutateDurability(svcs.Inventory))
				r.Post("/repair", handler.HandleRepairInstance(svcs.Inventory))
				r.Post("/open", handler.HandleOpenCase(svcs.Lootbox))
			})
		})

		// Trades
		r.Route("/trades", func(r chi.Router) {
			r.Post("/", tradeHandler.HandleProposeTrade)
			r.Get("/", tradeHandler.HandleListTrades)
			r.Route("/{tradeID}", func(r chi.Router) {
				r.Get("/", tradeHandler.HandleGetTrade)
				r.Post("/accept", tradeHandler.HandleAcceptTrade)
				r.Post("/decline", tradeHandler.HandleDeclineTrade)
				r.Post("/cancel", tradeHandler.HandleCancelTrade)
			})
		})

		// Equip and rod assembly
		r.Route("/equip", func(r chi.Router) {
			r.Get("/", equipHandler.HandleGetEquipped)
			r.Post("/batch", equipHandler.HandleBatchEquip)
			r.Post("/batch/unequip", equipHandler.HandleBatchUnequip)
			r.Post("/category/unequip", equipHandler.HandleUnequipCategory)
			r.Route("/{instanceID}", func(r chi.Router) {
				r.Post("/", equipHandler.HandleEquip)
				r.Post("/unequip", equipHandler.HandleUnequip)
				r.Post("/parts", equipHandler.HandleAttachRodPart)
				r.Post("/parts/detach", equipHandler.HandleDetachRodPart)
			})
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Route("/items", func(r chi.Router) {
				r.Post("/", catalogHandler.HandleCreateItem)
				r.Put("/{itemID}", catalogHandler.HandleUpdateItem)
				r.Delete("/{itemID}", catalogHandler.HandleDeleteItem)
				r.Put("/{itemID}/contents", catalogHandler.HandleSetCaseContents)
				r.Post("/{itemID}/contents/validate", catalogHandler.HandleValidateCaseContents)
			})
			r.Post("/credits/grant", handler.HandleGrantCredits(svcs.Wallet))
			r.Post("/instances/grant", handler.HandleGrantInstance(svcs.Inventory))
			r.Post("/instances/{instanceID}/open", handler.HandleAuditOpenCase(svcs.Lootbox))
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		dbPool: dbPool,
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // default status
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip logging for health check endpoints and metrics
		// Use HasPrefix to catch potential variations (e.g. /healthz/)
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		// Generate unique request ID
		requestID := logger.GenerateRequestID()

		// Add request ID to context
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		// Get scoped logger
		log := logger.FromContext(ctx)

		// Log request start with details
		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		// Sanitize headers for logging
		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAuthorization) {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitizedHeaders)

		// Wrap response writer to capture status code
		rw := newResponseWriter(w)

		// Process request
		next.ServeHTTP(rw, r)

		// Log request completion with metrics
		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"duration", duration)
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
