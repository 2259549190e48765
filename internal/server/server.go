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

	"github.com/tradequest/tradequest/internal/contest"
	"github.com/tradequest/tradequest/internal/database"
	"github.com/tradequest/tradequest/internal/handler"
	"github.com/tradequest/tradequest/internal/logger"
	"github.com/tradequest/tradequest/internal/market"
	"github.com/tradequest/tradequest/internal/metrics"
	"github.com/tradequest/tradequest/internal/profile"
)

type Server struct {
	httpServer     *http.Server
	dbPool         database.Pool
	profileService profile.Service
	contestService contest.Service
	marketSource   market.Source
}

// NewServer wires the middleware stack and routes.
func NewServer(port int, apiKey string, trustedProxies []string, dbPool database.Pool, profileService profile.Service, contestService contest.Service, marketSource market.Source) *Server {
	r := chi.NewRouter()

	// Chi middleware executes in order defined, outermost first.
	detector := NewSuspiciousActivityDetector()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(apiKey, trustedProxies, detector))
	r.Use(RateLimitMiddleware(trustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(1 << 20)) // 1MB limit
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool))

	// Version endpoint for deployment verification
	r.Get("/version", handler.HandleVersion())

	// Metrics endpoint for Prometheus scraping
	r.Handle("/metrics", promhttp.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		profileHandler := handler.NewProfileHandler(profileService)
		r.Route("/profile", func(r chi.Router) {
			r.Post("/register", profileHandler.HandleRegister)
			r.Get("/", profileHandler.HandleGetProfile)
		})

		tradeHandler := handler.NewTradeHandler(profileService)
		r.Route("/trade", func(r chi.Router) {
			r.Post("/settle", tradeHandler.HandleSettleTrade)
			r.Get("/history", tradeHandler.HandleTradeHistory)
		})

		contestHandler := handler.NewContestHandler(contestService)
		r.Get("/contest", contestHandler.HandleGetContest)
		r.Route("/contest", func(r chi.Router) {
			r.Post("/create", contestHandler.HandleCreateContest)
			r.Post("/join", contestHandler.HandleJoinContest)
			r.Post("/resolve", contestHandler.HandleResolveRound)
			r.Post("/next-round", contestHandler.HandleNextRound)
			r.Get("/leaderboard", contestHandler.HandleLeaderboard)
		})

		marketHandler := handler.NewMarketHandler(marketSource)
		r.Route("/market", func(r chi.Router) {
			r.Get("/candles", marketHandler.HandleGetCandles)
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		dbPool:         dbPool,
		profileService: profileService,
		contestService: contestService,
		marketSource:   marketSource,
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
		statusCode:     http.StatusOK,
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

		// Health and metrics probes are too chatty to log.
		if strings.HasPrefix(r.URL.Path, "/healthz") ||
			strings.HasPrefix(r.URL.Path, "/readyz") ||
			strings.HasPrefix(r.URL.Path, "/metrics") {
			next.ServeHTTP(w, r)
			return
		}

		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)
		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, "Authorization") {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug("Request headers", "headers", sanitizedHeaders)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

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
