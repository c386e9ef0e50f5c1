// Package api - Thin, deterministic API layer
// The API is ONLY responsible for: input decoding, engine orchestration, output serialization.
// The API NEVER performs tariff logic.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"solarwise/core/determinism"
	"solarwise/core/sizing"
	"solarwise/core/tariff"
	"solarwise/db"
	"solarwise/internal/errors"
	"solarwise/internal/logging"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// Options configures a Server
type Options struct {
	// Version is reported by /version and in response metadata
	Version string

	// DefaultCategory is used when a request names none
	DefaultCategory tariff.Category

	// VersionConstraint optionally pins schedule versions
	VersionConstraint string

	// Registry holds the tariff schedules (required)
	Registry *tariff.Registry

	// Sizer sizes systems (required)
	Sizer *sizing.Sizer

	// Store lists stored snapshots (optional)
	Store db.TariffStore

	// Logger logs requests (optional)
	Logger *zap.Logger

	// Now returns the billing date used to pick schedules (optional)
	Now func() time.Time
}

// Server is the API server
type Server struct {
	opts    Options
	handler *Handler
	mux     *http.ServeMux
	logger  *zap.Logger
}

// NewServer creates a new API server
func NewServer(opts Options) (*Server, error) {
	if opts.Registry == nil || opts.Sizer == nil {
		return nil, errors.New(errors.TypeConfig, "api server needs a tariff registry and a sizer")
	}
	if opts.DefaultCategory == "" {
		opts.DefaultCategory = tariff.CategoryDomestic
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		opts:    opts,
		handler: NewHandler(opts),
		mux:     http.NewServeMux(),
		logger:  opts.Logger.Named("api"),
	}
	s.registerRoutes()
	return s, nil
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("POST /calculator/recommendation", s.handler.handleRecommendation)
	s.mux.HandleFunc("POST /calculator/full", s.handler.handleFull)
	s.mux.HandleFunc("POST /calculator/bill", s.handler.handleBill)
	s.mux.HandleFunc("POST /calculator/units", s.handler.handleUnits)
	s.mux.HandleFunc("POST /quality/score", s.handler.handleScore)

	// Supporting endpoints
	s.mux.HandleFunc("GET /tariffs", s.handler.handleListTariffs)
	s.mux.HandleFunc("GET /tariffs/snapshots", s.handler.handleListSnapshots)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":    "healthy",
		"version":   s.opts.Version,
		"schedules": len(s.opts.Registry.Schedules()),
		"time":      time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"version":     s.opts.Version,
		"engine":      "solarwise",
		"api_version": "v1",
	}, http.StatusOK)
}

// ServeHTTP implements http.Handler. Every request gets an id, echoed in
// the X-Request-ID header, and one log line.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := generateRequestID()
	w.Header().Set("X-Request-ID", requestID)

	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	r = r.WithContext(withRequestID(r.Context(), requestID))
	s.mux.ServeHTTP(rec, r)

	s.logger.Info("request",
		logging.RequestID(requestID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", rec.status),
		zap.Duration("duration", time.Since(start)))
}

// ListenAndServe starts the server
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

type requestIDKey struct{}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func generateRequestID() string {
	return "req-" + uuid.NewString()
}

func writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeJSON(w, ErrorResponse{Error: ErrorBody{
		Code:      string(errors.TypeOf(err)),
		Message:   err.Error(),
		RequestID: requestIDFrom(r.Context()),
	}}, statusFor(err))
}

// statusFor maps error types to HTTP status codes
func statusFor(err error) int {
	switch errors.TypeOf(err) {
	case errors.TypeInput, errors.TypeSchedule, errors.TypeParsing:
		return http.StatusBadRequest
	case errors.TypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func computeInputHash(req interface{}) string {
	hash, _ := determinism.HashJSON(req)
	return hash.Hex()
}
