package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"casamira/internal/audit"
	"casamira/internal/config"
	"casamira/internal/domain"
	"casamira/internal/export"
	"casamira/internal/session"

	"github.com/rs/zerolog"
)

// Server exposes the public site and the staff admin area. Page rendering is
// delegated to the presentation layer; handlers deal in form posts, redirects
// and JSON page payloads.
type Server struct {
	cfg      *config.Config
	server   *http.Server
	sessions *session.Manager
	authn    domain.Authenticator
	bookings domain.BookingService
	content  domain.ContentService
	feedback domain.FeedbackService
	exporter *export.BookingExporter
	auditLog *audit.Log
	limiter  *loginLimiter
	logger   *zerolog.Logger
}

type Deps struct {
	Sessions *session.Manager
	Authn    domain.Authenticator
	Bookings domain.BookingService
	Content  domain.ContentService
	Feedback domain.FeedbackService
	Exporter *export.BookingExporter
	AuditLog *audit.Log
}

func NewServer(cfg *config.Config, deps Deps, logger *zerolog.Logger) *Server {
	srv := &Server{
		cfg:      cfg,
		sessions: deps.Sessions,
		authn:    deps.Authn,
		bookings: deps.Bookings,
		content:  deps.Content,
		feedback: deps.Feedback,
		exporter: deps.Exporter,
		auditLog: deps.AuditLog,
		limiter:  newLoginLimiter(cfg.Server.LoginRateLimit),
		logger:   logger,
	}

	mux := http.NewServeMux()

	// Public site
	mux.HandleFunc("GET /{$}", srv.handleHome)
	mux.HandleFunc("GET /about", srv.handlePage("about"))
	mux.HandleFunc("GET /rooms", srv.handlePage("rooms"))
	mux.HandleFunc("GET /gallery", srv.handlePage("gallery"))
	mux.HandleFunc("GET /contact", srv.handlePage("contact"))
	mux.HandleFunc("POST /contact", srv.handleSubmitFeedback)
	mux.HandleFunc("POST /book", srv.handleSubmitBooking)

	// Admin area
	mux.HandleFunc("GET /admin/login", srv.handleLoginPage)
	mux.HandleFunc("POST /admin/login", srv.handleLogin)
	mux.HandleFunc("GET /admin/logout", srv.handleLogout)
	mux.HandleFunc("GET /admin", srv.requireAuth(srv.handleDashboard))

	mux.HandleFunc("GET /admin/features", srv.requireAuth(srv.handleListFeatures))
	mux.HandleFunc("POST /admin/features/add", srv.requireAuth(srv.handleAddFeature))
	mux.HandleFunc("POST /admin/features/edit/{id}", srv.requireAuth(srv.handleEditFeature))
	mux.HandleFunc("POST /admin/features/delete/{id}", srv.requireAuth(srv.handleDeleteFeature))

	mux.HandleFunc("GET /admin/nearby", srv.requireAuth(srv.handleListNearby))
	mux.HandleFunc("POST /admin/nearby/add", srv.requireAuth(srv.handleAddNearby))
	mux.HandleFunc("POST /admin/nearby/edit/{id}", srv.requireAuth(srv.handleEditNearby))
	mux.HandleFunc("POST /admin/nearby/delete/{id}", srv.requireAuth(srv.handleDeleteNearby))

	mux.HandleFunc("GET /admin/feedback", srv.requireAuth(srv.handleListFeedback))
	mux.HandleFunc("POST /admin/feedback/mark_read/{id}", srv.requireAuth(srv.handleMarkFeedbackRead))
	mux.HandleFunc("POST /admin/feedback/delete/{id}", srv.requireAuth(srv.handleDeleteFeedback))

	mux.HandleFunc("GET /admin/bookings", srv.requireAuth(srv.handleListBookings))
	mux.HandleFunc("POST /admin/bookings/status/{id}", srv.requireAuth(srv.handleSetBookingStatus))
	mux.HandleFunc("POST /admin/bookings/delete/{id}", srv.requireAuth(srv.handleDeleteBooking))
	mux.HandleFunc("GET /admin/bookings/export", srv.requireAuth(srv.handleExportBookings))

	mux.HandleFunc("GET /admin/audit", srv.requireAuth(srv.handleAuditTrail))

	mux.HandleFunc("GET /healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(mux)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler returns the root handler, used directly by httptest in tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("web server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
