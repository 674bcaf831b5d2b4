package web

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"casamira/internal/auth"
	"casamira/internal/models"
	"casamira/internal/service"
	"casamira/internal/store"
)

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if sess := s.currentSession(r); sess != nil && sess.Authenticated {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"page": "login"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, "too many login attempts, try again later")
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	// A second, per-account limit survives across clients.
	if !s.sessions.CheckLoginRateLimit(r.Context(), username) {
		writeError(w, http.StatusTooManyRequests, "too many login attempts, try again later")
		return
	}

	user, err := s.authn.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Warn().Str("username", username).Msg("failed login attempt")
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.logger.Error().Err(err).Msg("authentication failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	sess, err := s.sessions.Establish(r.Context(), user)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to establish session")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.setSessionCookie(w, sess.Token)
	s.sessions.Flash(r.Context(), sess, "success", "Login successful!")
	s.logger.Info().Str("username", user.Username).Str("role", user.Role).Msg("staff login")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.cfg.Sessions.CookieName); err == nil {
		if err := s.sessions.Logout(r.Context(), cookie.Value); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drop session")
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	bookings, err := s.bookings.List(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load bookings")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	feedback, err := s.feedback.List(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load feedback")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	pending := 0
	for _, b := range bookings {
		if b.Status == models.StatusPending {
			pending++
		}
	}
	unread := 0
	for _, f := range feedback {
		if !f.Read {
			unread++
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"page":             "dashboard",
		"user":             map[string]string{"name": sess.Name, "role": sess.Role},
		"total_bookings":   len(bookings),
		"pending_bookings": pending,
		"unread_feedback":  unread,
		"flashes":          s.sessions.PopFlashes(r.Context(), sess),
	})
}

// Features

func (s *Server) handleListFeatures(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	features, err := s.content.ListFeatures(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load features")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"features": features,
		"flashes":  s.sessions.PopFlashes(r.Context(), sess),
	})
}

func (s *Server) handleAddFeature(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	feature := &models.Feature{
		Icon:        r.FormValue("icon"),
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Image:       r.FormValue("image"),
	}
	if feature.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if err := s.content.AddFeature(r.Context(), feature, sess.Actor()); err != nil {
		s.failAdmin(w, r, sess, err, "/admin/features")
		return
	}
	s.redirectWithFlash(w, r, sess, "success", "Feature added successfully!", "/admin/features")
}

func (s *Server) handleEditFeature(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	feature := models.Feature{
		ID:          id,
		Icon:        r.FormValue("icon"),
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Image:       r.FormValue("image"),
	}
	if err := s.content.EditFeature(r.Context(), feature, sess.Actor()); err != nil {
		s.failAdmin(w, r, sess, err, "/admin/features")
		return
	}
	s.redirectWithFlash(w, r, sess, "success", "Feature updated successfully!", "/admin/features")
}

func (s *Server) handleDeleteFeature(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.content.DeleteFeature(r.Context(), id, sess.Actor()); err != nil {
		s.failAdmin(w, r, sess, err, "/admin/features")
		return
	}
	s.redirectWithFlash(w, r, sess, "success", "Feature deleted successfully!", "/admin/features")
}

// Nearby places

func (s *Server) handleListNearby(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	nearby, err := s.content.ListNearby(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load nearby places")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"nearby":  nearby,
		"flashes": s.sessions.PopFlashes(r.Context(), sess),
	})
}

func (s *Server) handleAddNearby(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	place := &models.NearbyPlace{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Image:       r.FormValue("image"),
		Distance:    r.FormValue("distance"),
	}
	if place.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if err := s.content.AddNearby(r.Context(), place, sess.Actor()); err != nil {
		s.failAdmin(w, r, sess, err, "/admin/nearby")
		return
	}
	s.redirectWithFlash(w, r, sess, "success", "Place added successfully!", "/admin/nearby")
}

func (s *Server) handleEditNearby(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	place := models.NearbyPlace{
		ID:          id,
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Image:       r.FormValue("image"),
		Distance:    r.FormValue("distance"),
	}
	if err := s.content.EditNearby(r.Context(), place, sess.Actor()); err != nil {
		s.failAdmin(w, r, sess, err, "/admin/nearby")
		return
	}
	s.redirectWithFlash(w, r, sess, "success", "Place updated successfully!", "/admin/nearby")
}

func (s *Server) handleDeleteNearby(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.content.DeleteNearby(r.Context(), id, sess.Actor()); err != nil {
		s.failAdmin(w, r, sess, err, "/admin/nearby")
		return
	}
	s.redirectWithFlash(w, r, sess, "success", "Place deleted successfully!", "/admin/nearby")
}

// Feedback

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	entries, err := s.feedback.List(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load feedback")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"feedback": entries,
		"flashes":  s.sessions.PopFlashes(r.Context(), sess),
	})
}

func (s *Server) handleMarkFeedbackRead(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.feedback.MarkRead(r.Context(), id, sess.Actor()); err != nil {
		s.failAdmin(w, r, sess, err, "/admin/feedback")
		return
	}
	s.redirectWithFlash(w, r, sess, "success", "Feedback marked as read", "/admin/feedback")
}

func (s *Server) handleDeleteFeedback(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.feedback.Delete(r.Context(), id, sess.Actor()); err != nil {
		s.failAdmin(w, r, sess, err, "/admin/feedback")
		return
	}
	s.redirectWithFlash(w, r, sess, "success", "Feedback deleted", "/admin/feedback")
}

// Bookings

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	bookings, err := s.bookings.List(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load bookings")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"bookings": bookings,
		"flashes":  s.sessions.PopFlashes(r.Context(), sess),
	})
}

func (s *Server) handleSetBookingStatus(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	status := r.FormValue("status")

	if _, err := s.bookings.SetStatus(r.Context(), id, status, sess.Actor()); err != nil {
		s.failAdmin(w, r, sess, err, "/admin/bookings")
		return
	}
	s.redirectWithFlash(w, r, sess, "success", "Booking status updated to "+status, "/admin/bookings")
}

func (s *Server) handleDeleteBooking(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.bookings.Delete(r.Context(), id, sess.Actor()); err != nil {
		s.failAdmin(w, r, sess, err, "/admin/bookings")
		return
	}
	s.redirectWithFlash(w, r, sess, "success", "Booking deleted", "/admin/bookings")
}

func (s *Server) handleExportBookings(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	bookings, err := s.bookings.List(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load bookings")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	path, err := s.exporter.Export(bookings)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to export bookings")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(path))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	http.ServeFile(w, r, path)
}

// Audit trail

func (s *Server) handleAuditTrail(w http.ResponseWriter, r *http.Request, sess *models.Session) {
	if s.auditLog == nil {
		writeJSON(w, http.StatusOK, map[string]any{"entries": []any{}})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	entries, err := s.auditLog.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load audit trail")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// pathID parses the {id} path segment; on failure it writes the error response
// and reports false.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, sess *models.Session, kind, message, target string) {
	s.sessions.Flash(r.Context(), sess, kind, message)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// failAdmin maps a service error onto the admin form flow: known failures turn
// into a flash notice and a redirect back, the rest into a 500.
func (s *Server) failAdmin(w http.ResponseWriter, r *http.Request, sess *models.Session, err error, target string) {
	switch {
	case errors.Is(err, auth.ErrForbidden):
		s.redirectWithFlash(w, r, sess, "error", "You don't have permission to do that", target)
	case errors.Is(err, store.ErrNotFound):
		s.redirectWithFlash(w, r, sess, "error", "Record not found", target)
	case errors.Is(err, service.ErrInvalidStatus):
		s.redirectWithFlash(w, r, sess, "error", "Invalid booking status", target)
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("admin operation failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
