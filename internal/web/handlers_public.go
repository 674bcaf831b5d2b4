package web

import (
	"net/http"
	"strconv"
	"strings"

	"casamira/internal/models"
)

// handleHome serves the landing page payload: the content collections plus
// guest feedback, which doubles as the testimonials block.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	features, err := s.content.ListFeatures(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load features")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	nearby, err := s.content.ListNearby(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load nearby places")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	testimonials, err := s.feedback.List(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load feedback")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"page":         "home",
		"features":     features,
		"nearby":       nearby,
		"testimonials": testimonials,
	})
}

// handlePage serves static informational pages; their content lives in the
// presentation layer, the payload carries only the page identity.
func (s *Server) handlePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"page": name})
	}
}

// handleSubmitFeedback accepts the contact form. Anyone may post; the entry
// lands in the feedback collection for staff review. Fields are stored as
// submitted, without validation.
func (s *Server) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	entry := &models.FeedbackEntry{
		Name:    strings.TrimSpace(r.FormValue("name")),
		Email:   strings.TrimSpace(r.FormValue("email")),
		Message: strings.TrimSpace(r.FormValue("message")),
	}

	if err := s.feedback.Submit(r.Context(), entry); err != nil {
		s.logger.Error().Err(err).Msg("failed to save feedback")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.Redirect(w, r, "/contact?submitted=1", http.StatusSeeOther)
}

// handleSubmitBooking accepts the public booking form. New bookings always
// start out pending. Submitted fields are stored as-is: empty names,
// malformed dates and negative guest counts all pass through unchanged.
func (s *Server) handleSubmitBooking(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	// Non-numeric input parses to 0; valid values, negative included, are
	// kept verbatim.
	guests, _ := strconv.Atoi(r.FormValue("guests"))

	booking := &models.Booking{
		Name:            strings.TrimSpace(r.FormValue("name")),
		Email:           strings.TrimSpace(r.FormValue("email")),
		Phone:           strings.TrimSpace(r.FormValue("phone")),
		RoomType:        r.FormValue("room_type"),
		CheckIn:         r.FormValue("check_in"),
		CheckOut:        r.FormValue("check_out"),
		Guests:          guests,
		SpecialRequests: strings.TrimSpace(r.FormValue("special_requests")),
	}

	if err := s.bookings.Create(r.Context(), booking); err != nil {
		s.logger.Error().Err(err).Msg("failed to create booking")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, booking)
}
