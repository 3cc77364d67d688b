package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/scailer-io/booking-service/internal/booking"
	"github.com/scailer-io/booking-service/internal/calendar"
	"github.com/scailer-io/booking-service/pkg/logging"
)

// BookingService is the subset of the booking pipeline the HTTP layer
// depends on.
type BookingService interface {
	Book(ctx context.Context, req *booking.Request) (*booking.Result, error)
	CreateEvent(ctx context.Context, req *booking.Request) (*booking.EventResult, error)
	SendEmails(ctx context.Context, req *booking.Request) (*booking.EmailResult, error)
}

// BookingHandler serves the booking form's API endpoints.
type BookingHandler struct {
	service BookingService
	logger  *logging.Logger
}

// NewBookingHandler creates a new booking handler.
func NewBookingHandler(service BookingService, logger *logging.Logger) *BookingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingHandler{
		service: service,
		logger:  logger.Component("booking_handler"),
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type calendarResponse struct {
	Success  bool   `json:"success"`
	ID       string `json:"id"`
	HTMLLink string `json:"htmlLink"`
}

type emailsResponse struct {
	Success     bool                      `json:"success"`
	ClientEmail *booking.EmailMessageInfo `json:"clientEmail"`
	AdminEmail  *booking.EmailMessageInfo `json:"adminEmail"`
}

// BookSession runs the full pipeline for one submission.
// POST /api/book-session
func (h *BookingHandler) BookSession(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	result, err := h.service.Book(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// CreateEvent runs only the calendar step.
// POST /api/calendar
func (h *BookingHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	event, err := h.service.CreateEvent(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, calendarResponse{
		Success:  true,
		ID:       event.ID,
		HTMLLink: event.HTMLLink,
	})
}

// SendEmails runs only the notification step, using the calendar link
// supplied in the request body.
// POST /api/send-booking-emails
func (h *BookingHandler) SendEmails(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	emails, err := h.service.SendEmails(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, emailsResponse{
		Success:     true,
		ClientEmail: emails.ClientEmail,
		AdminEmail:  emails.AdminEmail,
	})
}

// Health reports service liveness.
// GET /health
func (h *BookingHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *BookingHandler) decode(w http.ResponseWriter, r *http.Request) (*booking.Request, bool) {
	var req booking.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Invalid request body",
			Details: err.Error(),
		})
		return nil, false
	}
	return &req, true
}

func (h *BookingHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *booking.ValidationError
	var ferr *booking.FormatError

	switch {
	case errors.As(err, &verr):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Missing or invalid fields",
			Details: verr.Error(),
		})
	case errors.As(err, &ferr):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Invalid date or time",
			Details: ferr.Error(),
		})
	case errors.Is(err, booking.ErrDuplicate):
		h.writeJSON(w, http.StatusConflict, errorResponse{
			Error: "This session was already booked",
		})
	case calendar.IsAuthError(err):
		h.logger.Error("calendar authorization failed", "error", err, "path", r.URL.Path)
		h.writeJSON(w, http.StatusUnauthorized, errorResponse{
			Error: "Calendar authorization failed",
		})
	default:
		h.logger.Error("booking request failed", "error", err, "path", r.URL.Path)
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Failed to process booking",
			Details: err.Error(),
		})
	}
}

func (h *BookingHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
