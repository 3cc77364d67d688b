package booking

import (
	"context"
	"time"

	"github.com/scailer-io/booking-service/internal/observability/metrics"
	"github.com/scailer-io/booking-service/pkg/logging"
)

// EventCreator creates exactly one calendar event for a validated
// submission. Implemented by the Google Calendar client.
type EventCreator interface {
	CreateEvent(ctx context.Context, req *Request, slot Slot) (*EventResult, error)
}

// EmailDispatcher sends the client confirmation and admin notification.
// A nil AdminEmail in the result means the admin send failed after the
// client was already notified.
type EmailDispatcher interface {
	DispatchBookingEmails(ctx context.Context, req *Request, slot Slot, calendarLink string) (*EmailResult, error)
}

// Service sequences one booking submission: Validating, CreatingEvent,
// Notifying, Done. Any step failure aborts the pipeline; there are no
// automatic retries and no compensating delete of a created event.
type Service struct {
	slots       *SlotResolver
	calendar    EventCreator
	emails      EmailDispatcher
	idempotency IdempotencyStore
	metrics     *metrics.BookingMetrics
	logger      *logging.Logger
	callTimeout time.Duration
}

// ServiceConfig wires the orchestrator's collaborators.
type ServiceConfig struct {
	Slots       *SlotResolver
	Calendar    EventCreator
	Emails      EmailDispatcher
	Idempotency IdempotencyStore
	Metrics     *metrics.BookingMetrics
	Logger      *logging.Logger
	// CallTimeout bounds each outbound call (calendar insert, email
	// dispatch). Zero disables the per-call deadline.
	CallTimeout time.Duration
}

func NewService(cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Service{
		slots:       cfg.Slots,
		calendar:    cfg.Calendar,
		emails:      cfg.Emails,
		idempotency: cfg.Idempotency,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		callTimeout: cfg.CallTimeout,
	}
}

// Book runs the full pipeline for one submission.
func (s *Service) Book(ctx context.Context, req *Request) (*Result, error) {
	slot, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	var reservedKey string
	if s.idempotency != nil {
		key := IdempotencyKey(req.FormData.Email, slot)
		ok, err := s.idempotency.Reserve(ctx, key)
		if err != nil {
			// The guard is advisory. Losing it must not block bookings.
			s.logger.Warn("idempotency store unavailable, continuing", "error", err)
		} else if !ok {
			s.logger.Info("duplicate booking rejected",
				"email", req.FormData.Email,
				"start", slot.Start,
			)
			s.metrics.ObserveBooking("duplicate")
			return nil, ErrDuplicate
		} else {
			reservedKey = key
		}
	}

	event, err := s.createEvent(ctx, req, slot)
	if err != nil {
		s.releaseReservation(ctx, reservedKey)
		s.metrics.ObserveBooking("calendar_failed")
		return nil, err
	}

	emails, err := s.dispatchEmails(ctx, req, slot, event.HTMLLink)
	if err != nil {
		// The calendar event survives; the client-facing result is still
		// a failure because the confirmation never reached them.
		s.releaseReservation(ctx, reservedKey)
		s.metrics.ObserveBooking("email_failed")
		return nil, err
	}

	s.logger.Info("booking completed",
		"event_id", event.ID,
		"client", req.FormData.Email,
		"start", slot.Start,
	)
	s.metrics.ObserveBooking("completed")

	return &Result{Success: true, Calendar: event, Email: emails}, nil
}

// CreateEvent runs only the calendar step. Kept for the legacy
// /api/calendar endpoint.
func (s *Service) CreateEvent(ctx context.Context, req *Request) (*EventResult, error) {
	slot, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	event, err := s.createEvent(ctx, req, slot)
	if err != nil {
		s.metrics.ObserveBooking("calendar_failed")
		return nil, err
	}
	return event, nil
}

// SendEmails runs only the notification step, honoring a calendar link
// supplied by a prior calendar call. Kept for the legacy
// /api/send-booking-emails endpoint.
func (s *Service) SendEmails(ctx context.Context, req *Request) (*EmailResult, error) {
	slot, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	emails, err := s.dispatchEmails(ctx, req, slot, req.CalendarLink)
	if err != nil {
		s.metrics.ObserveBooking("email_failed")
		return nil, err
	}
	return emails, nil
}

// validate covers the Validating stage: field presence plus slot
// resolution. Format errors never reach the calendar or mail
// collaborators.
func (s *Service) validate(req *Request) (Slot, error) {
	if err := req.Validate(); err != nil {
		s.metrics.ObserveBooking("validation_failed")
		return Slot{}, err
	}
	slot, err := s.slots.Resolve(req.SelectedDate, req.SelectedTime)
	if err != nil {
		s.metrics.ObserveBooking("format_failed")
		return Slot{}, err
	}
	return slot, nil
}

func (s *Service) createEvent(ctx context.Context, req *Request, slot Slot) (*EventResult, error) {
	ctx, cancel := s.withCallTimeout(ctx)
	defer cancel()

	started := time.Now()
	event, err := s.calendar.CreateEvent(ctx, req, slot)
	s.metrics.ObserveCalendarInsert(time.Since(started).Seconds())
	if err != nil {
		s.logger.Error("calendar event creation failed",
			"error", err,
			"client", req.FormData.Email,
		)
		return nil, err
	}
	return event, nil
}

func (s *Service) dispatchEmails(ctx context.Context, req *Request, slot Slot, calendarLink string) (*EmailResult, error) {
	ctx, cancel := s.withCallTimeout(ctx)
	defer cancel()

	emails, err := s.emails.DispatchBookingEmails(ctx, req, slot, calendarLink)
	if err != nil {
		s.logger.Error("booking emails failed",
			"error", err,
			"client", req.FormData.Email,
		)
		return nil, err
	}
	return emails, nil
}

// releaseReservation frees the duplicate-guard key after a failed
// pipeline so the contact can retry the same slot immediately.
func (s *Service) releaseReservation(ctx context.Context, key string) {
	if key == "" || s.idempotency == nil {
		return
	}
	if err := s.idempotency.Release(ctx, key); err != nil {
		s.logger.Warn("failed to release idempotency key", "error", err)
	}
}

func (s *Service) withCallTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.callTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.callTimeout)
}
