package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/scailer-io/booking-service/internal/booking"
	"github.com/scailer-io/booking-service/internal/observability/metrics"
	"github.com/scailer-io/booking-service/pkg/logging"
)

// Dispatcher sends the client confirmation and admin notification for a
// booking. The client email is the contract: its failure aborts the
// dispatch. The admin email is attempted afterwards and its failure is
// reported as partial success.
type Dispatcher struct {
	sender     EmailSender
	adminEmail string
	metrics    *metrics.BookingMetrics
	logger     *logging.Logger
}

func NewDispatcher(sender EmailSender, adminEmail string, m *metrics.BookingMetrics, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		sender:     sender,
		adminEmail: adminEmail,
		metrics:    m,
		logger:     logger,
	}
}

// DispatchBookingEmails implements booking.EmailDispatcher.
func (d *Dispatcher) DispatchBookingEmails(ctx context.Context, req *booking.Request, slot booking.Slot, calendarLink string) (*booking.EmailResult, error) {
	if d.sender == nil {
		return nil, fmt.Errorf("notify: no email sender configured")
	}

	data := buildEmailData(req, slot, calendarLink)

	clientMsg, err := renderClientEmail(data)
	if err != nil {
		return nil, err
	}
	clientMsg.To = req.FormData.Email
	clientMsg.ToName = req.FormData.FullName()

	clientID, err := d.sender.Send(ctx, clientMsg)
	if err != nil {
		d.metrics.ObserveEmailSend("client", "failed")
		return nil, fmt.Errorf("notify: client confirmation email failed: %w", err)
	}
	d.metrics.ObserveEmailSend("client", "sent")

	result := &booking.EmailResult{
		ClientEmail: &booking.EmailMessageInfo{MessageID: clientID},
	}

	if d.adminEmail == "" {
		d.logger.Warn("no admin email configured, skipping admin notification")
		return result, nil
	}

	adminMsg, err := renderAdminEmail(data)
	if err != nil {
		// The client has been notified; a render bug on the admin side
		// must not fail the booking.
		d.logger.Error("admin notification render failed", "error", err)
		d.metrics.ObserveEmailSend("admin", "failed")
		return result, nil
	}
	adminMsg.To = d.adminEmail

	adminID, err := d.sender.Send(ctx, adminMsg)
	if err != nil {
		d.logger.Error("admin notification email failed", "error", err, "admin", d.adminEmail)
		d.metrics.ObserveEmailSend("admin", "failed")
		return result, nil
	}
	d.metrics.ObserveEmailSend("admin", "sent")
	result.AdminEmail = &booking.EmailMessageInfo{MessageID: adminID}

	return result, nil
}

func buildEmailData(req *booking.Request, slot booking.Slot, calendarLink string) emailData {
	return emailData{
		FirstName:        req.FormData.FirstName,
		FullName:         req.FormData.FullName(),
		Email:            req.FormData.Email,
		Phone:            req.FormData.Phone,
		AdditionalInfo:   req.FormData.AdditionalInfo,
		MarketingConsent: req.FormData.MarketingConsent,
		FormattedDate:    slot.Start.Format("Monday, 2 January 2006"),
		TimeLabel:        slot.Start.Format("3:04 PM"),
		DurationMinutes:  int(slot.Duration().Minutes()),
		CalendarLink:     calendarLink,
		Year:             time.Now().Year(),
	}
}

var _ booking.EmailDispatcher = (*Dispatcher)(nil)
