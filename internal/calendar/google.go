// Package calendar creates strategy-session events on a single fixed
// Google Calendar using a service-account credential.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/scailer-io/booking-service/internal/booking"
	"github.com/scailer-io/booking-service/pkg/logging"
)

// ErrMissingCredentials is returned when the service-account client email
// or private key is absent from configuration.
var ErrMissingCredentials = errors.New("calendar: missing service account credentials")

// reminderOverrides is the fixed reminder policy: an email a day before
// and a popup 30 minutes before. Not customizable per request.
var reminderOverrides = []*gcal.EventReminder{
	{Method: "email", Minutes: 24 * 60},
	{Method: "popup", Minutes: 30},
}

// GoogleConfig holds the service-account credential and target calendar.
type GoogleConfig struct {
	CalendarID  string
	ClientEmail string
	// PrivateKey is the PEM key, possibly with literal "\n" escapes as
	// delivered through environment variables.
	PrivateKey string
	// TimeZone is the fixed event time zone identifier sent to the API.
	TimeZone string
}

// GoogleCreator implements booking.EventCreator against the Google
// Calendar v3 API.
type GoogleCreator struct {
	cfg    GoogleConfig
	logger *logging.Logger

	// newService is swapped in tests to avoid network calls.
	newService func(ctx context.Context) (*gcal.Service, error)
}

func NewGoogleCreator(cfg GoogleConfig, logger *logging.Logger) *GoogleCreator {
	if logger == nil {
		logger = logging.Default()
	}
	c := &GoogleCreator{cfg: cfg, logger: logger}
	c.newService = c.authorizedService
	return c
}

// authorizedService builds a calendar client from the service-account
// JWT credential, scoped to calendar write access.
func (c *GoogleCreator) authorizedService(ctx context.Context) (*gcal.Service, error) {
	if c.cfg.ClientEmail == "" || strings.TrimSpace(c.cfg.PrivateKey) == "" {
		return nil, ErrMissingCredentials
	}

	conf := &jwt.Config{
		Email:      c.cfg.ClientEmail,
		PrivateKey: []byte(normalizePrivateKey(c.cfg.PrivateKey)),
		Scopes:     []string{gcal.CalendarScope},
		TokenURL:   google.JWTTokenURL,
	}

	svc, err := gcal.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("calendar: build client: %w", err)
	}
	return svc, nil
}

// CreateEvent inserts exactly one event and returns its identifier and
// shareable link. There is no remote idempotency token; the caller's
// duplicate guard is the only protection against double inserts.
func (c *GoogleCreator) CreateEvent(ctx context.Context, req *booking.Request, slot booking.Slot) (*booking.EventResult, error) {
	svc, err := c.newService(ctx)
	if err != nil {
		return nil, err
	}

	event := c.buildEvent(req, slot)
	created, err := svc.Events.Insert(c.cfg.CalendarID, event).
		SendUpdates("none").
		Context(ctx).
		Do()
	if err != nil {
		c.logger.Error("calendar insert failed", "error", err, "calendar_id", c.cfg.CalendarID)
		return nil, fmt.Errorf("calendar: insert event: %w", err)
	}

	c.logger.Info("calendar event created",
		"event_id", created.Id,
		"start", slot.Start,
	)
	return &booking.EventResult{ID: created.Id, HTMLLink: created.HtmlLink}, nil
}

// buildEvent assembles the event payload: templated summary, contact
// details in the description, slot instants in the fixed time zone.
func (c *GoogleCreator) buildEvent(req *booking.Request, slot booking.Slot) *gcal.Event {
	form := req.FormData
	additionalInfo := form.AdditionalInfo
	if strings.TrimSpace(additionalInfo) == "" {
		additionalInfo = "None provided"
	}

	description := fmt.Sprintf(`Strategy Session with %s

CLIENT DETAILS:
- Name: %s
- Phone: %s
- Email: %s

ADDITIONAL INFORMATION:
%s

BOOKING DETAILS:
- Start: %s
- End: %s
- Duration: %d minutes`,
		form.FullName(),
		form.FullName(),
		form.Phone,
		form.Email,
		additionalInfo,
		slot.Start.Format("Monday, 2 January 2006 15:04"),
		slot.End.Format("15:04"),
		int(slot.Duration().Minutes()),
	)

	return &gcal.Event{
		Summary:     fmt.Sprintf("Strategy Session with %s", form.FullName()),
		Description: description,
		Start: &gcal.EventDateTime{
			DateTime: slot.Start.Format("2006-01-02T15:04:05-07:00"),
			TimeZone: c.cfg.TimeZone,
		},
		End: &gcal.EventDateTime{
			DateTime: slot.End.Format("2006-01-02T15:04:05-07:00"),
			TimeZone: c.cfg.TimeZone,
		},
		Reminders: &gcal.EventReminders{
			UseDefault:      false,
			Overrides:       reminderOverrides,
			ForceSendFields: []string{"UseDefault"},
		},
	}
}

// IsAuthError reports whether err is a credential problem that should be
// surfaced as 401 rather than a generic remote failure.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrMissingCredentials) {
		return true
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 401 || apiErr.Code == 403
	}
	return false
}

// normalizePrivateKey restores real newlines in a key that was stored
// with escaped "\n" sequences.
func normalizePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}
