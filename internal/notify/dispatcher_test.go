package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scailer-io/booking-service/internal/booking"
)

// fakeSender records sent messages and can fail selectively per
// recipient.
type fakeSender struct {
	sent    []EmailMessage
	failFor map[string]error
	nextID  int
}

func (f *fakeSender) Send(_ context.Context, msg EmailMessage) (string, error) {
	if err, ok := f.failFor[msg.To]; ok {
		return "", err
	}
	f.sent = append(f.sent, msg)
	f.nextID++
	return fmt.Sprintf("msg-%03d", f.nextID), nil
}

func dispatchRequest() (*booking.Request, booking.Slot) {
	req := &booking.Request{
		FormData: booking.FormData{
			FirstName:        "Jane",
			LastName:         "Doe",
			Email:            "jane@example.com",
			Phone:            "+441234567890",
			AdditionalInfo:   "Scaling ops team",
			MarketingConsent: true,
		},
		SelectedDate: "2025-06-10",
		SelectedTime: "03:00 PM",
	}
	loc, _ := time.LoadLocation("Europe/London")
	start := time.Date(2025, 6, 10, 15, 0, 0, 0, loc)
	return req, booking.Slot{Start: start, End: start.Add(30 * time.Minute)}
}

func TestDispatchBookingEmails_BothSent(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, "josh@scailer.io", nil, nil)
	req, slot := dispatchRequest()

	result, err := d.DispatchBookingEmails(context.Background(), req, slot, "https://calendar.google.com/event?eid=abc")
	require.NoError(t, err)

	require.NotNil(t, result.ClientEmail)
	require.NotNil(t, result.AdminEmail)
	require.Len(t, sender.sent, 2)

	client := sender.sent[0]
	assert.Equal(t, "jane@example.com", client.To)
	assert.Equal(t, "Jane Doe", client.ToName)
	assert.Equal(t, "Your Strategy Session Confirmation", client.Subject)
	assert.Contains(t, client.Body, "Tuesday, 10 June 2025")
	assert.Contains(t, client.Body, "3:00 PM")
	assert.Contains(t, client.Body, "30 minutes")
	assert.Contains(t, client.Body, "https://calendar.google.com/event?eid=abc")
	assert.Contains(t, client.HTML, "Add to Calendar")

	admin := sender.sent[1]
	assert.Equal(t, "josh@scailer.io", admin.To)
	assert.Contains(t, admin.Subject, "Jane Doe")
	assert.Contains(t, admin.Body, "+441234567890")
	assert.Contains(t, admin.Body, "Marketing Consent: Yes")
	assert.Contains(t, admin.HTML, "Scaling ops team")
}

func TestDispatchBookingEmails_ClientFailureIsFatal(t *testing.T) {
	sender := &fakeSender{failFor: map[string]error{
		"jane@example.com": errors.New("mailbox unavailable"),
	}}
	d := NewDispatcher(sender, "josh@scailer.io", nil, nil)
	req, slot := dispatchRequest()

	result, err := d.DispatchBookingEmails(context.Background(), req, slot, "")
	require.Error(t, err)
	assert.Nil(t, result)
	// Admin email is never attempted after a client failure.
	assert.Empty(t, sender.sent)
}

func TestDispatchBookingEmails_AdminFailureIsPartialSuccess(t *testing.T) {
	sender := &fakeSender{failFor: map[string]error{
		"josh@scailer.io": errors.New("relay refused"),
	}}
	d := NewDispatcher(sender, "josh@scailer.io", nil, nil)
	req, slot := dispatchRequest()

	result, err := d.DispatchBookingEmails(context.Background(), req, slot, "")
	require.NoError(t, err)
	require.NotNil(t, result.ClientEmail)
	assert.Nil(t, result.AdminEmail)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "jane@example.com", sender.sent[0].To)
}

func TestDispatchBookingEmails_NoAdminConfigured(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, "", nil, nil)
	req, slot := dispatchRequest()

	result, err := d.DispatchBookingEmails(context.Background(), req, slot, "")
	require.NoError(t, err)
	require.NotNil(t, result.ClientEmail)
	assert.Nil(t, result.AdminEmail)
	require.Len(t, sender.sent, 1)
}

func TestDispatchBookingEmails_EscapesUserInput(t *testing.T) {
	sender := &fakeSender{}
	d := NewDispatcher(sender, "josh@scailer.io", nil, nil)
	req, slot := dispatchRequest()
	req.FormData.FirstName = `<script>alert("x")</script>`
	req.FormData.AdditionalInfo = `<img src=x onerror=alert(1)>`

	_, err := d.DispatchBookingEmails(context.Background(), req, slot, "")
	require.NoError(t, err)
	require.Len(t, sender.sent, 2)

	for _, msg := range sender.sent {
		assert.NotContains(t, msg.HTML, "<script>")
		assert.NotContains(t, msg.HTML, "<img src=x")
	}
	assert.Contains(t, sender.sent[0].HTML, "&lt;script&gt;")
}

func TestDispatchBookingEmails_NoSender(t *testing.T) {
	d := NewDispatcher(nil, "josh@scailer.io", nil, nil)
	req, slot := dispatchRequest()

	_, err := d.DispatchBookingEmails(context.Background(), req, slot, "")
	require.Error(t, err)
}
