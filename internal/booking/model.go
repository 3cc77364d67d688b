// Package booking implements the strategy-session booking pipeline:
// validate the submitted form, resolve the requested date/time into a
// session slot, create the calendar event and dispatch confirmation
// emails.
package booking

import (
	"net/mail"
	"strings"
)

// FormData carries the contact details submitted by the booking form.
type FormData struct {
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	AdditionalInfo   string `json:"additionalInfo,omitempty"`
	MarketingConsent bool   `json:"marketingConsent"`
}

// FullName returns the contact's display name.
func (f *FormData) FullName() string {
	return strings.TrimSpace(f.FirstName + " " + f.LastName)
}

// Request represents one booking submission.
type Request struct {
	FormData     FormData `json:"formData"`
	SelectedDate string   `json:"selectedDate"`
	SelectedTime string   `json:"selectedTime"`
	// CalendarLink is only populated on the email-send endpoint, carrying
	// the link produced by the calendar step.
	CalendarLink string `json:"calendarLink,omitempty"`
}

// Validate checks the request for missing or malformed fields. Missing
// fields are reported individually so the form can highlight each one.
func (r *Request) Validate() error {
	verr := &ValidationError{}

	if strings.TrimSpace(r.FormData.FirstName) == "" {
		verr.Missing = append(verr.Missing, "firstName")
	}
	if strings.TrimSpace(r.FormData.LastName) == "" {
		verr.Missing = append(verr.Missing, "lastName")
	}
	if strings.TrimSpace(r.FormData.Email) == "" {
		verr.Missing = append(verr.Missing, "email")
	} else if _, err := mail.ParseAddress(r.FormData.Email); err != nil {
		verr.Invalid = append(verr.Invalid, "email")
	}
	if strings.TrimSpace(r.FormData.Phone) == "" {
		verr.Missing = append(verr.Missing, "phone")
	}
	if strings.TrimSpace(r.SelectedDate) == "" {
		verr.Missing = append(verr.Missing, "selectedDate")
	}
	if strings.TrimSpace(r.SelectedTime) == "" {
		verr.Missing = append(verr.Missing, "selectedTime")
	}

	if len(verr.Missing) > 0 || len(verr.Invalid) > 0 {
		return verr
	}
	return nil
}

// EventResult is the outcome of the calendar step.
type EventResult struct {
	ID       string `json:"id"`
	HTMLLink string `json:"htmlLink"`
}

// EmailMessageInfo identifies one delivered email.
type EmailMessageInfo struct {
	MessageID string `json:"messageId"`
}

// EmailResult is the outcome of the notification step. AdminEmail is nil
// when the admin notification failed after the client confirmation was
// already delivered.
type EmailResult struct {
	ClientEmail *EmailMessageInfo `json:"clientEmail"`
	AdminEmail  *EmailMessageInfo `json:"adminEmail"`
}

// Result is returned to the caller once a booking completes.
type Result struct {
	Success  bool         `json:"success"`
	Calendar *EventResult `json:"calendar"`
	Email    *EmailResult `json:"email"`
}
