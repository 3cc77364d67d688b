package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

// emailData is the shared field set both messages are rendered from.
// User-supplied fields pass through html/template so they are escaped in
// the HTML bodies.
type emailData struct {
	FirstName        string
	FullName         string
	Email            string
	Phone            string
	AdditionalInfo   string
	MarketingConsent bool
	FormattedDate    string
	TimeLabel        string
	DurationMinutes  int
	CalendarLink     string
	Year             int
}

var clientHTMLTemplate = template.Must(template.New("client").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; color: #333;">
  <div style="background-color: #25D366; padding: 20px; text-align: center; color: white;">
    <h1 style="margin: 0;">Strategy Session Confirmation</h1>
  </div>
  <div style="padding: 20px; background-color: #f9f9f9; border: 1px solid #ddd;">
    <p>Hello {{.FirstName}},</p>
    <p>Thank you for booking a strategy session with Scailer!</p>
    <div style="background-color: #fff; border-left: 4px solid #25D366; padding: 15px; margin: 20px 0;">
      <p style="margin: 0;"><strong>Date:</strong> {{.FormattedDate}}</p>
      <p style="margin: 10px 0 0;"><strong>Time:</strong> {{.TimeLabel}}</p>
      <p style="margin: 10px 0 0;"><strong>Duration:</strong> {{.DurationMinutes}} minutes</p>
    </div>
    {{if .CalendarLink}}<p><a href="{{.CalendarLink}}" style="display: inline-block; background-color: #25D366; color: white; padding: 10px 15px; text-decoration: none; border-radius: 4px;">Add to Calendar</a></p>{{end}}
    <p>If you need to reschedule or have any questions, please reply to this email.</p>
    <p>Best regards,<br>The Scailer Team</p>
  </div>
  <div style="text-align: center; padding: 20px; color: #777; font-size: 12px;">
    <p>&copy; {{.Year}} Scailer. All rights reserved.</p>
  </div>
</div>`))

var adminHTMLTemplate = template.Must(template.New("admin").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; color: #333;">
  <div style="background-color: #25D366; padding: 20px; text-align: center; color: white;">
    <h1 style="margin: 0;">New Strategy Session Booking</h1>
  </div>
  <div style="padding: 20px; background-color: #f9f9f9; border: 1px solid #ddd;">
    <h2 style="color: #25D366; margin-top: 0;">Client Details</h2>
    <p><strong>Name:</strong> {{.FullName}}</p>
    <p><strong>Email:</strong> {{.Email}}</p>
    <p><strong>Phone:</strong> {{.Phone}}</p>
    <h2 style="color: #25D366; margin-top: 20px;">Session Details</h2>
    <p><strong>Date:</strong> {{.FormattedDate}}</p>
    <p><strong>Time:</strong> {{.TimeLabel}}</p>
    <p><strong>Duration:</strong> {{.DurationMinutes}} minutes</p>
    <h2 style="color: #25D366; margin-top: 20px;">Additional Information</h2>
    <p>{{if .AdditionalInfo}}{{.AdditionalInfo}}{{else}}None provided{{end}}</p>
    <p><strong>Marketing Consent:</strong> {{if .MarketingConsent}}Yes{{else}}No{{end}}</p>
  </div>
  <div style="text-align: center; padding: 20px; color: #777; font-size: 12px;">
    <p>&copy; {{.Year}} Scailer. All rights reserved.</p>
  </div>
</div>`))

func renderClientEmail(data emailData) (EmailMessage, error) {
	var html bytes.Buffer
	if err := clientHTMLTemplate.Execute(&html, data); err != nil {
		return EmailMessage{}, fmt.Errorf("notify: render client template: %w", err)
	}

	calendarLine := ""
	if data.CalendarLink != "" {
		calendarLine = fmt.Sprintf("Add to your calendar: %s\n\n", data.CalendarLink)
	}
	text := fmt.Sprintf(`Hello %s,

Thank you for booking a strategy session with Scailer!

Your session has been scheduled for %s at %s (%d minutes).

%sIf you need to reschedule or have any questions, please reply to this email.

Best regards,
The Scailer Team`,
		data.FirstName, data.FormattedDate, data.TimeLabel, data.DurationMinutes, calendarLine)

	return EmailMessage{
		Subject: "Your Strategy Session Confirmation",
		Body:    text,
		HTML:    html.String(),
	}, nil
}

func renderAdminEmail(data emailData) (EmailMessage, error) {
	var html bytes.Buffer
	if err := adminHTMLTemplate.Execute(&html, data); err != nil {
		return EmailMessage{}, fmt.Errorf("notify: render admin template: %w", err)
	}

	additionalInfo := data.AdditionalInfo
	if additionalInfo == "" {
		additionalInfo = "None provided"
	}
	consent := "No"
	if data.MarketingConsent {
		consent = "Yes"
	}
	text := fmt.Sprintf(`New Strategy Session Booking

Client: %s
Email: %s
Phone: %s

Date: %s
Time: %s
Duration: %d minutes

Additional Information:
%s

Marketing Consent: %s`,
		data.FullName, data.Email, data.Phone,
		data.FormattedDate, data.TimeLabel, data.DurationMinutes,
		additionalInfo, consent)

	return EmailMessage{
		Subject: fmt.Sprintf("New Booking: Strategy Session with %s", data.FullName),
		Body:    text,
		HTML:    html.String(),
	}, nil
}
