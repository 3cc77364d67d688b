package booking

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Slot is a resolved start/end instant pair for one session.
type Slot struct {
	Start time.Time
	End   time.Time
}

// Duration returns the session length.
func (s Slot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

var (
	// "03:00 PM", case-insensitive, optional surrounding whitespace.
	time12Pattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([AaPp][Mm])$`)
	// "15:00"
	time24Pattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
)

// SlotResolver combines a client-supplied date and time token into a Slot
// in the configured event time zone.
type SlotResolver struct {
	loc      *time.Location
	duration time.Duration
}

// NewSlotResolver loads the event time zone and fixes the session
// duration. The duration is a deployment constant, never a per-request
// parameter.
func NewSlotResolver(timezone string, duration time.Duration) (*SlotResolver, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("booking: load event timezone %q: %w", timezone, err)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("booking: session duration must be positive, got %s", duration)
	}
	return &SlotResolver{loc: loc, duration: duration}, nil
}

// Location returns the event time zone.
func (r *SlotResolver) Location() *time.Location {
	return r.loc
}

// Resolve parses selectedDate (ISO-8601 date or date/time) and
// selectedTime ("HH:MM" or "HH:MM AM/PM") into a Slot. The date component
// is taken in the event time zone; the time token overrides any time of
// day carried by selectedDate.
func (r *SlotResolver) Resolve(selectedDate, selectedTime string) (Slot, error) {
	day, err := r.parseDate(selectedDate)
	if err != nil {
		return Slot{}, err
	}

	hour, minute, err := ParseTimeToken(selectedTime)
	if err != nil {
		return Slot{}, err
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, r.loc)
	return Slot{Start: start, End: start.Add(r.duration)}, nil
}

func (r *SlotResolver) parseDate(selectedDate string) (time.Time, error) {
	selectedDate = strings.TrimSpace(selectedDate)
	if t, err := time.ParseInLocation("2006-01-02", selectedDate, r.loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, selectedDate); err == nil {
		return t.In(r.loc), nil
	}
	return time.Time{}, &FormatError{Token: selectedDate, Reason: "expected an ISO-8601 date"}
}

// ParseTimeToken normalizes a time token to 24-hour components.
//
// 12-hour conversion: 12 PM stays 12, any other PM hour adds 12, 12 AM
// becomes 0, any other AM hour is unchanged. The result must land in
// [0,23] hours and [0,59] minutes.
func ParseTimeToken(token string) (hour, minute int, err error) {
	trimmed := strings.TrimSpace(token)

	if m := time12Pattern.FindStringSubmatch(trimmed); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		switch strings.ToUpper(m[3]) {
		case "PM":
			if hour < 12 {
				hour += 12
			}
		case "AM":
			if hour == 12 {
				hour = 0
			}
		}
	} else if m := time24Pattern.FindStringSubmatch(trimmed); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
	} else {
		return 0, 0, &FormatError{Token: token, Reason: "expected HH:MM or HH:MM AM/PM"}
	}

	if hour < 0 || hour > 23 {
		return 0, 0, &FormatError{Token: token, Reason: "hour out of range"}
	}
	if minute < 0 || minute > 59 {
		return 0, 0, &FormatError{Token: token, Reason: "minute out of range"}
	}
	return hour, minute, nil
}
