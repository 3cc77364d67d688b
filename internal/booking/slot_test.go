package booking

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeToken12Hour(t *testing.T) {
	tests := []struct {
		token      string
		wantHour   int
		wantMinute int
	}{
		{"12:00 AM", 0, 0},
		{"12:00 PM", 12, 0},
		{"01:30 PM", 13, 30},
		{"11:59 PM", 23, 59},
		{"01:00 AM", 1, 0},
		{"03:00 pm", 15, 0},
		{"3:05PM", 15, 5},
		{"  09:15 AM  ", 9, 15},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			hour, minute, err := ParseTimeToken(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHour, hour)
			assert.Equal(t, tt.wantMinute, minute)
		})
	}
}

func TestParseTimeToken24Hour(t *testing.T) {
	tests := []struct {
		token      string
		wantHour   int
		wantMinute int
	}{
		{"00:00", 0, 0},
		{"15:00", 15, 0},
		{"23:59", 23, 59},
		{"9:05", 9, 5},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			hour, minute, err := ParseTimeToken(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHour, hour)
			assert.Equal(t, tt.wantMinute, minute)
		})
	}
}

func TestParseTimeTokenRejectsBadInput(t *testing.T) {
	tokens := []string{"25:99", "noon", "", "24:00", "12:60", "15", "1500", "12:00 XM"}

	for _, token := range tokens {
		t.Run(token, func(t *testing.T) {
			_, _, err := ParseTimeToken(token)
			var ferr *FormatError
			require.True(t, errors.As(err, &ferr), "expected FormatError, got %v", err)
		})
	}
}

func TestNewSlotResolver(t *testing.T) {
	_, err := NewSlotResolver("Not/AZone", 30*time.Minute)
	require.Error(t, err)

	_, err = NewSlotResolver("Europe/London", 0)
	require.Error(t, err)

	r, err := NewSlotResolver("Europe/London", 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "Europe/London", r.Location().String())
}

func TestResolve(t *testing.T) {
	r, err := NewSlotResolver("Europe/London", 30*time.Minute)
	require.NoError(t, err)

	slot, err := r.Resolve("2025-06-10", "03:00 PM")
	require.NoError(t, err)

	assert.Equal(t, 15, slot.Start.Hour())
	assert.Equal(t, 0, slot.Start.Minute())
	assert.Equal(t, time.June, slot.Start.Month())
	assert.Equal(t, 10, slot.Start.Day())
	assert.Equal(t, "Europe/London", slot.Start.Location().String())
	assert.Equal(t, 30*time.Minute, slot.Duration())
	assert.True(t, slot.End.After(slot.Start))
}

func TestResolveFixedDurationInvariant(t *testing.T) {
	durations := []time.Duration{30 * time.Minute, time.Hour}

	for _, d := range durations {
		r, err := NewSlotResolver("Europe/London", d)
		require.NoError(t, err)

		for _, token := range []string{"12:00 AM", "09:30 AM", "15:00", "11:59 PM"} {
			slot, err := r.Resolve("2025-06-10", token)
			require.NoError(t, err)
			assert.Equal(t, d, slot.End.Sub(slot.Start), "token %s", token)
		}
	}
}

func TestResolveRFC3339Date(t *testing.T) {
	r, err := NewSlotResolver("Europe/London", 30*time.Minute)
	require.NoError(t, err)

	// The time-of-day carried by selectedDate is overridden by the token.
	slot, err := r.Resolve("2025-06-10T09:00:00Z", "03:00 PM")
	require.NoError(t, err)
	assert.Equal(t, 15, slot.Start.Hour())
	assert.Equal(t, 10, slot.Start.Day())
}

func TestResolveBadDate(t *testing.T) {
	r, err := NewSlotResolver("Europe/London", 30*time.Minute)
	require.NoError(t, err)

	_, err = r.Resolve("next tuesday", "15:00")
	var ferr *FormatError
	require.True(t, errors.As(err, &ferr))
}

func TestResolveWinterTime(t *testing.T) {
	// January is GMT, June is BST. The wall clock hour must hold in both.
	r, err := NewSlotResolver("Europe/London", 30*time.Minute)
	require.NoError(t, err)

	winter, err := r.Resolve("2025-01-15", "03:00 PM")
	require.NoError(t, err)
	summer, err := r.Resolve("2025-06-10", "03:00 PM")
	require.NoError(t, err)

	assert.Equal(t, 15, winter.Start.Hour())
	assert.Equal(t, 15, summer.Start.Hour())

	_, winterOffset := winter.Start.Zone()
	_, summerOffset := summer.Start.Zone()
	assert.Equal(t, 0, winterOffset)
	assert.Equal(t, 3600, summerOffset)
}
