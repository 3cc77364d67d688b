package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking pipeline.
type BookingMetrics struct {
	bookingsTotal         *prometheus.CounterVec
	emailSendTotal        *prometheus.CounterVec
	calendarInsertLatency prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scailer",
			Subsystem: "booking",
			Name:      "submissions_total",
			Help:      "Total booking submissions by outcome",
		}, []string{"outcome"}),
		emailSendTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scailer",
			Subsystem: "booking",
			Name:      "email_send_total",
			Help:      "Total confirmation email sends",
		}, []string{"recipient", "status"}),
		calendarInsertLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scailer",
			Subsystem: "booking",
			Name:      "calendar_insert_seconds",
			Help:      "Latency of Google Calendar event creation",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.emailSendTotal, m.calendarInsertLatency)
	return m
}

// ObserveBooking records a finished booking attempt. Outcomes:
// completed, validation_failed, format_failed, duplicate, calendar_failed,
// email_failed.
func (m *BookingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

// ObserveEmailSend records one email send attempt. Recipient is "client"
// or "admin".
func (m *BookingMetrics) ObserveEmailSend(recipient, status string) {
	if m == nil {
		return
	}
	m.emailSendTotal.WithLabelValues(recipient, status).Inc()
}

func (m *BookingMetrics) ObserveCalendarInsert(seconds float64) {
	if m == nil {
		return
	}
	m.calendarInsertLatency.Observe(seconds)
}
