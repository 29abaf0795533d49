package monitoring

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	reserveOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_reserve_total",
			Help: "Ticket quantity reservations by outcome",
		},
		[]string{"outcome"},
	)

	restockOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_restock_total",
			Help: "Ticket quantity restocks by outcome",
		},
		[]string{"outcome"},
	)

	slotOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advertisement_slot_operations_total",
			Help: "Advertisement slot grants and revokes by outcome",
		},
		[]string{"operation", "outcome"},
	)

	bookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_transitions_total",
			Help: "Booking status transitions by target status and outcome",
		},
		[]string{"to", "outcome"},
	)

	fraudCascadeTickets = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fraud_cascade_tickets",
			Help:    "Number of tickets rejected per fraud cascade",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)

func TrackReserve(outcome string) { reserveOps.WithLabelValues(outcome).Inc() }
func TrackRestock(outcome string) { restockOps.WithLabelValues(outcome).Inc() }

func TrackSlot(operation, outcome string) {
	slotOps.WithLabelValues(operation, outcome).Inc()
}

func TrackBookingTransition(to, outcome string) {
	bookingTransitions.WithLabelValues(to, outcome).Inc()
}

func TrackFraudCascade(ticketsRejected int) {
	fraudCascadeTickets.Observe(float64(ticketsRejected))
}

// Serve exposes /metrics on its own listener. Blocks; run in a goroutine.
func Serve(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	slog.Info("metrics listener started", "port", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		slog.Error("metrics listener stopped", "error", err)
	}
}
