package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TripsRequested = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dispatch", Name: "trips_requested_total", Help: "Trips created, by kind"},
		[]string{"kind"},
	)
	TripsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dispatch", Name: "trips_completed_total", Help: "Trips completed, by kind"},
		[]string{"kind"},
	)
	TripsCancelled = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dispatch", Name: "trips_cancelled_total", Help: "Trips cancelled, by kind"},
		[]string{"kind"},
	)

	AcceptWins      = promauto.NewCounter(prometheus.CounterOpts{Namespace: "dispatch", Name: "accept_wins_total", Help: "Accept attempts that claimed the trip"})
	AcceptConflicts = promauto.NewCounter(prometheus.CounterOpts{Namespace: "dispatch", Name: "accept_conflicts_total", Help: "Accept attempts that lost the race"})

	NearbyDriverQueries = promauto.NewCounter(prometheus.CounterOpts{Namespace: "dispatch", Name: "nearby_driver_queries_total", Help: "Nearby-driver searches served"})
	NearbyJobQueries    = promauto.NewCounter(prometheus.CounterOpts{Namespace: "dispatch", Name: "nearby_job_queries_total", Help: "Nearby-job searches served"})

	MatchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dispatch",
		Name:      "match_latency_seconds",
		Help:      "Nearby-driver query latency",
		Buckets:   prometheus.DefBuckets,
	})
)
