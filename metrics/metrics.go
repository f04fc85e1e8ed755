package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "roastroyale"

// Metrics holds the game counters. A nil *Metrics is valid and records
// nothing, which keeps tests and the CLI free of registry plumbing.
type Metrics struct {
	roastsSubmitted   *prometheus.CounterVec
	roastQuality      *prometheus.HistogramVec
	opponentFallbacks *prometheus.CounterVec
	battlesFinished   prometheus.Counter
	battlePoints      prometheus.Histogram
	storeErrors       *prometheus.CounterVec
}

// New registers the game metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		roastsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "roasts_submitted_total",
			Help:      "Roasts scored, by quality tier of the player's roast.",
		}, []string{"tier"}),
		roastQuality: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "roast_quality",
			Help:      "Quality scores handed out, by subject.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}, []string{"subject"}),
		opponentFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "opponent_fallbacks_total",
			Help:      "Online opponent calls that degraded to the canned reply.",
		}, []string{"reason"}),
		battlesFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "battles_finished_total",
			Help:      "Battles saved to the leaderboard.",
		}),
		battlePoints: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "battle_points",
			Help:      "Points earned per saved battle.",
			Buckets:   prometheus.ExponentialBuckets(5, 2, 8),
		}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leaderboard_errors_total",
			Help:      "Leaderboard store failures, by operation.",
		}, []string{"op"}),
	}

	reg.MustRegister(
		m.roastsSubmitted,
		m.roastQuality,
		m.opponentFallbacks,
		m.battlesFinished,
		m.battlePoints,
		m.storeErrors,
	)
	return m
}

func (m *Metrics) RoastScored(tier string, userQuality, opponentQuality int) {
	if m == nil {
		return
	}
	m.roastsSubmitted.WithLabelValues(tier).Inc()
	m.roastQuality.WithLabelValues("user").Observe(float64(userQuality))
	m.roastQuality.WithLabelValues("opponent").Observe(float64(opponentQuality))
}

func (m *Metrics) OpponentFallback(reason string) {
	if m == nil {
		return
	}
	m.opponentFallbacks.WithLabelValues(reason).Inc()
}

func (m *Metrics) BattleFinished(points int) {
	if m == nil {
		return
	}
	m.battlesFinished.Inc()
	m.battlePoints.Observe(float64(points))
}

func (m *Metrics) StoreError(op string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(op).Inc()
}
