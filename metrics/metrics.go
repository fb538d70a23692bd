package metrics

import (
	"strconv"
	"time"

	"github.com/Dosada05/tournament-stats/models"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tournament_stats"

// Recorder receives domain and transport measurements.
type Recorder interface {
	MatchTransition(from, to models.MatchStatus)
	StandingsUpserted(inserted, updated, failed int)
	LeaderboardComputed(category models.LeaderboardCategory, entityType models.EntityType, d time.Duration)
	DashboardAssembled(d time.Duration, err error)
	HTTPRequest(route, method string, code int, d time.Duration)
}

type prometheusRecorder struct {
	matchTransitions *prometheus.CounterVec
	standingsWrites  *prometheus.CounterVec
	leaderboardTime  *prometheus.HistogramVec
	dashboardTime    *prometheus.HistogramVec
	httpLatency      *prometheus.HistogramVec
	httpRequests     *prometheus.CounterVec
}

// NewPrometheus registers the service collectors on reg.
func NewPrometheus(reg prometheus.Registerer) (Recorder, error) {
	r := &prometheusRecorder{
		matchTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matches",
			Name:      "status_transitions_total",
			Help:      "Match status transitions by source and target status.",
		}, []string{"from", "to"}),
		standingsWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "standings",
			Name:      "upserts_total",
			Help:      "Standings rows written by bulk upserts.",
		}, []string{"outcome"}),
		leaderboardTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "leaderboard",
			Name:      "compute_seconds",
			Help:      "Time spent ranking a leaderboard.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"category", "entity_type"}),
		dashboardTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "assemble_seconds",
			Help:      "Time spent assembling the analytics dashboard.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_latency_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "code"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route",
		}, []string{"route", "method", "code"}),
	}
	for _, c := range []prometheus.Collector{
		r.matchTransitions, r.standingsWrites, r.leaderboardTime, r.dashboardTime, r.httpLatency, r.httpRequests,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *prometheusRecorder) MatchTransition(from, to models.MatchStatus) {
	r.matchTransitions.WithLabelValues(string(from), string(to)).Inc()
}

func (r *prometheusRecorder) StandingsUpserted(inserted, updated, failed int) {
	r.standingsWrites.WithLabelValues("inserted").Add(float64(inserted))
	r.standingsWrites.WithLabelValues("updated").Add(float64(updated))
	r.standingsWrites.WithLabelValues("failed").Add(float64(failed))
}

func (r *prometheusRecorder) LeaderboardComputed(category models.LeaderboardCategory, entityType models.EntityType, d time.Duration) {
	r.leaderboardTime.WithLabelValues(string(category), string(entityType)).Observe(d.Seconds())
}

func (r *prometheusRecorder) DashboardAssembled(d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.dashboardTime.WithLabelValues(result).Observe(d.Seconds())
}

func (r *prometheusRecorder) HTTPRequest(route, method string, code int, d time.Duration) {
	labels := prometheus.Labels{"route": route, "method": method, "code": strconv.Itoa(code)}
	r.httpLatency.With(labels).Observe(d.Seconds())
	r.httpRequests.With(labels).Inc()
}

type noop struct{}

// NewNoop returns a Recorder that drops everything.
func NewNoop() Recorder { return noop{} }

func (noop) MatchTransition(models.MatchStatus, models.MatchStatus) {}
func (noop) StandingsUpserted(int, int, int) {}
func (noop) LeaderboardComputed(models.LeaderboardCategory, models.EntityType, time.Duration) {}
func (noop) DashboardAssembled(time.Duration, error) {}
func (noop) HTTPRequest(string, string, int, time.Duration) {}
