package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_client_requests_total",
			Help: "Total number of outbound requests to the quiz backend",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quiz_client_request_duration_seconds",
			Help:    "Duration of outbound requests to the quiz backend",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 15, 30, 60},
		},
		[]string{"method", "route"},
	)

	MalformedResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_client_malformed_responses_total",
			Help: "Responses whose body was not valid JSON",
		},
		[]string{"route"},
	)

	SessionEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_session_events_total",
			Help: "Quiz session transitions",
		},
		[]string{"event"},
	)

	StaleDetailResponses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_history_stale_detail_responses_total",
			Help: "Detail responses discarded because a newer request superseded them",
		},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(MalformedResponses)
		prometheus.MustRegister(SessionEvents)
		prometheus.MustRegister(StaleDetailResponses)
	})
}

// ObserveRequest records one finished outbound call. status is 0 for
// transport failures and timeouts.
func ObserveRequest(method, route string, status int, started time.Time) {
	label := strconv.Itoa(status)
	if status == 0 {
		label = "error"
	}
	RequestCounter.WithLabelValues(method, route, label).Inc()
	RequestDuration.WithLabelValues(method, route).Observe(time.Since(started).Seconds())
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
