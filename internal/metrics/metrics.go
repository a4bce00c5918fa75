package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	sessionsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "interviewer",
		Name:      "sessions_started_total",
		Help:      "Total number of interview sessions started",
	}, []string{"type"})

	sessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "interviewer",
		Name:      "sessions_completed_total",
		Help:      "Total number of interview sessions completed",
	})

	questionsAsked = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "interviewer",
		Name:      "questions_asked_total",
		Help:      "Total number of questions asked, including follow-ups",
	}, []string{"category"})

	answersSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "interviewer",
		Name:      "answers_submitted_total",
		Help:      "Total number of answers recorded, by source (user or timeout)",
	}, []string{"source"})

	llmFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "interviewer",
		Name:      "llm_failures_total",
		Help:      "Total number of failed LLM calls, by operation",
	}, []string{"operation"})

	fallbacksUsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "interviewer",
		Name:      "fallbacks_total",
		Help:      "Total number of default/fallback substitutions, by kind",
	}, []string{"kind"})

	llmLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "interviewer",
		Name:      "llm_request_duration_seconds",
		Help:      "Duration of LLM calls in seconds, by operation",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "interviewer",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	}, []string{"method", "path", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "interviewer",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

func SessionStarted(interviewType string) { sessionsStarted.WithLabelValues(interviewType).Inc() }
func SessionCompleted()                   { sessionsCompleted.Inc() }
func QuestionAsked(category string)       { questionsAsked.WithLabelValues(category).Inc() }
func AnswerSubmitted(source string)       { answersSubmitted.WithLabelValues(source).Inc() }
func LLMFailure(operation string)         { llmFailures.WithLabelValues(operation).Inc() }
func FallbackUsed(kind string)            { fallbacksUsed.WithLabelValues(kind).Inc() }

func ObserveLLMDuration(operation string, d time.Duration) {
	llmLatency.WithLabelValues(operation).Observe(d.Seconds())
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack delegates to the underlying writer so WebSocket upgrades work
// through the middleware.
func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := r.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, fmt.Errorf("metrics: underlying ResponseWriter does not support hijacking")
}

func (r *responseRecorder) Push(target string, opts *http.PushOptions) error {
	if p, ok := r.ResponseWriter.(http.Pusher); ok {
		return p.Push(target, opts)
	}
	return http.ErrNotSupported
}

// Middleware records request metrics with Prometheus labels.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(rec, r)

			status := strconv.Itoa(rec.status)
			httpRequests.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			httpLatency.WithLabelValues(r.Method, r.URL.Path, status).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler exposes the default Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
