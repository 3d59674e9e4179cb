package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "callinterview"

// Metrics holds the service counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	callsStarted       *prometheus.CounterVec
	questionsAsked     prometheus.Counter
	answersCaptured    *prometheus.CounterVec
	replayedCallbacks  prometheus.Counter
	interviewsFinished prometheus.Counter
	transcripts        *prometheus.CounterVec
	webhooks           *prometheus.CounterVec
	notifications      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		callsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_started_total",
			Help:      "Outbound interview calls requested from the provider.",
		}, []string{"result"}),
		questionsAsked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_asked_total",
			Help:      "Interview questions created and played.",
		}),
		answersCaptured: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_captured_total",
			Help:      "Answers captured, by capture mode.",
		}, []string{"mode"}),
		replayedCallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replayed_callbacks_total",
			Help:      "Answer callbacks that had already been applied.",
		}),
		interviewsFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interviews_finished_total",
			Help:      "Calls that reached the closing message.",
		}),
		transcripts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcripts_total",
			Help:      "Transcript outcomes applied to responses.",
		}, []string{"status", "source"}),
		webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhooks_total",
			Help:      "Inbound provider webhooks by kind and HTTP status.",
		}, []string{"kind", "code"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Interview summary deliveries.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.callsStarted,
		m.questionsAsked,
		m.answersCaptured,
		m.replayedCallbacks,
		m.interviewsFinished,
		m.transcripts,
		m.webhooks,
		m.notifications,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) CallStarted(ok bool) {
	if m == nil {
		return
	}
	m.callsStarted.WithLabelValues(result(ok)).Inc()
}

func (m *Metrics) QuestionAsked() {
	if m == nil {
		return
	}
	m.questionsAsked.Inc()
}

func (m *Metrics) AnswerCaptured(mode string) {
	if m == nil {
		return
	}
	m.answersCaptured.WithLabelValues(mode).Inc()
}

func (m *Metrics) CallbackReplayed() {
	if m == nil {
		return
	}
	m.replayedCallbacks.Inc()
}

func (m *Metrics) InterviewFinished() {
	if m == nil {
		return
	}
	m.interviewsFinished.Inc()
}

func (m *Metrics) TranscriptApplied(status, source string) {
	if m == nil {
		return
	}
	m.transcripts.WithLabelValues(status, source).Inc()
}

func (m *Metrics) Webhook(kind, code string) {
	if m == nil {
		return
	}
	m.webhooks.WithLabelValues(kind, code).Inc()
}

func (m *Metrics) Notification(ok bool) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
