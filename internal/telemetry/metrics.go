package telemetry

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/victornm/jeopardy/internal/domain"
	"github.com/victornm/jeopardy/internal/event"
)

const namespace = "jeopardy"

var (
	questionsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "questions_resolved_total",
		Help:      "Questions taken off the board, by reason.",
	}, []string{"reason"})

	answersRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "answers_total",
		Help:      "Judged answers, by result and whether the question was a Daily Double.",
	}, []string{"result", "daily_double"})

	persistenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "persistence_failures_total",
		Help:      "Snapshot writes that failed, by key.",
	}, []string{"key"})
)

// MonitorGame counts resolutions and judged answers published on the bus.
func MonitorGame(eb *event.Bus) {
	eb.Subscribe(domain.EventNameQuestionResolved, func(_ context.Context, e event.Event) error {
		questionsResolved.WithLabelValues(string(e.(domain.EventQuestionResolved).Reason)).Inc()
		return nil
	})

	eb.Subscribe(domain.EventNameAnswerRecorded, func(_ context.Context, e event.Event) error {
		a := e.(domain.EventAnswerRecorded)

		result := "incorrect"
		if a.Correct {
			result = "correct"
		}

		answersRecorded.WithLabelValues(result, strconv.FormatBool(a.DailyDouble)).Inc()
		return nil
	})
}

func PersistenceFailed(key string) {
	persistenceFailures.WithLabelValues(key).Inc()
}
