package engine

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/mpapenbr/yutrace/log"
	"github.com/mpapenbr/yutrace/pkg/model"
)

type metrics struct {
	turns      metric.Int64Counter
	captures   metric.Int64Counter
	activities metric.Int64Counter
	finishes   metric.Int64Counter
	points     metric.Int64Counter
}

func newMetrics(mp metric.MeterProvider, l *log.Logger) *metrics {
	meter := mp.Meter("yutrace.engine")
	fallback := noop.NewMeterProvider().Meter("yutrace.engine")
	counter := func(name, desc, unit string) metric.Int64Counter {
		c, err := meter.Int64Counter(name,
			metric.WithDescription(desc),
			metric.WithUnit(unit))
		if err != nil {
			l.Error("failed to register metric",
				log.String("metric", name),
				log.ErrorField(err))
			c, _ = fallback.Int64Counter(name)
		}
		return c
	}
	return &metrics{
		turns:      counter("yutrace.engine.turns", "Number of turns taken", "{turn}"),
		captures:   counter("yutrace.engine.captures", "Number of captures", "{capture}"),
		activities: counter("yutrace.engine.activities", "Number of recorded activities", "{activity}"),
		finishes:   counter("yutrace.engine.finishes", "Number of teams finished", "{team}"),
		points:     counter("yutrace.engine.points", "Score points booked", "{point}"),
	}
}

func (m *metrics) activity(rec *model.ActivityRecord) {
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("difficulty", string(rec.Difficulty)))
	m.activities.Add(ctx, 1, attrs)
	m.points.Add(ctx, int64(rec.Delta), metric.WithAttributes(attribute.String("source", "activity")))
}

func (m *metrics) turn(res *model.TurnResult) {
	ctx := context.Background()
	m.turns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", res.Outcome.String()),
		attribute.Bool("bonus", res.UsedBonus)))
	captures := len(res.Captured)
	if res.Capture != nil {
		captures++
	}
	if captures > 0 {
		m.captures.Add(ctx, int64(captures))
	}
	if res.Finished {
		m.finishes.Add(ctx, 1)
	}
	if res.PointsAwarded > 0 {
		m.points.Add(ctx, int64(res.PointsAwarded),
			metric.WithAttributes(attribute.String("source", "turn")))
	}
}
