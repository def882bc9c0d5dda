package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "cursor-automator"

// Metrics holds all OTEL metric instruments for cursor-automator.
// All counters are cumulative (monotonic) and safe for concurrent use.
type Metrics struct {
	// Samples partitioned by classifier category (accept, completed,
	// busy, dismiss, unknown) via attributes.
	Samples metric.Int64Counter

	// Input emission counters
	CommandsEmitted metric.Int64Counter
	MessagesSent    metric.Int64Counter
	EmitFailures    metric.Int64Counter

	// Recognition counters
	RecognitionFailures metric.Int64Counter

	// Checklist counters
	ChecklistReparses metric.Int64Counter
}

// NewMetrics creates all metric instruments. Returns no-op instruments
// when no MeterProvider is registered (safe to call unconditionally).
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.Samples, err = meter.Int64Counter("samples.total",
		metric.WithDescription("Total region samples partitioned by classifier category"))
	if err != nil {
		return nil, err
	}

	m.CommandsEmitted, err = meter.Int64Counter("input.commands_emitted",
		metric.WithDescription("Number of accept chords sent to the editor"))
	if err != nil {
		return nil, err
	}

	m.MessagesSent, err = meter.Int64Counter("input.messages_sent",
		metric.WithDescription("Number of continue messages typed into the editor"))
	if err != nil {
		return nil, err
	}

	m.EmitFailures, err = meter.Int64Counter("input.emit_failures",
		metric.WithDescription("Number of failed input emission attempts"))
	if err != nil {
		return nil, err
	}

	m.RecognitionFailures, err = meter.Int64Counter("ocr.failures",
		metric.WithDescription("Number of capture or recognition attempts that returned an error"))
	if err != nil {
		return nil, err
	}

	m.ChecklistReparses, err = meter.Int64Counter("checklist.reparses",
		metric.WithDescription("Number of times the checklist file was re-read and re-parsed"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordSample records one classified region sample.
func (m *Metrics) RecordSample(ctx context.Context, category string) {
	if m == nil {
		return
	}
	m.Samples.Add(ctx, 1, metric.WithAttributes(
		attribute.String("sample.category", category),
	))
}

// RecordCommandEmitted records one accept chord delivery.
func (m *Metrics) RecordCommandEmitted(ctx context.Context) {
	if m == nil {
		return
	}
	m.CommandsEmitted.Add(ctx, 1)
}

// RecordMessageSent records one continue message delivery.
func (m *Metrics) RecordMessageSent(ctx context.Context) {
	if m == nil {
		return
	}
	m.MessagesSent.Add(ctx, 1)
}

// RecordEmitFailure records a failed emission attempt.
func (m *Metrics) RecordEmitFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.EmitFailures.Add(ctx, 1)
}

// RecordRecognitionFailure records a failed capture or OCR attempt.
func (m *Metrics) RecordRecognitionFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.RecognitionFailures.Add(ctx, 1)
}

// RecordChecklistReparse records one checklist re-parse.
func (m *Metrics) RecordChecklistReparse(ctx context.Context) {
	if m == nil {
		return
	}
	m.ChecklistReparses.Add(ctx, 1)
}
