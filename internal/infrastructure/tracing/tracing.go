package tracing

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// LogExporter пишет завершенные спаны в logrus
type LogExporter struct {
	logger *log.Logger
}

func NewLogExporter(logger *log.Logger) *LogExporter {
	return &LogExporter{logger: logger}
}

func (e *LogExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		fields := log.Fields{
			"trace_id":    span.SpanContext().TraceID().String(),
			"span_id":     span.SpanContext().SpanID().String(),
			"duration_ms": span.EndTime().Sub(span.StartTime()).Milliseconds(),
		}
		for _, kv := range span.Attributes() {
			fields[string(kv.Key)] = kv.Value.AsInterface()
		}

		entry := e.logger.WithFields(fields)
		if status := span.Status(); status.Description != "" {
			entry.WithField("error", status.Description).Warnf("span %s", span.Name())
			continue
		}
		entry.Debugf("span %s", span.Name())
	}
	return nil
}

func (e *LogExporter) Shutdown(ctx context.Context) error {
	return nil
}

// Setup регистрирует глобальный TracerProvider. Возвращает функцию остановки, которая сбрасывает буфер спанов.
func Setup(serviceName string, logger *log.Logger) func(ctx context.Context) error {
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(NewLogExporter(logger), sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
	)
	otel.SetTracerProvider(provider)
	return provider.Shutdown
}
