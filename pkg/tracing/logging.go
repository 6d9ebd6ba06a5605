package tracing

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

var (
	_ Tracer = (*LoggingTracer)(nil)
	_ Span   = (*loggingSpan)(nil)
)

type LoggingTracer struct {
	logger *slog.Logger
	clock  clock.Clock
}

// NewLoggingTracer returns a [LoggingTracer] that writes to logger and reads
// time from c.
func NewLoggingTracer(logger *slog.Logger, c clock.Clock) *LoggingTracer {
	return &LoggingTracer{
		logger: logger,
		clock:  c,
	}
}

//nolint:ireturn
func (l *LoggingTracer) StartSpan(operationName string) Span {
	return &loggingSpan{
		tracer:        l,
		operationName: operationName,
		baggage:       map[string]any{},
		start:         l.clock.Now(),
	}
}

type loggingSpan struct {
	tracer        *LoggingTracer
	baggage       map[string]any
	start         time.Time
	operationName string
	mu            sync.Mutex
}

func (s *loggingSpan) Finish() {
	s.mu.Lock()
	attrs := baggageToAttrs(s.baggage)
	s.mu.Unlock()

	attrs = append(attrs,
		slog.String("operation_name", s.operationName),
		slog.Float64("time_ms", s.tracer.clock.Since(s.start).Seconds()*1e3),
	)
	s.tracer.logger.LogAttrs(context.Background(), slog.LevelDebug, "trace", attrs...)
}

func (s *loggingSpan) SetBaggageItem(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.baggage[key] = value
}

// baggageToAttrs returns the baggage as attributes sorted by key.
func baggageToAttrs(baggage map[string]any) []slog.Attr {
	result := make([]slog.Attr, 0, len(baggage)+2)
	for _, k := range slices.Sorted(maps.Keys(baggage)) {
		result = append(result, slog.Any(k, baggage[k]))
	}

	return result
}
