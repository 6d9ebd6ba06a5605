// Package tracing times simulation phases as spans. [LoggingTracer] reports a
// finished span as a debug log record carrying the span's name, its baggage
// and its duration in milliseconds.
package tracing
