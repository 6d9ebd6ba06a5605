package tracing

// Tracer starts spans.
type Tracer interface {
	StartSpan(operationName string) Span
}

// Span is a timed unit of work. Baggage items are reported when the span
// finishes.
type Span interface {
	SetBaggageItem(key string, value any)
	Finish()
}
