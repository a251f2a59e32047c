package tracing

import (
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RecordSafeError records the error class on the span without leaking
// request payloads or user identifiers into trace storage.
func RecordSafeError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}

	root := err
	for {
		unwrapped := errors.Unwrap(root)
		if unwrapped == nil {
			break
		}
		root = unwrapped
	}

	span.SetStatus(codes.Error, root.Error())
	span.SetAttributes(attribute.String("error.type", root.Error()))
}
