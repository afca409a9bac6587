package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging.
// Use these constants instead of raw strings.
const (
	// Identity and context
	FieldCallID    = "call_id"
	FieldRequestID = "request_id"

	// Components
	FieldComponent = "component"
	FieldMethod    = "method"

	// Addressing
	FieldCollection = "collection"
	FieldNamespace  = "namespace"
	FieldWorkspace  = "workspace"
	FieldEntityType = "entity_type"
	FieldField      = "field"
	FieldRowID      = "row_id"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts and sizes
	FieldCount = "count"

	// Network
	FieldAddress = "address"
	FieldURL     = "url"
	FieldStatus  = "status"
)

type contextKey string

const (
	callIDKey    contextKey = "logger_call_id"
	componentKey contextKey = "logger_component"
)

// WithCallID adds a streaming call ID to the context for logging
func WithCallID(ctx context.Context, callID string) context.Context {
	return context.WithValue(ctx, callIDKey, callID)
}

// WithComponent adds a component name to the context for logging
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if callID, ok := ctx.Value(callIDKey).(string); ok && callID != "" {
		fields = append(fields, FieldCallID, callID)
	}
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		fields = append(fields, FieldComponent, component)
	}

	return fields
}

// FromContext returns base with the fields carried by ctx attached.
func FromContext(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	store := rowstore.New(cat, upstream, logger.ComponentLogger("rowstore"))
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
