package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within
// a context. Business context (issue_number, record_kind, ...) set once flows
// into every log statement below it.
type LogFields struct {
	IssueNumber *int    // Provisioned index issue number
	RecordKind  *string // Record kind (verification, admins, bans, achievements)
	RequestID   *string // Verification request ID
	Attempt     *int    // Retry attempt index
	Component   string  // Component name, e.g. "wiki.provision"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.IssueNumber != nil {
		result.IssueNumber = new.IssueNumber
	}
	if new.RecordKind != nil {
		result.RecordKind = new.RecordKind
	}
	if new.RequestID != nil {
		result.RequestID = new.RequestID
	}
	if new.Attempt != nil {
		result.Attempt = new.Attempt
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline.
func Ptr[T any](v T) *T {
	return &v
}
