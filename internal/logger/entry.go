package logger

import (
	"context"
)

// Entry carries per-call metric fields (duration_ms, attempt, count) that
// should not propagate through the context the way tracing fields do.
type Entry struct {
	logger *Logger
	fields Fields
}

// With starts an Entry with the given metric fields.
// Example: logger.With(logger.Fields{logger.FieldAttempt: 2}).Warn(ctx, "...")
func With(fields Fields) *Entry {
	return &Entry{
		logger: getDefaultLogger(),
		fields: fields,
	}
}

// With returns a new Entry with the fields merged in.
func (e *Entry) With(fields Fields) *Entry {
	merged := make(Fields, len(e.fields)+len(fields))
	for k, v := range e.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Entry{logger: e.logger, fields: merged}
}

// WithField returns a new Entry with one more field.
func (e *Entry) WithField(key string, value interface{}) *Entry {
	return e.With(Fields{key: value})
}

// WithAttempt tags the Entry with a delivery attempt number.
func (e *Entry) WithAttempt(n int) *Entry {
	return e.WithField(FieldAttempt, n)
}

// WithDuration tags the Entry with an execution duration in milliseconds.
func (e *Entry) WithDuration(ms int64) *Entry {
	return e.WithField(FieldDurationMs, ms)
}

// resolve prefers the context logger so tracing fields land alongside the
// entry's metric fields.
func (e *Entry) resolve(ctx context.Context) *Logger {
	if ctx != nil {
		return FromContext(ctx)
	}
	return e.logger
}

// Debug logs at Debug level with the entry's fields.
func (e *Entry) Debug(ctx context.Context, format string, args ...interface{}) {
	e.resolve(ctx).WithFields(e.fields).Debugf(format, args...)
}

// Info logs at Info level with the entry's fields.
func (e *Entry) Info(ctx context.Context, format string, args ...interface{}) {
	e.resolve(ctx).WithFields(e.fields).Infof(format, args...)
}

// Warn logs at Warn level with the entry's fields.
func (e *Entry) Warn(ctx context.Context, format string, args ...interface{}) {
	e.resolve(ctx).WithFields(e.fields).Warnf(format, args...)
}

// Error logs at Error level with the entry's fields.
func (e *Entry) Error(ctx context.Context, format string, args ...interface{}) {
	e.resolve(ctx).WithFields(e.fields).Errorf(format, args...)
}
