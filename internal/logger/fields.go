package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldCandidate is the structured log field key for the candidate name.
	FieldCandidate = "candidate"
	// FieldJob is the structured log field key for the job title.
	FieldJob = "job"
	// FieldSession is the structured log field key for the interview session id.
	FieldSession = "session_id"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches the provided fields to the logger, defaulting to a
// no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// SessionFields describes an interview session. Empty values are skipped.
func SessionFields(session, candidate, job string) []zap.Field {
	return StringFields(
		StringField{Key: FieldSession, Value: session},
		StringField{Key: FieldCandidate, Value: candidate},
		StringField{Key: FieldJob, Value: job},
	)
}

// WithSessionFields attaches the session fields to the provided logger.
func WithSessionFields(logger *zap.Logger, session, candidate, job string) *zap.Logger {
	return WithFields(logger, SessionFields(session, candidate, job)...)
}
