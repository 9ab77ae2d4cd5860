package core

import (
	"github.com/google/uuid"
)

// RequestID correlates log lines and error bodies of one API call.
type RequestID string

// NewRequestID returns a time-ordered UUIDv7, or a v4 when the clock source
// fails.
func NewRequestID() RequestID {
	if id, err := uuid.NewV7(); err == nil {
		return RequestID(id.String())
	}
	return RequestID(uuid.NewString())
}

// ParseRequestID accepts a caller-supplied ID if it is a well-formed UUID and
// returns it in canonical lower-case form.
func ParseRequestID(raw string) (RequestID, bool) {
	if raw == "" {
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return RequestID(id.String()), true
}
