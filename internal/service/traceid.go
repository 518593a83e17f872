package service

import "github.com/google/uuid"

// TraceIDGenerator stamps each response envelope with a correlation id.
type TraceIDGenerator interface {
	Generate() string
}

// UUIDv7 generates time-ordered UUIDv7 trace ids.
type UUIDv7 struct{}

// Generate returns a new UUIDv7, falling back to a random v4 if the clock
// source fails.
func (UUIDv7) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
