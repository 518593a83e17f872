package service

import (
	"context"
	"errors"

	"github.com/roach88/auditlens/internal/audit"
	"github.com/roach88/auditlens/internal/lineage"
	"github.com/roach88/auditlens/internal/store"
)

// ErrInvalidInput marks a malformed request argument, such as a
// non-numeric id.
var ErrInvalidInput = errors.New("invalid input")

// ErrorClass groups operation failures by how a caller should react.
type ErrorClass int

const (
	// ClassInternal is anything not covered below.
	ClassInternal ErrorClass = iota
	// ClassInvalidInput means the request itself was malformed; the
	// operation did not run.
	ClassInvalidInput
	// ClassUnavailable means the store could not be reached or the
	// deadline passed.
	ClassUnavailable
	// ClassQueryFailure means the store rejected or failed the query.
	ClassQueryFailure
)

// Error codes carried in response envelopes.
const (
	CodeInternal     = "E001"
	CodeInvalidInput = "E100"
	CodeUnavailable  = "E200"
	CodeQueryFailure = "E201"
)

// Classify maps an operation error to its class.
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ClassInternal
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, audit.ErrInvalidRange),
		errors.Is(err, audit.ErrUnknownKind),
		errors.Is(err, lineage.ErrInvalidCustomer):
		return ClassInvalidInput
	case store.IsUnavailable(err),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return ClassUnavailable
	case store.IsQueryFailure(err):
		return ClassQueryFailure
	}
	return ClassInternal
}

// Code returns the envelope error code for the class.
func (c ErrorClass) Code() string {
	switch c {
	case ClassInvalidInput:
		return CodeInvalidInput
	case ClassUnavailable:
		return CodeUnavailable
	case ClassQueryFailure:
		return CodeQueryFailure
	}
	return CodeInternal
}

func (c ErrorClass) String() string {
	switch c {
	case ClassInvalidInput:
		return "invalid_input"
	case ClassUnavailable:
		return "unavailable"
	case ClassQueryFailure:
		return "query_failure"
	}
	return "internal"
}
