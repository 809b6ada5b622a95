package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed chat-platform call.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindForbidden
	KindRateLimited
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindRateLimited:
		return "rate_limited"
	}
	return "unknown"
}

// PlatformError wraps a failed chat-platform call with its classification.
type PlatformError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *PlatformError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// KindOf returns the classification of err, or KindUnknown if err is not a PlatformError.
func KindOf(err error) ErrorKind {
	var pe *PlatformError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err is a platform not-found error.
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}
