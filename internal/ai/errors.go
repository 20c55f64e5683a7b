// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"errors"
	"fmt"
	"strings"
)

// Kind tags every failure the generation client can surface. Callers
// switch on the kind instead of string-matching error messages; the HTTP
// layer maps kinds to status codes.
type Kind string

const (
	KindValidation      Kind = "validation_error"
	KindConfiguration   Kind = "configuration_error"
	KindInvalidEndpoint Kind = "invalid_endpoint"
	KindNetwork         Kind = "network_error"
	KindUnauthorized    Kind = "unauthorized"
	KindNotFound        Kind = "not_found"
	KindRateLimited     Kind = "rate_limited"
	KindEmptyOutput     Kind = "empty_output"
	KindMalformedOutput Kind = "malformed_output"
	KindTimeout         Kind = "timeout"
	KindService         Kind = "service_error"
)

// Error is the tagged error value returned by every failing client
// operation.
type Error struct {
	Kind    Kind
	Message string

	// Missing lists absent configuration fields (KindConfiguration only).
	Missing []string

	// Raw preserves the model's verbatim output when it could not be
	// parsed (KindMalformedOutput only). Never discarded — it is the only
	// way to diagnose a bad generation offline.
	Raw string

	// Status is the upstream HTTP status, when one was received.
	Status int

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ai: %s", e.Kind)
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if len(e.Missing) > 0 {
		b.WriteString(": missing " + strings.Join(e.Missing, ", "))
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of a tagged error, or KindService for anything
// untagged.
func KindOf(err error) Kind {
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return aiErr.Kind
	}
	return KindService
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	var aiErr *Error
	return errors.As(err, &aiErr) && aiErr.Kind == k
}

// Retryable reports whether the failure may succeed on a second attempt.
// Network errors, 429s, and upstream 5xx qualify. Auth, config, and parse
// failures never do; retrying a malformed output in particular would
// re-spend tokens on the same prompt.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindRateLimited:
		return true
	case KindService:
		return e.Status == 0 || e.Status >= 500
	}
	return false
}
