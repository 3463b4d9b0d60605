package domain

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies an error for propagation policy: tolerated, retried or fatal.
type Kind string

const (
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindUnauthorized   Kind = "unauthorized"
	KindRateLimited    Kind = "rate_limited"
	KindTransient      Kind = "transient"
	KindInvalidInput   Kind = "invalid_input"
	KindPartialFailure Kind = "partial_failure"
)

// Stage identifies how far a multi-step operation progressed before failing.
type Stage string

const (
	StageResolving Stage = "resolving"
	StageTag       Stage = "mutating_tag"
	StageRelease   Stage = "mutating_release"
	StageParams    Stage = "mutating_params"
)

// Error is the typed error carried across the coordinator and its clients.
// Tolerated cases (e.g. not-found during delete) are checked by kind instead
// of being swallowed by broad recovery.
type Error struct {
	Kind        Kind
	System      string // external system involved: "git", "github", "params"
	Stage       Stage
	Message     string
	Remediation string        // for partial failures, the exact follow-up command
	RetryAfter  time.Duration // for rate limits, the server-specified delay
	Err         error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.System != "" {
		msg = e.System + ": " + msg
	}
	if e.Stage != "" {
		msg = fmt.Sprintf("%s (stage: %s)", msg, e.Stage)
	}
	if e.Remediation != "" {
		msg = fmt.Sprintf("%s; to recover, run: %s", msg, e.Remediation)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewNotFound reports an absent tag or release.
func NewNotFound(system, msg string) *Error {
	return &Error{Kind: KindNotFound, System: system, Message: msg}
}

// NewConflict reports an already-exists or rejected-push condition.
func NewConflict(system, msg string) *Error {
	return &Error{Kind: KindConflict, System: system, Message: msg}
}

// NewUnauthorized reports a rejected credential. Never retried.
func NewUnauthorized(system, msg string) *Error {
	return &Error{Kind: KindUnauthorized, System: system, Message: msg}
}

// NewRateLimited reports a rate-limit response with the server's retry hint.
func NewRateLimited(system, msg string, retryAfter time.Duration) *Error {
	return &Error{Kind: KindRateLimited, System: system, Message: msg, RetryAfter: retryAfter}
}

// NewTransient reports a network-level failure that is worth retrying.
func NewTransient(system, msg string, cause error) *Error {
	return &Error{Kind: KindTransient, System: system, Message: msg, Err: cause}
}

// NewInvalidInput reports operator input that can not be acted on. Never
// guessed around.
func NewInvalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

// NewPartialFailure reports a multi-step operation stopped between stages,
// naming the stage reached and the concrete remediation.
func NewPartialFailure(stage Stage, msg, remediation string, cause error) *Error {
	return &Error{
		Kind:        KindPartialFailure,
		Stage:       stage,
		Message:     msg,
		Remediation: remediation,
		Err:         cause,
	}
}

// KindOf returns the kind of err, or empty if err carries no kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsRetryable reports whether err should be retried by the central policy.
// Only transient network failures and rate limits qualify.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindTransient, KindRateLimited:
		return true
	}
	return false
}

// RetryAfterHint returns the server-specified delay for rate-limited errors,
// or zero when the backoff schedule should apply.
func RetryAfterHint(err error) time.Duration {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindRateLimited {
		return e.RetryAfter
	}
	return 0
}
