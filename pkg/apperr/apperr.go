// Package apperr carries the domain error taxonomy shared by the identity,
// session and booking layers. Each error has a Kind (matched with errors.Is)
// and a user-facing message; the transport maps kinds to HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a domain failure.
type Kind string

const (
	KindAuthenticationRequired Kind = "authentication_required"
	KindInvalidToken           Kind = "invalid_token"
	KindSessionExpired         Kind = "session_expired"
	KindUnknownSigningKey      Kind = "unknown_signing_key"
	KindUpstreamUnavailable    Kind = "upstream_unavailable"
	KindMalformedKeySet        Kind = "malformed_key_set"
	KindConflict               Kind = "conflict"
	KindValidationFailed       Kind = "validation_failed"
	KindBadRequest             Kind = "bad_request"
	KindNotFound               Kind = "not_found"
	KindAlreadyReminded        Kind = "already_reminded"
	KindDecodeError            Kind = "decode_error"
)

// Sentinels for errors.Is; an *Error matches the sentinel of its Kind.
var (
	ErrAuthenticationRequired = &Error{Kind: KindAuthenticationRequired}
	ErrInvalidToken           = &Error{Kind: KindInvalidToken}
	ErrSessionExpired         = &Error{Kind: KindSessionExpired}
	ErrUnknownSigningKey      = &Error{Kind: KindUnknownSigningKey}
	ErrUpstreamUnavailable    = &Error{Kind: KindUpstreamUnavailable}
	ErrMalformedKeySet        = &Error{Kind: KindMalformedKeySet}
	ErrConflict               = &Error{Kind: KindConflict}
	ErrValidationFailed       = &Error{Kind: KindValidationFailed}
	ErrBadRequest             = &Error{Kind: KindBadRequest}
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrAlreadyReminded        = &Error{Kind: KindAlreadyReminded}
	ErrDecodeError            = &Error{Kind: KindDecodeError}
)

// Error is a classified failure with a message safe to show to the caller.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New builds an *Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap builds an *Error of the given kind around a cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return string(e.Kind) + ": " + e.Message
	case e.Err != nil:
		return string(e.Kind) + ": " + e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so errors.Is(err, apperr.ErrNotFound) works for
// any *Error of KindNotFound, regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return "", false
}

// Status maps a Kind onto an HTTP status code.
func Status(k Kind) int {
	switch k {
	case KindAuthenticationRequired, KindInvalidToken, KindSessionExpired, KindUnknownSigningKey:
		return http.StatusUnauthorized
	case KindUpstreamUnavailable, KindMalformedKeySet:
		return http.StatusBadGateway
	case KindConflict, KindAlreadyReminded:
		return http.StatusConflict
	case KindValidationFailed:
		return http.StatusUnprocessableEntity
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// IsAuthFailure reports whether k is one of the kinds that must clear the
// session cookies before being returned.
func IsAuthFailure(k Kind) bool {
	return Status(k) == http.StatusUnauthorized
}
