// Package api implements the authorized HTTP client used for every call to
// the chat backend.
//
// This file defines the typed failure returned by the client. The server's
// error payload is decoded exactly once, at the client boundary, into a
// tagged Error value so callers can branch on the failure kind instead of
// re-inspecting response bodies ad hoc.
//
// Error taxonomy:
//   - KindNetwork:         transport failed before any response was obtained.
//   - KindUnauthenticated: the response status indicates an invalid or
//     expired token (HTTP 401).
//   - KindValidation:      a 4xx response with a structured `detail` body
//     describing the violated field or constraint.
//   - KindServer:          a 5xx response, or a body that could not be parsed.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an API failure.
type Kind string

const (
	KindNetwork         Kind = "network"
	KindUnauthenticated Kind = "unauthenticated"
	KindValidation      Kind = "validation"
	KindServer          Kind = "server"
)

// Fallback messages for responses that carry no usable detail. The network
// message matches what the UI is expected to display verbatim.
const (
	msgNetworkUnreachable = "Network error or server is unreachable."
	msgUnknown            = "Unknown error occurred."
)

// Error is the typed failure returned by the authorized client for any
// non-success outcome. It carries enough structure (status, kind, parsed
// detail) for callers to branch without touching the raw body.
type Error struct {
	// Kind tags the failure class; see the Kind constants.
	Kind Kind
	// Status is the HTTP status code, or 0 when no response was obtained.
	Status int
	// Field names the offending field for validation failures (e.g.
	// "username" on a duplicate-value rejection); empty otherwise.
	Field string
	// Message is human-readable and safe to display.
	Message string
	// Detail is the raw `detail` payload from the response body, if any.
	Detail json.RawMessage

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// Unwrap exposes the underlying transport error for network failures.
func (e *Error) Unwrap() error { return e.cause }

// IsUnauthenticated reports whether err is an API failure caused by a
// missing, invalid, or expired token.
func IsUnauthenticated(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == KindUnauthenticated
}

// AsError unpacks err into an *Error when it originated from this package.
func AsError(err error) (*Error, bool) {
	var ae *Error
	ok := errors.As(err, &ae)
	return ae, ok
}

// netError wraps a transport-level failure.
func netError(cause error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Message: msgNetworkUnreachable,
		cause:   cause,
	}
}

// errorEnvelope is the backend's error body shape: {"detail": ...} where
// detail is either a plain string or a structured object.
type errorEnvelope struct {
	Detail json.RawMessage `json:"detail"`
}

// errorDetail is the structured variant of the `detail` payload.
type errorDetail struct {
	Type             string `json:"type"`
	EntityName       string `json:"entity_name"`
	EntityField      string `json:"entity_field"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
}

// decodeError converts a non-success response into a typed *Error.
//
// The 401 status alone marks a failure as unauthenticated; the body, when
// parseable, still contributes the display message. Unparseable bodies on
// other statuses degrade to KindServer, matching the "malformed body is an
// unexpected failure" contract.
func decodeError(status int, body []byte) *Error {
	e := &Error{Status: status, Message: msgUnknown}

	switch {
	case status == http.StatusUnauthorized:
		e.Kind = KindUnauthenticated
	case status >= http.StatusInternalServerError:
		e.Kind = KindServer
	default:
		e.Kind = KindValidation
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		if e.Kind == KindValidation {
			// A 4xx without a structured detail carries no field-level
			// information; treat it as an unexpected failure.
			e.Kind = KindServer
		}
		return e
	}
	e.Detail = env.Detail

	// Plain-string detail: use it verbatim.
	var s string
	if err := json.Unmarshal(env.Detail, &s); err == nil {
		if s != "" {
			e.Message = s
		}
		return e
	}

	// Structured detail.
	var d errorDetail
	if err := json.Unmarshal(env.Detail, &d); err != nil {
		if e.Kind == KindValidation {
			e.Kind = KindServer
		}
		return e
	}

	switch {
	case d.Type == "duplicate_value" && d.EntityField != "":
		e.Field = d.EntityField
		e.Message = d.EntityField + " already taken"
	case d.ErrorDescription != "":
		e.Message = d.ErrorDescription
	case d.Type == "entity_not_found" && d.EntityName != "":
		e.Message = d.EntityName + " not found"
	case d.Msg != "":
		e.Message = d.Msg
	}
	return e
}
