package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrLoginFailed        = errors.New("failed to login to ticketleap")
	ErrSessionExpired     = errors.New("ticketleap session expired")
	ErrNotFound           = errors.New("not found")
	ErrMalformedPage      = errors.New("malformed page")
	ErrTransport          = errors.New("transport failure")
	ErrSubmissionRejected = errors.New("submission rejected")
)

// AuthError is returned when credentials are rejected or an authenticated
// request lands back on the login page.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: %s", e.Err.Error())
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

type NotFoundKind string

const (
	KindEvent  NotFoundKind = "event"
	KindDate   NotFoundKind = "date"
	KindTicket NotFoundKind = "ticket"
)

// NotFoundError reports a name that could not be resolved to an id.
type NotFoundError struct {
	Kind NotFoundKind
	Key  string
	// the slug and/or date the lookup was scoped to
	Scope string
	// closest known name, if any
	Suggestion string
}

func (e *NotFoundError) Error() string {
	var out strings.Builder
	fmt.Fprintf(&out, "%s %q not found", e.Kind, e.Key)
	if e.Scope != "" {
		fmt.Fprintf(&out, " in %s", e.Scope)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&out, " (did you mean %q?)", e.Suggestion)
	}
	return out.String()
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// MalformedPageError is returned when an expected landmark is missing from
// the markup of a fetched page.
type MalformedPageError struct {
	Page     string
	Landmark string
	Err      error
}

func (e *MalformedPageError) Error() string {
	msg := fmt.Sprintf("malformed page %s: missing %s", e.Page, e.Landmark)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedPageError) Is(target error) bool {
	return target == ErrMalformedPage
}

func (e *MalformedPageError) Unwrap() error {
	return e.Err
}

// TransportError wraps network failures and non-2xx responses. Status is 0
// when no response was received.
type TransportError struct {
	Method string
	Url    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Url, e.Err.Error())
	}
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Url, e.Status)
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SubmissionRejectedError is returned when the platform answers a form
// submission with an error status or validation messages.
type SubmissionRejectedError struct {
	Action   string
	Key      string
	Status   int
	Messages []string
}

func (e *SubmissionRejectedError) Error() string {
	msg := fmt.Sprintf("%s %q rejected (status %d)", e.Action, e.Key, e.Status)
	if len(e.Messages) > 0 {
		msg += ": " + strings.Join(e.Messages, "; ")
	}
	return msg
}

func (e *SubmissionRejectedError) Is(target error) bool {
	return target == ErrSubmissionRejected
}
