package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized is returned after a 401. The session has already been torn
// down when a caller sees it, so callers must not report it again.
var ErrUnauthorized = errors.New("unauthorized")

const genericMessage = "Could not process the request"

type FieldError struct {
	Field   string `json:"campo"`
	Message string `json:"error"`
}

// Error is a non-2xx response other than an authenticated 401.
type Error struct {
	Method     string       `json:"-"`
	Path       string       `json:"-"`
	StatusCode int          `json:"-"`
	Message    string       `json:"message"`
	Details    []FieldError `json:"detalles"`
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

// UserMessage joins field details, falling back to the server message.
func (e *Error) UserMessage() string {
	if len(e.Details) > 0 {
		messages := make([]string, 0, len(e.Details))
		for _, detail := range e.Details {
			messages = append(messages, detail.Message)
		}
		return strings.Join(messages, ", ")
	}
	if e.Message != "" {
		return e.Message
	}
	return genericMessage
}

type Kind int

const (
	KindNone Kind = iota
	KindUnauthorized
	KindForbidden
	KindServer
	KindClient
	KindNetwork
	KindCanceled
)

// Classify maps an error returned by the client onto the failure taxonomy.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, ErrUnauthorized) {
		return KindUnauthorized
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusForbidden:
			return KindForbidden
		case apiErr.StatusCode >= http.StatusInternalServerError:
			return KindServer
		default:
			return KindClient
		}
	}
	return KindNetwork
}

// UserMessage renders err for a form or toast, using fallback for failures
// that carry no server explanation.
func UserMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
		if msg := apiErr.UserMessage(); msg != genericMessage {
			return msg
		}
	}
	return fallback
}

// Describe renders err for a toast. It reports false for failures the user
// must not see: a rejected session or a canceled request.
func Describe(err error, fallback string) (string, bool) {
	switch Classify(err) {
	case KindNone, KindUnauthorized, KindCanceled:
		return "", false
	case KindServer:
		return fallback + ": server error, please try again", true
	case KindNetwork:
		return fallback + ": check your connection and try again", true
	default:
		return UserMessage(err, fallback), true
	}
}
