package stores

import (
	"context"
	"net/http"

	"agrilink-storefront/api"

	"github.com/pkg/errors"
)

// Kind classifies a store failure
type Kind string

const (
	KindValidation        Kind = "ValidationError"
	KindAuth              Kind = "AuthError"
	KindRateLimit         Kind = "RateLimitError"
	KindServer            Kind = "ServerError"
	KindNetwork           Kind = "NetworkError"
	KindInvalidInput      Kind = "InvalidInput"
	KindEmptyCart         Kind = "EmptyCart"
	KindIncompleteAddress Kind = "IncompleteAddress"
)

// Local reports whether the kind is raised before any network call
func (k Kind) Local() bool {
	switch k {
	case KindValidation, KindInvalidInput, KindEmptyCart, KindIncompleteAddress:
		return true
	}
	return false
}

// Error is the structured failure every store operation reports
type Error struct {
	Op      string   `json:"-"`
	Kind    Kind     `json:"kind"`
	Status  int      `json:"status,omitempty"` // backend HTTP status, 0 for local failures
	Message string   `json:"message"`          // user-facing
	Fields  []string `json:"fields,omitempty"`
	Err     error    `json:"-"`
}

func (e *Error) Error() string {
	if e.Op != "" {
		return e.Op + ": " + e.Message
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of a store error, or "" for anything else
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

func newError(op string, kind Kind, message string, fields ...string) *Error {
	return &Error{Op: op, Kind: kind, Message: message, Fields: fields}
}

// classify maps a backend or transport failure onto the store taxonomy. The
// server's own message wins over fallback when there is one.
func classify(op string, err error, fallback string) *Error {
	e := &Error{Op: op, Kind: KindServer, Message: fallback, Err: err}

	var re *api.ResponseError
	var ne *api.NetworkError
	switch {
	case errors.As(err, &re):
		e.Status = re.Status
		e.Fields = re.Errors
		if re.Message != "" {
			e.Message = re.Message
		}
		switch re.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			e.Kind = KindAuth
		case http.StatusTooManyRequests:
			e.Kind = KindRateLimit
		}
	case errors.As(err, &ne), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		e.Kind = KindNetwork
		e.Message = "Unable to reach the server. Please check your connection"
	case errors.Is(err, api.ErrMalformedResponse):
		e.Message = "Invalid server response structure"
	}
	return e
}
