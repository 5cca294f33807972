package api

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// ErrMalformedResponse is returned when a 2xx body does not have the expected shape
var ErrMalformedResponse = errors.New("malformed response")

// ResponseError is a non-2xx answer from the backend
type ResponseError struct {
	Status    int
	Message   string
	Errors    []string // field-level messages, if any
	URL       string
	RequestID string
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d %s", e.URL, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %d", e.URL, e.Status)
}

// NetworkError means the request never produced a response
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	var re *ResponseError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}

// parseFieldErrors accepts the shapes backends use for validation details:
// ["msg", ...], [{"msg": ...}], [{"message": ...}] or {"field": "msg"}.
func parseFieldErrors(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var plain []string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}

	var objects []struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &objects); err == nil {
		out := make([]string, 0, len(objects))
		for _, o := range objects {
			if o.Msg != "" {
				out = append(out, o.Msg)
			} else if o.Message != "" {
				out = append(out, o.Message)
			}
		}
		return out
	}

	var byField map[string]string
	if err := json.Unmarshal(raw, &byField); err == nil {
		keys := make([]string, 0, len(byField))
		for k := range byField {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]string, 0, len(keys))
		for _, k := range keys {
			out = append(out, byField[k])
		}
		return out
	}
	return nil
}
