package controllers

import (
	"encoding/json"
	"net/http"

	"agrilink-storefront/stores"

	"github.com/pkg/errors"
)

// response mirrors the backend envelope so the UI parses both the same way
type response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
	Kind    stores.Kind `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, response{Success: true, Message: message, Data: data})
}

// writeError reports a store failure with the HTTP status matching its kind
func writeError(w http.ResponseWriter, err error) {
	var se *stores.Error
	if !errors.As(err, &se) {
		writeJSON(w, http.StatusInternalServerError, response{Message: "Internal error"})
		return
	}
	writeJSON(w, statusFor(se.Kind), response{
		Message: se.Message,
		Errors:  se.Fields,
		Kind:    se.Kind,
	})
}

func statusFor(kind stores.Kind) int {
	switch {
	case kind.Local():
		return http.StatusBadRequest
	case kind == stores.KindAuth:
		return http.StatusUnauthorized
	case kind == stores.KindRateLimit:
		return http.StatusTooManyRequests
	case kind == stores.KindNetwork:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func badInput(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, response{Message: "Invalid input", Kind: stores.KindInvalidInput})
}
