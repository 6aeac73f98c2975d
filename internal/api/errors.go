package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError is a non-2xx response from the backend. Detail carries the
// server's human-readable message when one was provided; surface it to the
// user in preference to anything synthesized client-side.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Detail) != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// decodeError extracts the FastAPI-style {"detail": "..."} message from an
// error body. Non-JSON bodies and structured validation details fall back to
// the bare status code.
func decodeError(status int, body []byte) *APIError {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		return &APIError{Status: status, Detail: strings.TrimSpace(payload.Detail)}
	}
	return &APIError{Status: status}
}
