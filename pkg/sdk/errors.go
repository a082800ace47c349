package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Sentinel errors for daemon failure conditions. Use errors.Is().
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDiagnosticNotFound = errors.New("diagnostic not found")
	ErrSourceUnavailable  = errors.New("diagnostic source unavailable")
)

// APIError is a non-2xx daemon response.
type APIError struct {
	// Status is the HTTP status code.
	Status int
	// Code is the machine-readable error code, e.g. "validation_failed".
	// Empty when the body was not a logsift error envelope.
	Code string
	// Message is the human-readable description.
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("logsift api: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("logsift api: %s: %s", e.Code, e.Message)
}

// Unwrap maps the error code to a sentinel so callers can use errors.Is
// without inspecting codes.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "unauthorized":
		return ErrUnauthorized
	case "bad_request", "validation_failed":
		return ErrInvalidInput
	case "diagnostic_not_found":
		return ErrDiagnosticNotFound
	case "source_unavailable":
		return ErrSourceUnavailable
	}
	return nil
}

// decodeAPIError reads an error response body. Bodies that are not the
// daemon's error envelope are kept verbatim in Message.
func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil || envelope.Error.Code == "" {
		return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}
	return &APIError{
		Status:  resp.StatusCode,
		Code:    envelope.Error.Code,
		Message: envelope.Error.Message,
	}
}
