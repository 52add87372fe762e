package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorType categorizes request failures.
type ErrorType int

const (
	// ErrTypeServer indicates a non-2xx response.
	ErrTypeServer ErrorType = iota
	// ErrTypeTransport indicates the request never produced a response.
	ErrTypeTransport
	// ErrTypeDecode indicates a 2xx response whose body could not be used.
	ErrTypeDecode
)

func (t ErrorType) String() string {
	switch t {
	case ErrTypeServer:
		return "server"
	case ErrTypeTransport:
		return "transport"
	case ErrTypeDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is returned by every Client call that fails.
type Error struct {
	Type     ErrorType
	Endpoint string
	Status   int
	// Detail is the server-supplied message, empty when the server sent none.
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s error", e.Endpoint, e.Type)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Detail returns the server-supplied message carried by err, or "".
func Detail(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// parseDetail extracts a string "detail" field from an error body. Validation
// errors carry a list under the same key; those yield "".
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err != nil {
		return ""
	}
	return detail
}
