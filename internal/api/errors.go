package api

import (
	"errors"
	"fmt"

	"github.com/steemit/topics/internal/api/topics"
	"github.com/steemit/topics/internal/listing"
)

// Standard JSON-RPC error codes
const (
	ErrParseError     = -32700
	ErrInvalidRequest = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternalError  = -32603
	ErrServerError    = -32000
	ErrNotFound       = -32001
)

// Error represents an API error
type Error struct {
	Code    int
	Message string
}

// NewError creates a new API error
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// invalidParamsErrors are rejected as the caller's fault
var invalidParamsErrors = []error{
	topics.ErrInvalidParams,
	listing.ErrUnknownSortOption,
	listing.ErrInvalidPeriod,
	listing.ErrBothAnchors,
	listing.ErrNoGroups,
	listing.ErrViewerRequired,
}

// classify maps a method error to the JSON-RPC error sent back
func classify(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	// bad stored settings aren't the caller's fault
	if errors.Is(err, listing.ErrInvalidSettings) {
		return NewError(ErrServerError, "Server error")
	}
	for _, target := range invalidParamsErrors {
		if errors.Is(err, target) {
			return NewError(ErrInvalidParams, "Invalid params")
		}
	}
	if errors.Is(err, topics.ErrNotFound) {
		return NewError(ErrNotFound, "Not found")
	}
	return NewError(ErrServerError, "Server error")
}
