// Package errors provides standardized error handling for the report pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeFetchTransportFailed    ErrorCode = "FETCH_TRANSPORT_FAILED"
	ErrCodeResponseDecodeFailed    ErrorCode = "RESPONSE_DECODE_FAILED"
	ErrCodeUnexpectedPayloadShape  ErrorCode = "UNEXPECTED_PAYLOAD_SHAPE"
	ErrCodePropertyNotFound        ErrorCode = "PROPERTY_NOT_FOUND"
	ErrCodeComplaintsNotConfigured ErrorCode = "COMPLAINTS_NOT_CONFIGURED"

	ErrCodeChartRenderFailed ErrorCode = "CHART_RENDER_FAILED"
	ErrCodeDeliveryFailed    ErrorCode = "DELIVERY_FAILED"
	ErrCodeDigestSendFailed  ErrorCode = "DIGEST_SEND_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is lets errors.Is match two StandardErrors by code.
func (e *StandardError) Is(target error) bool {
	var std *StandardError
	if errors.As(target, &std) {
		return e.Code == std.Code
	}
	return false
}

// ==========================
// 2. Error Constructors
// ==========================

// NewFetchTransportFailedError creates a retryable transport-level fetch error.
// Covers network failures and non-2xx responses alike.
func NewFetchTransportFailedError(url string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFetchTransportFailed,
		Message:   "Data source request failed",
		Details:   fmt.Sprintf("url: %s, error: %s", url, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewResponseDecodeFailedError creates a non-retryable body decode error.
func NewResponseDecodeFailedError(url string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeResponseDecodeFailed,
		Message:   "Data source returned a non-JSON body",
		Details:   fmt.Sprintf("url: %s, error: %s", url, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnexpectedPayloadShapeError creates a non-retryable payload shape error.
// The data source is expected to answer with a bare list or {"data": [...]}.
func NewUnexpectedPayloadShapeError(url string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnexpectedPayloadShape,
		Message:   "Unexpected payload format from data source",
		Details:   fmt.Sprintf("url: %s", url),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPropertyNotFoundError creates a non-retryable not-found error.
func NewPropertyNotFoundError(propertyID string) *StandardError {
	return &StandardError{
		Code:      ErrCodePropertyNotFound,
		Message:   "Property not found",
		Details:   fmt.Sprintf("propertyId: %s", propertyID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewComplaintsNotConfiguredError creates a non-retryable configuration error.
func NewComplaintsNotConfiguredError() *StandardError {
	return &StandardError{
		Code:      ErrCodeComplaintsNotConfigured,
		Message:   "Complaints endpoint is not configured",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewChartRenderFailedError creates a non-retryable chart rendering error.
func NewChartRenderFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeChartRenderFailed,
		Message:   "Chart rendering failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDeliveryFailedError creates a retryable message delivery error.
func NewDeliveryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDeliveryFailed,
		Message:   "Message delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDigestSendFailedError creates a retryable digest delivery error.
func NewDigestSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDigestSendFailed,
		Message:   "Digest delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Helpers
// ==========================

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	var std *StandardError
	if errors.As(err, &std) {
		return std
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// CodeOf extracts the error code, or INTERNAL_ERROR for foreign errors.
func CodeOf(err error) ErrorCode {
	return Normalize(err).Code
}

// IsNotFound reports whether err signals a missing property or complaint set.
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodePropertyNotFound
}

// GetErrorCategory groups codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeFetchTransportFailed, ErrCodeResponseDecodeFailed, ErrCodeUnexpectedPayloadShape:
		return "datasource"
	case ErrCodePropertyNotFound, ErrCodeComplaintsNotConfigured:
		return "lookup"
	case ErrCodeChartRenderFailed:
		return "rendering"
	case ErrCodeDeliveryFailed, ErrCodeDigestSendFailed:
		return "delivery"
	default:
		return "internal"
	}
}

// GetRetryCount returns how many delivery retries a code warrants.
// Fetch failures are never retried: the pipeline degrades to an empty result
// within the same invocation instead.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDeliveryFailed, ErrCodeDigestSendFailed:
		return 3
	default:
		return 0
	}
}
