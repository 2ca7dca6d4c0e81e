package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidLink      = "INVALID_LINK"
	ErrCodeExtractionFailed = "EXTRACTION_FAILED"
	ErrCodeOutOfStock       = "OUT_OF_STOCK"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeNetwork          = "NETWORK_ERROR"
	ErrCodeInternal         = "INTERNAL_ERROR"

	// API-surface codes.
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeUnauthorized = "UNAUTHORIZED"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DealError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
// Every pipeline stage converts its own failures into a DealError so that
// nothing else crosses component boundaries.
type DealError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *DealError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DealError) Unwrap() error {
	return e.Err
}

// NewDealError creates a new DealError.
func NewDealError(code, message string, err error) *DealError {
	return &DealError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *DealError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// AsDealError coerces any error into a DealError, defaulting unknown errors
// to INTERNAL_ERROR.
func AsDealError(err error) *DealError {
	if err == nil {
		return nil
	}
	if de, ok := err.(*DealError); ok {
		return de
	}
	return NewDealError(ErrCodeInternal, err.Error(), err)
}
