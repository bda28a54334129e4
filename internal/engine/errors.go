package engine

import (
	"errors"
	"fmt"
)

// OpError represents a failed history operation.
//
// Operation errors include:
//   - Invalid operation: self-paste, paste before copy, empty selection
//   - No source history: nothing to copy from the source item
//   - Sidecar parse: the external sidecar file could not be read
//   - Store error: the underlying transaction failed and was rolled back
//
// OpError includes structured fields for diagnostics.
type OpError struct {
	// Code identifies the error category.
	Code OpErrorCode

	// Message is a human-readable description.
	Message string

	// SourceID identifies the copy source, if any (-1 otherwise).
	SourceID int64

	// DestID identifies the paste destination, if any (-1 otherwise).
	DestID int64

	// Err is the underlying cause, if any.
	Err error
}

// OpErrorCode categorizes operation errors.
type OpErrorCode string

const (
	// ErrCodeInvalidOperation indicates a request that can never
	// succeed as posed (self-paste, nothing selected).
	ErrCodeInvalidOperation OpErrorCode = "INVALID_OPERATION"

	// ErrCodeNoSourceHistory indicates the source has nothing to copy.
	ErrCodeNoSourceHistory OpErrorCode = "NO_SOURCE_HISTORY"

	// ErrCodeSidecarParse indicates a sidecar file could not be read.
	ErrCodeSidecarParse OpErrorCode = "SIDECAR_PARSE"

	// ErrCodeStore indicates the underlying transaction failed; the
	// destination stack was rolled back untouched.
	ErrCodeStore OpErrorCode = "STORE_ERROR"
)

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.SourceID >= 0 && e.DestID >= 0 {
		return fmt.Sprintf("%s: %s (source=%d, dest=%d)", e.Code, e.Message, e.SourceID, e.DestID)
	}
	if e.DestID >= 0 {
		return fmt.Sprintf("%s: %s (dest=%d)", e.Code, e.Message, e.DestID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *OpError) Unwrap() error {
	return e.Err
}

// IsInvalidOperation reports whether err is an INVALID_OPERATION error.
// Uses errors.As to handle wrapped errors.
func IsInvalidOperation(err error) bool {
	return hasCode(err, ErrCodeInvalidOperation)
}

// IsNoSourceHistory reports whether err is a NO_SOURCE_HISTORY error.
func IsNoSourceHistory(err error) bool {
	return hasCode(err, ErrCodeNoSourceHistory)
}

// IsSidecarParse reports whether err is a SIDECAR_PARSE error.
func IsSidecarParse(err error) bool {
	return hasCode(err, ErrCodeSidecarParse)
}

// IsStoreError reports whether err is a STORE_ERROR error.
func IsStoreError(err error) bool {
	return hasCode(err, ErrCodeStore)
}

func hasCode(err error, code OpErrorCode) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Code == code
	}
	return false
}

func invalidOperation(message string, sourceID, destID int64) *OpError {
	return &OpError{Code: ErrCodeInvalidOperation, Message: message, SourceID: sourceID, DestID: destID}
}

func noSourceHistory(sourceID int64) *OpError {
	return &OpError{
		Code:     ErrCodeNoSourceHistory,
		Message:  "source item has no history entries to copy",
		SourceID: sourceID,
		DestID:   -1,
	}
}

func sidecarParse(destID int64, path string, err error) *OpError {
	return &OpError{
		Code:     ErrCodeSidecarParse,
		Message:  fmt.Sprintf("cannot read sidecar %s: %v", path, err),
		SourceID: -1,
		DestID:   destID,
		Err:      err,
	}
}

func storeError(sourceID, destID int64, err error) *OpError {
	return &OpError{
		Code:     ErrCodeStore,
		Message:  err.Error(),
		SourceID: sourceID,
		DestID:   destID,
		Err:      err,
	}
}
