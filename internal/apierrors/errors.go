package apierrors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wiredhikari/eix/internal/storage"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	ErrCodePackageNotFound    ErrorCode = "PACKAGE_NOT_FOUND"
	ErrCodeNoVisibleVersion   ErrorCode = "NO_VISIBLE_VERSION"
	ErrCodeIndexNotFound      ErrorCode = "INDEX_NOT_FOUND"
	ErrCodeValidationError    ErrorCode = "VALIDATION_ERROR"
	ErrCodeStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"
	ErrCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteError writes a standardized error response
func WriteError(w http.ResponseWriter, code ErrorCode, message string, statusCode int, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// MapStorageError maps an error from loading the index to an HTTP response
func MapStorageError(err error) (ErrorCode, string, int) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrCodeIndexNotFound, "No index has been built yet; run 'eix update'", http.StatusServiceUnavailable
	case errors.Is(err, storage.ErrStorageUnavailable):
		return ErrCodeStorageUnavailable, "Storage service unavailable", http.StatusServiceUnavailable
	default:
		return ErrCodeInternal, "Internal server error", http.StatusInternalServerError
	}
}
