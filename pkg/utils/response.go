package utils

import (
	"encoding/json"
	"net/http"

	"imgguard/pkg/logger"
)

const (
	// Request Error Codes
	ErrRequestInvalid           = "request/invalid_parameters"
	ErrRequestBadRequest        = "request/bad_request"
	ErrRequestMissingURL        = "request/missing_url"
	ErrRequestTooManyURLs       = "request/too_many_urls"
	ErrRequestRateLimitExceeded = "request/rate_limit_exceeded"
	ErrRequestBodyTooLarge      = "request/body_too_large"

	// Allowlist Decision Codes
	ErrAllowlistNoMatch      = "allowlist/no_match"
	ErrAllowlistMalformedURL = "allowlist/malformed_url"
)

type APIError struct {
	Code    string `json:"code"`    // e.g., "request/missing_url"
	Message string `json:"message"` // User-friendly message
	Status  int    `json:"status"`  // HTTP Status Code
}

// WriteError sends a JSON formatted error response
func WriteError(w http.ResponseWriter, status int, code string, message string) {
	logger.LogDebug("%s: %s", code, message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIError{
		Code:    code,
		Message: message,
		Status:  status,
	})
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
