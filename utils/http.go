package utils

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the wire shape of every error the gateway returns.
// Error carries the machine-readable code (or the bare message for
// internal errors), Usage is populated only on admission denials.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
	Usage   *BlockedUsage          `json:"usage,omitempty"`
}

// BlockedUsage reports the numbers behind an admission denial
type BlockedUsage struct {
	RunCount        int     `json:"runCount"`
	TotalCost       float64 `json:"totalCost"`
	DailyRunCap     int     `json:"dailyRunCap"`
	DailyCostCapUSD float64 `json:"dailyCostCapUsd"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteOK writes a 200 OK response
func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteBadRequest writes a 400 Bad Request response with error details
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]interface{}) error {
	return WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: message,
		Details: details,
	})
}

// WriteUnauthorized writes a 401 Unauthorized response
func WriteUnauthorized(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Authentication required"
	}
	return WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
		Error:   "unauthorized",
		Message: message,
	})
}

// WriteNotFound writes a 404 Not Found response
func WriteNotFound(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Resource not found"
	}
	return WriteJSON(w, http.StatusNotFound, ErrorResponse{
		Error:   "not_found",
		Message: message,
	})
}

// WriteBlockedLimit writes the 429 admission denial, carrying the usage
// numbers so callers can render the state of the budget.
func WriteBlockedLimit(w http.ResponseWriter, message string, usage *BlockedUsage) error {
	return WriteJSON(w, http.StatusTooManyRequests, ErrorResponse{
		Error:   "blocked_limit",
		Message: message,
		Usage:   usage,
	})
}

// WriteInternalServerError writes a 500 response. The message lands in
// the error field directly.
func WriteInternalServerError(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Internal server error"
	}
	return WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: message,
	})
}
