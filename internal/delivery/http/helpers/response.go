package helpers

import (
	"encoding/json"
	"net/http"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest      = "bad_request"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeForbidden       = "forbidden"
	ErrCodeNotFound        = "not_found"
	ErrCodeConflict        = "conflict"
	ErrCodeDomainRule      = "domain_rule"
	ErrCodeExternalService = "external_service"
	ErrCodeUnavailable     = "unavailable"
	ErrCodeInternalError   = "internal_error"
)

// Flash categories shown by the client next to the result of an action.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

// APIError is the error object in the standardized API response envelope.
// Fields is set for validation failures and maps field names to messages.
// swagger:model APIError
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Flash is a one-line user-facing message attached to a response.
// swagger:model Flash
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Data is nil, Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
	Flash *Flash    `json:"flash,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSONSuccess writes statusCode and an envelope carrying data.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, APIResponse{Data: data})
}

// WriteJSONFlash writes a success envelope with a flash message.
func WriteJSONFlash(w http.ResponseWriter, statusCode int, data any, category, message string) {
	writeJSON(w, statusCode, APIResponse{Data: data, Flash: &Flash{Category: category, Message: message}})
}

// WriteJSONError writes statusCode and an envelope with the given error code and message.
// The message is repeated as a danger flash.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, APIResponse{
		Error: &APIError{Code: code, Message: message},
		Flash: &Flash{Category: FlashDanger, Message: message},
	})
}

// WriteValidationError writes a 400 with per-field messages.
func WriteValidationError(w http.ResponseWriter, fields map[string]string) {
	const msg = "some fields are invalid"
	writeJSON(w, http.StatusBadRequest, APIResponse{
		Error: &APIError{Code: ErrCodeBadRequest, Message: msg, Fields: fields},
		Flash: &Flash{Category: FlashDanger, Message: msg},
	})
}
