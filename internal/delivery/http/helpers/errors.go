package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"speakerhub/internal/domain"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// Order matters: specific sentinels come before the generic ones they might wrap.
var errorMappings = []errorMapping{
	{domain.ErrNotFound, http.StatusNotFound, ErrCodeNotFound, ""},
	{domain.ErrForbidden, http.StatusForbidden, ErrCodeForbidden, "you are not allowed to do this"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid email or password"},
	{domain.ErrDuplicateEmail, http.StatusConflict, ErrCodeConflict, ""},
	{domain.ErrDuplicateProfile, http.StatusConflict, ErrCodeConflict, ""},
	{domain.ErrKeywordInUse, http.StatusConflict, ErrCodeConflict, ""},
	{domain.ErrConflict, http.StatusConflict, ErrCodeConflict, ""},
	{domain.ErrWrongPassword, http.StatusUnprocessableEntity, ErrCodeDomainRule, ""},
	{domain.ErrCannotDeleteSelf, http.StatusUnprocessableEntity, ErrCodeDomainRule, ""},
	{domain.ErrNotAssociated, http.StatusUnprocessableEntity, ErrCodeDomainRule, ""},
	{domain.ErrEventNotConcluded, http.StatusUnprocessableEntity, ErrCodeDomainRule, ""},
	{domain.ErrNoProfileURL, http.StatusUnprocessableEntity, ErrCodeDomainRule, ""},
	{domain.ErrInvalidInput, http.StatusBadRequest, ErrCodeBadRequest, ""},
	{domain.ErrImporterDisabled, http.StatusServiceUnavailable, ErrCodeUnavailable, ""},
	{domain.ErrExternalService, http.StatusBadGateway, ErrCodeExternalService, "the profile network could not be reached, try again later"},
}

// WriteServiceError maps a service error to a status code and error envelope.
// Unknown errors become 500 and are logged; their text is never sent to the client.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		WriteValidationError(w, verr.Fields)
		return
	}
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := m.message
		if msg == "" {
			msg = m.target.Error()
		}
		if m.status >= http.StatusInternalServerError {
			logger.WarnContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		}
		WriteJSONError(w, m.status, m.code, msg)
		return
	}
	logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
}
