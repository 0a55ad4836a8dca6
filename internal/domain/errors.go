package domain

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

// Sentinel errors shared by services and repositories.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")

	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWrongPassword      = errors.New("current password does not match")
	ErrCannotDeleteSelf   = errors.New("users cannot delete their own account")

	ErrKeywordInUse = errors.New("keyword is still assigned to speakers")

	ErrNotAssociated     = errors.New("speaker is not linked to this event")
	ErrEventNotConcluded = errors.New("event has not ended yet")

	ErrDuplicateProfile = errors.New("a speaker with this profile url already exists")
	ErrNoProfileURL     = errors.New("speaker has no profile url")
	ErrExternalService  = errors.New("external service failure")
	ErrImporterDisabled = errors.New("profile importer is not configured")
)

// ValidationError carries per-field messages for rejected input.
// It matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records msg for field. The first message per field wins.
func (e *ValidationError) Add(field, msg string) {
	if _, ok := e.Fields[field]; ok {
		return
	}
	e.Fields[field] = msg
}

// HasErrors reports whether any field was rejected.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// OrNil returns e when it has errors, otherwise nil.
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, field := range slices.Sorted(maps.Keys(e.Fields)) {
		msgs = append(msgs, field+": "+e.Fields[field])
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
