package controllers

import (
	"net/http"

	h "speakerhub/internal/delivery/http/helpers"
	"speakerhub/internal/delivery/http/middleware"
)

// DateTimeLayout is the wire format of event start and end times, always UTC.
const DateTimeLayout = "2006-01-02 15:04"

// StatusResponse is the data payload of endpoints that return no resource.
type StatusResponse struct {
	Status string `json:"status"`
}

// currentUser returns the authenticated user id or writes a 401.
func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return "", false
	}
	return userID, true
}
