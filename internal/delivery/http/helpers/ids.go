package helpers

import (
	"net/http"

	"github.com/google/uuid"
)

// PathID reads the named path value and checks that it is a UUID. On failure it writes a 404,
// since no record can have that id, and returns false.
func PathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := r.PathValue(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "not found")
		return "", false
	}
	return id.String(), true
}
