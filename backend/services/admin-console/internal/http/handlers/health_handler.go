package handlers

import (
	"fmt"
	"net/http"
)

// NewHealthHandler returns GET /health handler. cacheState reports the
// user cache lifecycle; it may be nil.
func NewHealthHandler(cacheState func() fmt.Stringer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]string{"status": "ok"}
		if cacheState != nil {
			body["userCache"] = cacheState().String()
		}
		writeJSON(w, http.StatusOK, body)
	}
}
