// Package httputil holds small helpers shared by every HTTP surface.
package httputil

import (
	"encoding/json"
	"net/http"
)

// WriteJSON serializes v with the given status. Encoding failures after the
// header is written can only be logged by the caller's middleware; the body
// is already committed.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the standard single-field error body. No internal
// details ever cross this boundary.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}
