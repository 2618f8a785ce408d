package handlers

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes v as JSON with the given status code. Encoding errors
// are ignored; the header is already on the wire by then.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error": msg}.
func WriteError(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, map[string]any{"error": msg})
}
