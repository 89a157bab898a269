package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError sends a {"message": ...} JSON body, matching the shape the
// API handlers use for errors.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
