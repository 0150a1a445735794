package handler

import (
	"encoding/json"
	"net/http"
)

// Handler serves the API banner.
func Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := map[string]interface{}{
		"status":  "ok",
		"message": "FreshFetch API is running",
		"docs":    "/swagger/index.html",
		"path":    r.URL.Path,
	}

	json.NewEncoder(w).Encode(response)
}
