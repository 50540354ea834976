package handler

import "net/http"

// HandleHealth is the liveness check. It reports "ok" whenever the process
// can answer HTTP; it does not check the database or the upload directory.
//
// HTTP: GET /health
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Server is running",
	})
}
