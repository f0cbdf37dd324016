package handler

import "net/http"

// Health reports process liveness. Dependencies are not checked; a healthy
// process with a broken table shows up as request errors, not here.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "ok"})
}
