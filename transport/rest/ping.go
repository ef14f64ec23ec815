package rest

import (
	"io"
	"net/http"
)

const pong = "pong"

// Ping - liveness check for GET and HEAD; the body is written for GET only.
func Ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	if r.Method == http.MethodHead {
		return
	}

	// the status is already sent, a failed write only means the client went away
	_, _ = io.WriteString(w, pong)
}
