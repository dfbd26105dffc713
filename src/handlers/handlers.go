// Package handlers contains the HTTP handlers behind the REST API.
// Handlers validate input first, then talk to the store scoped by the
// authenticated user, and always answer in the JSON envelope.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"spendwise-server/src/util"
)

// internalError logs the real error and hides it from the caller
// unless the server runs in development mode.
func internalError(w http.ResponseWriter, devMode bool, err error) {
	slog.Error("internal error", "error", err)
	if devMode {
		util.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	util.Error(w, http.StatusInternalServerError, "Internal Server Error")
}

// parseDate accepts a plain calendar date or a full RFC 3339 timestamp.
func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}
