// Package handler holds the HTTP boundary: request decoding, service calls,
// and error-to-status mapping.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"notable/internal/domain"
	"notable/internal/httputil"
)

// handleError maps domain errors to their HTTP status. Anything not
// classified is logged with the component tag and surfaced as a 500.
func handleError(w http.ResponseWriter, logger *slog.Logger, component string, err error) {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}

	logger.Error("unhandled error", "component", component, "error", err)
	httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
}
