// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/datadrop/datadrop/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Unknown errors collapse to a detail-free 500 so internal failures
// never leak to the caller.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrAccountInactive):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "Account is inactive. Please contact an administrator.")
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "Invalid email or password")
	case errors.Is(err, shared.ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "Invalid token")
	case errors.Is(err, shared.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", "Admin access required")
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrUnsupportedType):
		Problem(w, http.StatusBadRequest, "Unsupported Type", "File type not allowed. Please upload structured data files (CSV, JSON, TXT, Excel, XML)")
	case errors.Is(err, shared.ErrPayloadTooLarge):
		Problem(w, http.StatusRequestEntityTooLarge, "Payload Too Large", "File size exceeds the upload limit")
	case errors.Is(err, shared.ErrTooManyAttempts):
		Problem(w, http.StatusTooManyRequests, "Too Many Requests", "Too many failed login attempts. Try again later.")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
