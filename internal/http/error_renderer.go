package httpx

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	apperrors "github.com/openquest/questlog/internal/errors"
)

// RenderError writes an error as the JSON envelope the front end consumes:
// {"success": false, "message": ..., "errors": [{field, message}]}.
// Internal errors never leak their cause to the client.
func RenderError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		WriteJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "Internal server error",
		})
		return
	}

	status := statusForCode(appErr.Code)
	body := map[string]any{
		"success": false,
		"message": appErr.Message,
	}
	if len(appErr.Violations) > 0 {
		body["errors"] = appErr.Violations
	}

	switch appErr.Code {
	case apperrors.ErrCodeRateLimited:
		if appErr.RetryAfter > 0 {
			secs := int(math.Ceil(appErr.RetryAfter.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(secs))
		}
	case apperrors.ErrCodeInternal:
		body["message"] = "Internal server error"
	}

	WriteJSON(w, status, body)
}

// statusForCode maps error codes to HTTP status. Conflicts surface as 400
// to match the wire contract the front end was built against.
func statusForCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeConflict, apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden
	case apperrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
