package errors

import (
	"net/http"
)

func BadRequest() ErrorEnricher   { return WithCode(http.StatusBadRequest) }
func Unauthorized() ErrorEnricher { return WithCode(http.StatusUnauthorized) }
func Forbidden() ErrorEnricher    { return WithCode(http.StatusForbidden) }
func NotFound() ErrorEnricher     { return WithCode(http.StatusNotFound) }
func Conflict() ErrorEnricher     { return WithCode(http.StatusConflict) }
func Unavailable() ErrorEnricher  { return WithCode(http.StatusServiceUnavailable) }

// Code returns the code carried by err, DefaultCode if err does not carry
// one and 0 for a nil error.
func Code(err error) int {
	if err == nil {
		return 0
	}

	var e Error
	if As(err, &e) {
		return e.Code()
	}
	return DefaultCode
}

// IsNotFound tells whether err carries the not found code.
func IsNotFound(err error) bool {
	return Code(err) == http.StatusNotFound
}
