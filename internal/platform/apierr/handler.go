package apierr

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Body is the JSON envelope of every error response.
type Body struct {
	Error   string   `json:"error"`
	Code    string   `json:"code,omitempty"`
	Details []string `json:"details,omitempty"`
}

const serverErrorMessage = "Server error"

// Handler returns an echo.HTTPErrorHandler. Expected errors are rendered as
// is; anything else is logged with detail and rendered as a generic 500.
func Handler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := render(err)
		if status >= http.StatusInternalServerError {
			logger.Error().
				Err(err).
				Str("request_id", fmt.Sprintf("%v", c.Get("request_id"))).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("unhandled error")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			logger.Error().Err(werr).Msg("write error response")
		}
	}
}

func render(err error) (int, Body) {
	if e, ok := As(err); ok {
		return e.Status, Body{Error: e.Message, Code: e.Code, Details: e.Details}
	}

	if he, ok := err.(*echo.HTTPError); ok {
		if he.Code >= http.StatusInternalServerError {
			return he.Code, Body{Error: serverErrorMessage, Code: CodeInternal}
		}
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		return he.Code, Body{Error: msg}
	}

	return http.StatusInternalServerError, Body{Error: serverErrorMessage, Code: CodeInternal}
}
