package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/studenthub/internal/common"
	"github.com/dmitrijs2005/studenthub/internal/logging"
	"github.com/dmitrijs2005/studenthub/internal/validate"
)

var statusBySentinel = []struct {
	err  error
	code int
}{
	{common.ErrNotFound, http.StatusNotFound},
	{common.ErrConflict, http.StatusConflict},
	{common.ErrUnauthorized, http.StatusUnauthorized},
	{common.ErrForbidden, http.StatusForbidden},
	{common.ErrInvalidToken, http.StatusUnauthorized},
	{common.ErrTokenExpired, http.StatusUnauthorized},
}

// errorResponse maps err to a status code and a {"error": ...} body.
// Validation errors also carry their "fields" map.
func errorResponse(err error) (int, echo.Map) {
	var ve *validate.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, echo.Map{"error": ve.Error(), "fields": ve.Fields}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, echo.Map{"error": fmt.Sprint(he.Message)}
	}

	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return s.code, echo.Map{"error": publicMessage(err, s.err)}
		}
	}

	return http.StatusInternalServerError, echo.Map{"error": http.StatusText(http.StatusInternalServerError)}
}

// publicMessage drops the "<sentinel>: " prefix of errors built as
// fmt.Errorf("%w: detail", sentinel).
func publicMessage(err, sentinel error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return rest
	}
	return msg
}

// newHTTPErrorHandler returns an echo.HTTPErrorHandler that knows how to
// handle service errors. Server errors are logged; their details never reach
// the client.
func newHTTPErrorHandler(log logging.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := errorResponse(err)
		if code >= http.StatusInternalServerError {
			log.Error(c.Request().Context(), "request failed",
				"method", c.Request().Method, "path", c.Path(), "err", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			log.Error(c.Request().Context(), "write error response", "err", err)
		}
	}
}
