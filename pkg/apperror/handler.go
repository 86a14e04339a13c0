package apperror

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HTTPErrorHandler returns an Echo error handler rendering app errors either
// as {"error": {"code", "message"}} or, for problem errors, as problem details.
func HTTPErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		errorObj := map[string]any{
			"code":    "internal_error",
			"message": "An internal error occurred",
		}

		var appErr *Error
		var he *echo.HTTPError
		switch {
		case errors.As(err, &appErr):
			code, body := ToHTTPError(appErr)
			if code >= 500 {
				logServerError(log, code, err)
			}
			if appErr.Problem {
				c.Response().Header().Set(echo.HeaderContentType, ProblemContentType)
			}
			if c.Request().Method == http.MethodHead {
				_ = c.NoContent(code)
				return
			}
			_ = c.JSON(code, body)
			return
		case errors.As(err, &he):
			code = he.Code
			switch msg := he.Message.(type) {
			case ProblemDetails:
				writeProblem(c, msg)
				return
			case map[string]any:
				if errInner, ok := msg["error"].(map[string]any); ok {
					for k, v := range errInner {
						errorObj[k] = v
					}
				}
			case string:
				errorObj["message"] = msg
				errorObj["code"] = codeForStatus(code)
			}
		}

		if code >= 500 {
			logServerError(log, code, err)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, map[string]any{"error": errorObj})
	}
}

func writeProblem(c echo.Context, p ProblemDetails) {
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(p.Status)
		return
	}
	c.Response().Header().Set(echo.HeaderContentType, ProblemContentType)
	_ = c.JSON(p.Status, p)
}

func logServerError(log *slog.Logger, code int, err error) {
	log.Error("request error",
		slog.Int("status", code),
		slog.String("error", err.Error()),
	)
}
