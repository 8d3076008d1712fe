package folio

import (
	"errors"
	"net/http"
	"reflect"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/folio/document"
	"github.com/eringen/folio/editor"
	"github.com/eringen/folio/social"
)

// pagedResponse is the envelope for paginated list responses.
type pagedResponse struct {
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// errorResponse is the envelope for API errors.
type errorResponse struct {
	OK      int               `json:"ok"`
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// respondOK sends a 200 response. Slices are wrapped in {data: [...]}.
func respondOK(c echo.Context, data any) error {
	if data != nil && reflect.ValueOf(data).Kind() == reflect.Slice {
		return c.JSON(http.StatusOK, map[string]any{"data": data})
	}
	return c.JSON(http.StatusOK, data)
}

func respondPaged(c echo.Context, data any, p Pagination) error {
	return c.JSON(http.StatusOK, pagedResponse{Data: data, Pagination: p})
}

// errorStatus maps domain errors to an HTTP status and a client message.
// Unknown errors are internal.
func errorStatus(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		return he.Code, msg
	}
	var httpErr *social.HTTPError
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrSlugRequired),
		errors.Is(err, document.ErrInvalidNode),
		errors.Is(err, document.ErrInvalidPath),
		errors.Is(err, social.ErrUnsupportedURL),
		errors.Is(err, editor.ErrNoSelection),
		errors.Is(err, editor.ErrUnknownCommand),
		errors.Is(err, editor.ErrUnknownMark),
		errors.Is(err, editor.ErrUnsupported),
		errors.Is(err, editor.ErrUnsafeURL),
		errors.Is(err, editor.ErrMenuClosed),
		errors.Is(err, editor.ErrURLRequired):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, social.ErrNotConfigured):
		return http.StatusServiceUnavailable, "social feed is not configured"
	case errors.As(err, &httpErr):
		return http.StatusBadGateway, err.Error()
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		a.writeValidationError(c, verrs)
		return
	}
	code, msg := errorStatus(err)
	if code >= 500 {
		a.Log.Error("server error",
			zap.Error(err),
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path))
	}

	if isAPIPath(c.Request().URL.Path) {
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{OK: 0, Code: code, Message: msg})
		return
	}

	switch {
	case code == http.StatusNotFound:
		_ = RenderStatus(c, code, a.Views.NotFound())
	case code >= 500:
		_ = RenderStatus(c, code, a.Views.ServerError())
	default:
		_ = c.String(code, msg)
	}
}

func (a *App) writeValidationError(c echo.Context, verrs validation.Errors) {
	fields := make(map[string]string, len(verrs))
	for field, ferr := range verrs {
		if ferr != nil {
			fields[field] = ferr.Error()
		}
	}
	_ = c.JSON(http.StatusUnprocessableEntity, errorResponse{
		OK:      0,
		Code:    http.StatusUnprocessableEntity,
		Message: "validation failed",
		Errors:  fields,
	})
}
