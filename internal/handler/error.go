package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/haatos/pipeline-composer/internal/service"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const pgUniqueViolation = "23505"

type ErrorResponse struct {
	Message string `json:"message"`
}

func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		he = echo.NewHTTPError(http.StatusInternalServerError, "something went terribly wrong").WithInternal(err)
	}

	attrs := []any{
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
		"status", he.Code,
	}
	if he.Internal != nil {
		attrs = append(attrs, "error", he.Internal)
	}
	if he.Code >= http.StatusInternalServerError {
		slog.Error("handler internal error", attrs...)
	} else {
		slog.Debug("handler error", attrs...)
	}

	if err := c.JSON(he.Code, ErrorResponse{Message: fmt.Sprint(he.Message)}); err != nil {
		slog.Error("err returning json", "error", err)
	}
}

func isUniqueConstraintError(err error) bool {
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		return sqErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}

func newError(err error, status int, message string) error {
	e := echo.NewHTTPError(status, message)
	if err != nil {
		e = e.WithInternal(err)
	}
	return e
}

// serviceError maps an error returned by a service to a response. message
// is used for errors that are not caused by the request.
func serviceError(err error, message string) error {
	switch {
	case errors.Is(err, service.ErrInvalidDefinition):
		return newError(err, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, sql.ErrNoRows):
		return newError(err, http.StatusNotFound, "not found")
	case isUniqueConstraintError(err):
		return newError(err, http.StatusConflict, "a composition with that name already exists")
	default:
		return newError(err, http.StatusInternalServerError, message)
	}
}
