package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"pcp-stats/connectors/chart"
	"pcp-stats/domain/pcp"
)

// errBadRequest marks malformed query parameters and uploads.
var errBadRequest = errors.New("invalid input")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// status maps domain errors to HTTP codes.
func status(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, pcp.ErrUnknownPreset),
		errors.Is(err, pcp.ErrInvalidWindow),
		errors.Is(err, pcp.ErrComplianceRange),
		errors.Is(err, pcp.ErrMissingColumn),
		errors.Is(err, pcp.ErrMalformedMonth):
		return http.StatusBadRequest
	case errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, pcp.ErrEmptyWindow),
		errors.Is(err, pcp.ErrEmptyDataset),
		errors.Is(err, pcp.ErrAxisUnavailable),
		errors.Is(err, chart.ErrNothingToDraw):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

var messages = map[int]string{
	http.StatusBadRequest:          "invalid request",
	http.StatusNotFound:            "not found",
	http.StatusUnprocessableEntity: "Período sem dados ou eixo indisponível",
	http.StatusInternalServerError: "internal error",
}

func fail(c echo.Context, err error) error {
	code := status(err)
	if code == http.StatusInternalServerError {
		slog.Error("web.request.error", "path", c.Request().URL.Path, "error", err)
	}
	return c.JSON(code, map[string]any{
		"error":   err.Error(),
		"message": messages[code],
	})
}
