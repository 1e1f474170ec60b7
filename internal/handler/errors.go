package handler

import (
	"errors"
	"net/http"

	"crm-service/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// respondUsecaseError maps the usecase error taxonomy onto HTTP responses.
// Out-of-scope and missing records both surface as not-found.
func respondUsecaseError(c echo.Context, log *zap.Logger, err error, fallback string) error {
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		log.Warn("Record not found or outside actor scope", zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, usecase.ErrForbidden):
		log.Warn("Operation forbidden for actor", zap.Error(err))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, usecase.ErrValidation):
		log.Warn("Validation failed", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid input"})
	default:
		log.Error(fallback, zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": fallback})
	}
}
