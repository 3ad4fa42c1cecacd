package http

import (
	"errors"
	"net/http"

	"cta-backend/internal/domain/inspection"
	"cta-backend/internal/domain/user"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// statusOf maps domain errors to HTTP statuses; 500 means unexpected.
func statusOf(err error) int {
	switch {
	case errors.Is(err, inspection.ErrValidation),
		errors.Is(err, user.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, inspection.ErrInvalidStateTransition),
		errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, user.ErrHasRecords):
		return http.StatusConflict
	case errors.Is(err, inspection.ErrPermissionDenied),
		errors.Is(err, user.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, inspection.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, inspection.ErrNoOp),
		errors.Is(err, user.ErrNoOp):
		return http.StatusBadRequest
	case errors.Is(err, user.ErrInvalidToken),
		errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// respondError writes err as an ErrorResponse. Unexpected errors are logged
// and answered with a bare "internal server error".
func respondError(c echo.Context, log *zap.Logger, err error) error {
	status := statusOf(err)
	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		log.Error("unhandled error",
			zap.String("method", c.Request().Method),
			zap.String("route", c.Path()),
			zap.Error(err),
		)
		msg = "internal server error"
	case http.StatusUnauthorized:
		// token parse details stay server side
		if errors.Is(err, user.ErrInvalidToken) {
			msg = user.ErrInvalidToken.Error()
		}
	}
	return c.JSON(status, ErrorResponse{Error: msg})
}

func badBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
}

func invalidFields(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Details: ToFieldErrors(err),
	})
}
