package http

import (
	"net/http"
	"strconv"

	"cta-backend/internal/adapter/middleware"
	"cta-backend/internal/domain/inspection"
	insuc "cta-backend/internal/usecase/inspection"

	"github.com/labstack/echo/v4"
)

func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func badID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id path param"})
}

// page reads ?limit=&offset=; malformed values fall back to defaults.
func page(c echo.Context) insuc.Page {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	return insuc.Page{Limit: limit, Offset: offset}
}

func actorFrom(c echo.Context) (inspection.Actor, bool) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return inspection.Actor{}, false
	}
	return inspection.Actor{UserID: claims.UserID, Role: claims.Role}, true
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing bearer token"})
}
