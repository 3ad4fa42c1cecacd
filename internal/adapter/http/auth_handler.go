package http

import (
	"net/http"
	"strings"

	"cta-backend/internal/usecase/auth"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuthHandler struct {
	uc  *auth.Usecase
	log *zap.Logger
}

func NewAuthHandler(uc *auth.Usecase, log *zap.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, log: log}
}

type loginReq struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		return invalidFields(c, err)
	}
	res, err := h.uc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Verify checks the bearer token and returns its user.
func (h *AuthHandler) Verify(c echo.Context) error {
	raw := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
	if len(raw) < 7 || !strings.EqualFold(raw[:7], "bearer ") {
		return unauthorized(c)
	}
	u, err := h.uc.Verify(c.Request().Context(), strings.TrimSpace(raw[7:]))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"valid": true, "user": u})
}
