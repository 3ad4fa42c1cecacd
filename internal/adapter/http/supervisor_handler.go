package http

import (
	"context"
	"net/http"

	"cta-backend/internal/domain/inspection"
	insuc "cta-backend/internal/usecase/inspection"
	"cta-backend/internal/usecase/validation"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type SupervisorHandler struct {
	uc  *validation.Usecase
	log *zap.Logger
}

func NewSupervisorHandler(uc *validation.Usecase, log *zap.Logger) *SupervisorHandler {
	return &SupervisorHandler{uc: uc, log: log}
}

type decideFunc func(ctx context.Context, actor inspection.Actor, id uint64, comment string) (*insuc.RecordDTO, error)

type decisionReq struct {
	Comment string `json:"comment" validate:"max=2000"`
}

func (h *SupervisorHandler) Pending(c echo.Context) error {
	out, err := h.uc.Pending(c.Request().Context(), page(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SupervisorHandler) Validate(c echo.Context) error {
	return h.decide(c, h.uc.Validate)
}

func (h *SupervisorHandler) Reject(c echo.Context) error {
	return h.decide(c, h.uc.Reject)
}

func (h *SupervisorHandler) decide(c echo.Context, fn decideFunc) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	var req decisionReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalidFields(c, err)
	}
	dto, err := fn(c.Request().Context(), actor, id, req.Comment)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *SupervisorHandler) History(c echo.Context) error {
	out, err := h.uc.History(c.Request().Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SupervisorHandler) Statistics(c echo.Context) error {
	st, err := h.uc.Statistics(c.Request().Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, st)
}
