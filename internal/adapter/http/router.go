package http

import (
	"net/http"

	"cta-backend/internal/adapter/middleware"
	"cta-backend/internal/domain/user"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Health      *Handler
	Auth        *AuthHandler
	Inspections *InspectionHandler
	Supervisor  *SupervisorHandler
	Users       *UserHandler
}

// RouteOptions carries the cross-cutting pieces of the router. Idempotency
// and Metrics may be nil.
type RouteOptions struct {
	Auth        echo.MiddlewareFunc
	Idempotency echo.MiddlewareFunc
	Metrics     http.Handler
}

func RegisterRoutes(e *echo.Echo, h Handlers, opt RouteOptions) {
	e.GET("/health", h.Health.Health)
	if opt.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(opt.Metrics))
	}

	api := e.Group("/api")
	api.POST("/auth/login", h.Auth.Login)
	api.GET("/auth/verify", h.Auth.Verify)

	cta := api.Group("/cta/inspections", opt.Auth)
	submit := []echo.MiddlewareFunc{}
	if opt.Idempotency != nil {
		submit = append(submit, opt.Idempotency)
	}
	cta.POST("", h.Inspections.Submit, submit...)
	cta.GET("", h.Inspections.List)
	cta.GET("/search/:plate", h.Inspections.Search)
	cta.GET("/:id", h.Inspections.Get)
	cta.GET("/:id/events", h.Inspections.Events)
	cta.PUT("/:id", h.Inspections.Update)
	cta.DELETE("/:id", h.Inspections.Delete, middleware.RequireCapability(user.CapDeleteInspection))

	sup := api.Group("/supervisor", opt.Auth)
	decide := middleware.RequireCapability(user.CapValidateInspection)
	sup.GET("/pending", h.Supervisor.Pending, decide)
	sup.POST("/validate/:id", h.Supervisor.Validate, decide)
	sup.POST("/reject/:id", h.Supervisor.Reject, decide)
	sup.GET("/history", h.Supervisor.History, decide)
	sup.GET("/statistics", h.Supervisor.Statistics, middleware.RequireCapability(user.CapViewStatistics))

	users := api.Group("/users", opt.Auth, middleware.RequireCapability(user.CapManageUsers))
	users.GET("", h.Users.List)
	users.POST("", h.Users.Create)
	users.GET("/:id", h.Users.Get)
	users.PUT("/:id", h.Users.Update)
	users.DELETE("/:id", h.Users.Delete)
}
