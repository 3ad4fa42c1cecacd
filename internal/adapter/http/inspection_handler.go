package http

import (
	"net/http"
	"time"

	insuc "cta-backend/internal/usecase/inspection"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type InspectionHandler struct {
	uc  *insuc.Usecase
	log *zap.Logger
}

func NewInspectionHandler(uc *insuc.Usecase, log *zap.Logger) *InspectionHandler {
	return &InspectionHandler{uc: uc, log: log}
}

type submitReq struct {
	RegistrationPlate  string     `json:"registration_plate"   validate:"required,plate"`
	VisitDate          string     `json:"visit_date"           validate:"required,datetime=2006-01-02"`
	VehicleCategory    string     `json:"vehicle_category"     validate:"required,category"`
	Center             string     `json:"center"               validate:"required,max=100"`
	TechnicianName     string     `json:"technician_name"      validate:"required,max=100"`
	Latitude           *float64   `json:"latitude"             validate:"omitempty,gte=-90,lte=90"`
	Longitude          *float64   `json:"longitude"            validate:"omitempty,gte=-180,lte=180"`
	Address            *string    `json:"address"`
	CaptureTimestamp   *time.Time `json:"capture_timestamp"`
	Photo              *string    `json:"photo"`
	CertificatePDF     *string    `json:"certificate_pdf"`
	LinkedInspectionID *uint64    `json:"linked_inspection_id"`
	// Derived server side; present only to refuse it explicitly.
	ValidityDate *string `json:"validity_date"`
}

type updateReq struct {
	RegistrationPlate  *string    `json:"registration_plate"   validate:"omitempty,plate"`
	VisitDate          *string    `json:"visit_date"           validate:"omitempty,datetime=2006-01-02"`
	VehicleCategory    *string    `json:"vehicle_category"     validate:"omitempty,category"`
	Center             *string    `json:"center"               validate:"omitempty,max=100"`
	TechnicianName     *string    `json:"technician_name"      validate:"omitempty,max=100"`
	Latitude           *float64   `json:"latitude"             validate:"omitempty,gte=-90,lte=90"`
	Longitude          *float64   `json:"longitude"            validate:"omitempty,gte=-180,lte=180"`
	Address            *string    `json:"address"`
	CaptureTimestamp   *time.Time `json:"capture_timestamp"`
	Photo              *string    `json:"photo"`
	CertificatePDF     *string    `json:"certificate_pdf"`
	LinkedInspectionID *uint64    `json:"linked_inspection_id"`
	ValidityDate       *string    `json:"validity_date"`
}

func derivedValidity(c echo.Context) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Details: []FieldError{{Field: "validity_date", Message: "is derived from visit_date and vehicle_category"}},
	})
}

func (h *InspectionHandler) Submit(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req submitReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if req.ValidityDate != nil {
		return derivedValidity(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalidFields(c, err)
	}
	dto, err := h.uc.Submit(c.Request().Context(), actor, insuc.SubmitInput{
		RegistrationPlate:  req.RegistrationPlate,
		VisitDate:          req.VisitDate,
		VehicleCategory:    req.VehicleCategory,
		Center:             req.Center,
		TechnicianName:     req.TechnicianName,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		Address:            req.Address,
		CaptureTimestamp:   req.CaptureTimestamp,
		Photo:              req.Photo,
		CertificatePDF:     req.CertificatePDF,
		LinkedInspectionID: req.LinkedInspectionID,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *InspectionHandler) List(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context(), page(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InspectionHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	dto, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *InspectionHandler) Search(c echo.Context) error {
	out, err := h.uc.Search(c.Request().Context(), c.Param("plate"), page(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InspectionHandler) Update(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	var req updateReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if req.ValidityDate != nil {
		return derivedValidity(c)
	}
	if err := c.Validate(&req); err != nil {
		return invalidFields(c, err)
	}
	dto, err := h.uc.Update(c.Request().Context(), actor, id, insuc.UpdateInput{
		RegistrationPlate:  req.RegistrationPlate,
		VisitDate:          req.VisitDate,
		VehicleCategory:    req.VehicleCategory,
		Center:             req.Center,
		TechnicianName:     req.TechnicianName,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		Address:            req.Address,
		CaptureTimestamp:   req.CaptureTimestamp,
		Photo:              req.Photo,
		CertificatePDF:     req.CertificatePDF,
		LinkedInspectionID: req.LinkedInspectionID,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *InspectionHandler) Delete(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	if err := h.uc.Delete(c.Request().Context(), actor, id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *InspectionHandler) Events(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badID(c)
	}
	out, err := h.uc.Events(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}
