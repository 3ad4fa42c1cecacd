package inspection

import (
	"time"

	domain "cta-backend/internal/domain/inspection"
)

type SubmitInput struct {
	RegistrationPlate  string
	VisitDate          string // YYYY-MM-DD
	VehicleCategory    string
	Center             string
	TechnicianName     string
	Latitude           *float64
	Longitude          *float64
	Address            *string
	CaptureTimestamp   *time.Time
	Photo              *string
	CertificatePDF     *string
	LinkedInspectionID *uint64
}

// UpdateInput is a partial edit; nil fields are left unchanged.
type UpdateInput struct {
	RegistrationPlate  *string
	VisitDate          *string
	VehicleCategory    *string
	Center             *string
	TechnicianName     *string
	Latitude           *float64
	Longitude          *float64
	Address            *string
	CaptureTimestamp   *time.Time
	Photo              *string
	CertificatePDF     *string
	LinkedInspectionID *uint64
}

func (in UpdateInput) patch() (domain.Patch, error) {
	p := domain.Patch{
		RegistrationPlate:  in.RegistrationPlate,
		VehicleCategory:    in.VehicleCategory,
		Center:             in.Center,
		TechnicianName:     in.TechnicianName,
		Latitude:           in.Latitude,
		Longitude:          in.Longitude,
		Address:            in.Address,
		CaptureTimestamp:   in.CaptureTimestamp,
		PhotoBase64:        in.Photo,
		CertificatePDF:     in.CertificatePDF,
		LinkedInspectionID: in.LinkedInspectionID,
	}
	if in.VisitDate != nil {
		d, err := domain.ParseDate(*in.VisitDate)
		if err != nil {
			return domain.Patch{}, err
		}
		p.VisitDate = &d
	}
	return p, nil
}

type RecordDTO struct {
	ID                  uint64     `json:"id"`
	RegistrationPlate   string     `json:"registration_plate"`
	VisitDate           string     `json:"visit_date"`
	VehicleCategory     string     `json:"vehicle_category"`
	ValidityDate        string     `json:"validity_date"`
	Center              string     `json:"center"`
	TechnicianName      string     `json:"technician_name"`
	Latitude            *float64   `json:"latitude,omitempty"`
	Longitude           *float64   `json:"longitude,omitempty"`
	Address             *string    `json:"address,omitempty"`
	CaptureTimestamp    *time.Time `json:"capture_timestamp,omitempty"`
	Photo               *string    `json:"photo,omitempty"`
	CertificatePDF      *string    `json:"certificate_pdf,omitempty"`
	LinkedInspectionID  *uint64    `json:"linked_inspection_id,omitempty"`
	SubmittedBy         uint64     `json:"submitted_by"`
	ValidationState     string     `json:"validation_state"`
	SupervisorID        *uint64    `json:"supervisor_id,omitempty"`
	SupervisorComment   *string    `json:"supervisor_comment,omitempty"`
	ValidationTimestamp *time.Time `json:"validation_timestamp,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func ToDTO(r *domain.Record) RecordDTO {
	return RecordDTO{
		ID:                  r.ID,
		RegistrationPlate:   r.RegistrationPlate,
		VisitDate:           r.VisitDate.Format(domain.DateLayout),
		VehicleCategory:     string(r.VehicleCategory),
		ValidityDate:        r.ValidityDate.Format(domain.DateLayout),
		Center:              r.Center,
		TechnicianName:      r.TechnicianName,
		Latitude:            r.Latitude,
		Longitude:           r.Longitude,
		Address:             r.Address,
		CaptureTimestamp:    r.CaptureTimestamp,
		Photo:               r.PhotoBase64,
		CertificatePDF:      r.CertificatePDF,
		LinkedInspectionID:  r.LinkedInspectionID,
		SubmittedBy:         r.SubmittedBy,
		ValidationState:     string(r.ValidationState),
		SupervisorID:        r.SupervisorID,
		SupervisorComment:   r.SupervisorComment,
		ValidationTimestamp: r.ValidationTimestamp,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func ToDTOs(rs []domain.Record) []RecordDTO {
	out := make([]RecordDTO, 0, len(rs))
	for i := range rs {
		out = append(out, ToDTO(&rs[i]))
	}
	return out
}

type EventDTO struct {
	ID       string    `json:"id"`
	RecordID uint64    `json:"record_id"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	ActorID  uint64    `json:"actor_id"`
	Comment  *string   `json:"comment,omitempty"`
	At       time.Time `json:"at"`
}

func toEventDTO(e domain.ValidationEvent) EventDTO {
	return EventDTO{
		ID:       e.ID.String(),
		RecordID: e.RecordID,
		From:     string(e.FromState),
		To:       string(e.ToState),
		ActorID:  e.ActorID,
		Comment:  e.Comment,
		At:       e.CreatedAt,
	}
}

// Page bounds a listing; zero Limit means DefaultPageSize.
type Page struct {
	Limit  int
	Offset int
}

const (
	DefaultPageSize = 100
	MaxPageSize     = 500
)

func (p Page) normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
