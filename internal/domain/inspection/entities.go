package inspection

import (
	"fmt"
	"strings"
	"time"

	"cta-backend/pkg/id"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VehicleCategory drives the validity period of an inspection.
type VehicleCategory string

const (
	CategoryLightVehicle      VehicleCategory = "VL"   // véhicule léger
	CategoryHeavyGoodsVehicle VehicleCategory = "PL"   // poids lourd
	CategoryTaxi              VehicleCategory = "TAXI" // taxi / public transport of persons
)

var validityMonths = map[VehicleCategory]int{
	CategoryLightVehicle:      12,
	CategoryHeavyGoodsVehicle: 6,
	CategoryTaxi:              3,
}

// ParseCategory normalizes s and rejects anything outside the category table.
func ParseCategory(s string) (VehicleCategory, error) {
	c := VehicleCategory(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := validityMonths[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

// ValidityMonths returns how many months an inspection of category c stays valid.
func (c VehicleCategory) ValidityMonths() (int, error) {
	m, ok := validityMonths[c]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCategory, string(c))
	}
	return m, nil
}

type ValidationState string

const (
	StatePending   ValidationState = "pending"
	StateValidated ValidationState = "validated"
	StateRejected  ValidationState = "rejected"
)

func (s ValidationState) Terminal() bool {
	return s == StateValidated || s == StateRejected
}

// Table: inspection_records
type Record struct {
	ID                uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	RegistrationPlate string          `gorm:"column:registration_plate;size:20;not null;index:idx_records_plate"`
	VisitDate         time.Time       `gorm:"column:visit_date;type:date;not null"`
	VehicleCategory   VehicleCategory `gorm:"column:vehicle_category;size:10;not null"`
	// Derived from VisitDate and VehicleCategory; never written from input.
	ValidityDate   time.Time `gorm:"column:validity_date;type:date;not null"`
	Center         string    `gorm:"column:center;size:100;not null"`
	TechnicianName string    `gorm:"column:technician_name;size:100;not null"`

	Latitude         *float64   `gorm:"column:latitude;type:decimal(10,8)"`
	Longitude        *float64   `gorm:"column:longitude;type:decimal(11,8)"`
	Address          *string    `gorm:"column:address;type:text"`
	CaptureTimestamp *time.Time `gorm:"column:capture_timestamp"`

	// Attachments are opaque base64 payloads.
	PhotoBase64    *string `gorm:"column:photo_base64;type:longtext"`
	CertificatePDF *string `gorm:"column:certificate_pdf_base64;type:longtext"`

	// Weak reference, not enforced by a foreign key.
	LinkedInspectionID *uint64 `gorm:"column:linked_inspection_id;index"`
	SubmittedBy        uint64  `gorm:"column:submitted_by;not null;index"`

	ValidationState     ValidationState `gorm:"column:validation_state;size:10;not null;default:'pending';index:idx_records_state"`
	SupervisorID        *uint64         `gorm:"column:supervisor_id"`
	SupervisorComment   *string         `gorm:"column:supervisor_comment;type:text"`
	ValidationTimestamp *time.Time      `gorm:"column:validation_timestamp;index"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Record) TableName() string { return "inspection_records" }

// ValidationEvent is the append-only audit trail of state transitions.
// Table: inspection_validation_events
type ValidationEvent struct {
	ID        uuid.UUID       `gorm:"column:id;type:char(36);primaryKey"`
	RecordID  uint64          `gorm:"column:record_id;not null;index"`
	FromState ValidationState `gorm:"column:from_state;size:10;not null"`
	ToState   ValidationState `gorm:"column:to_state;size:10;not null"`
	ActorID   uint64          `gorm:"column:actor_id;not null"`
	Comment   *string         `gorm:"column:comment;type:text"`
	CreatedAt time.Time       `gorm:"column:created_at;not null"`
}

func (ValidationEvent) TableName() string { return "inspection_validation_events" }

func (e *ValidationEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = id.New()
	}
	return nil
}
