package inspection

import (
	"strings"
	"time"

	"cta-backend/internal/domain/user"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uint64
	Role   user.Role
}

func (a Actor) Can(c user.Capability) bool { return a.Role.Can(c) }

// NewRecord carries caller-supplied fields of a submission. The validity
// date is always derived and cannot be supplied.
type NewRecord struct {
	RegistrationPlate  string
	VisitDate          time.Time
	VehicleCategory    string
	Center             string
	TechnicianName     string
	Latitude           *float64
	Longitude          *float64
	Address            *string
	CaptureTimestamp   *time.Time
	PhotoBase64        *string
	CertificatePDF     *string
	LinkedInspectionID *uint64
	SubmittedBy        uint64
}

// Submit builds a Pending record from in, deriving its validity date.
func Submit(in NewRecord) (*Record, error) {
	cat, err := ParseCategory(in.VehicleCategory)
	if err != nil {
		return nil, err
	}
	r := &Record{
		RegistrationPlate:  normalizePlate(in.RegistrationPlate),
		VisitDate:          in.VisitDate,
		VehicleCategory:    cat,
		Center:             strings.TrimSpace(in.Center),
		TechnicianName:     strings.TrimSpace(in.TechnicianName),
		Latitude:           in.Latitude,
		Longitude:          in.Longitude,
		Address:            in.Address,
		CaptureTimestamp:   in.CaptureTimestamp,
		PhotoBase64:        in.PhotoBase64,
		CertificatePDF:     in.CertificatePDF,
		LinkedInspectionID: in.LinkedInspectionID,
		SubmittedBy:        in.SubmittedBy,
		ValidationState:    StatePending,
	}
	if err := r.check(); err != nil {
		return nil, err
	}
	if r.ValidityDate, err = ComputeValidityDate(r.VehicleCategory, r.VisitDate); err != nil {
		return nil, err
	}
	r.VisitDate = DateOf(r.VisitDate)
	return r, nil
}

func normalizePlate(p string) string { return strings.ToUpper(strings.TrimSpace(p)) }

func (r *Record) check() error {
	switch {
	case r.RegistrationPlate == "":
		return invalid("registration plate is required")
	case len(r.RegistrationPlate) > 20:
		return invalid("registration plate exceeds 20 characters")
	case r.VisitDate.IsZero():
		return invalid("visit date is required")
	case r.Center == "":
		return invalid("center is required")
	case r.TechnicianName == "":
		return invalid("technician name is required")
	case r.Latitude != nil && (*r.Latitude < -90 || *r.Latitude > 90):
		return invalid("latitude out of range")
	case r.Longitude != nil && (*r.Longitude < -180 || *r.Longitude > 180):
		return invalid("longitude out of range")
	}
	return nil
}

// Patch lists editable fields; nil means "leave unchanged".
type Patch struct {
	RegistrationPlate  *string
	VisitDate          *time.Time
	VehicleCategory    *string
	Center             *string
	TechnicianName     *string
	Latitude           *float64
	Longitude          *float64
	Address            *string
	CaptureTimestamp   *time.Time
	PhotoBase64        *string
	CertificatePDF     *string
	LinkedInspectionID *uint64
}

func (p Patch) Empty() bool {
	return p.RegistrationPlate == nil && p.VisitDate == nil && p.VehicleCategory == nil &&
		p.Center == nil && p.TechnicianName == nil && p.Latitude == nil && p.Longitude == nil &&
		p.Address == nil && p.CaptureTimestamp == nil && p.PhotoBase64 == nil &&
		p.CertificatePDF == nil && p.LinkedInspectionID == nil
}

// EditableBy reports whether a may edit r. Submitters edit their own
// records; callers who can validate may correct anyone's.
func (r *Record) EditableBy(a Actor) bool {
	if !a.Can(user.CapSubmitInspection) {
		return false
	}
	return r.SubmittedBy == a.UserID || a.Can(user.CapValidateInspection)
}

// ApplyPatch edits a Pending record and recomputes its validity date. On
// error r is left untouched.
func (r *Record) ApplyPatch(p Patch) error {
	if p.Empty() {
		return ErrNoOp
	}
	if r.ValidationState != StatePending {
		return ErrInvalidStateTransition
	}
	next := *r
	if p.RegistrationPlate != nil {
		next.RegistrationPlate = normalizePlate(*p.RegistrationPlate)
	}
	if p.VisitDate != nil {
		next.VisitDate = *p.VisitDate
	}
	if p.VehicleCategory != nil {
		cat, err := ParseCategory(*p.VehicleCategory)
		if err != nil {
			return err
		}
		next.VehicleCategory = cat
	}
	if p.Center != nil {
		next.Center = strings.TrimSpace(*p.Center)
	}
	if p.TechnicianName != nil {
		next.TechnicianName = strings.TrimSpace(*p.TechnicianName)
	}
	if p.Latitude != nil {
		next.Latitude = p.Latitude
	}
	if p.Longitude != nil {
		next.Longitude = p.Longitude
	}
	if p.Address != nil {
		next.Address = p.Address
	}
	if p.CaptureTimestamp != nil {
		next.CaptureTimestamp = p.CaptureTimestamp
	}
	if p.PhotoBase64 != nil {
		next.PhotoBase64 = p.PhotoBase64
	}
	if p.CertificatePDF != nil {
		next.CertificatePDF = p.CertificatePDF
	}
	if p.LinkedInspectionID != nil {
		next.LinkedInspectionID = p.LinkedInspectionID
	}
	if err := next.check(); err != nil {
		return err
	}
	validity, err := ComputeValidityDate(next.VehicleCategory, next.VisitDate)
	if err != nil {
		return err
	}
	next.VisitDate = DateOf(next.VisitDate)
	next.ValidityDate = validity
	*r = next
	return nil
}

// Transition describes one supervisor decision on a record.
type Transition struct {
	From         ValidationState
	To           ValidationState
	SupervisorID uint64
	Comment      *string
	At           time.Time
}

// Event converts t into the audit entry for record id.
func (t Transition) Event(recordID uint64) *ValidationEvent {
	return &ValidationEvent{
		RecordID:  recordID,
		FromState: t.From,
		ToState:   t.To,
		ActorID:   t.SupervisorID,
		Comment:   t.Comment,
		CreatedAt: t.At,
	}
}

// Validate moves a Pending record to Validated. comment is optional.
func (r *Record) Validate(actor Actor, comment string, now time.Time) (Transition, error) {
	return r.transition(actor, StateValidated, comment, now)
}

// Reject moves a Pending record to Rejected. comment is mandatory.
func (r *Record) Reject(actor Actor, comment string, now time.Time) (Transition, error) {
	return r.transition(actor, StateRejected, comment, now)
}

func (r *Record) transition(actor Actor, to ValidationState, comment string, now time.Time) (Transition, error) {
	// capability before state: a denied caller gets ErrPermissionDenied whatever the state
	if !actor.Can(user.CapValidateInspection) {
		return Transition{}, ErrPermissionDenied
	}
	if r.ValidationState != StatePending {
		return Transition{}, ErrInvalidStateTransition
	}
	comment = strings.TrimSpace(comment)
	if to == StateRejected && comment == "" {
		return Transition{}, invalid("a comment is required to reject a record")
	}
	t := Transition{
		From:         r.ValidationState,
		To:           to,
		SupervisorID: actor.UserID,
		At:           now.UTC(),
	}
	if comment != "" {
		t.Comment = &comment
	}
	r.apply(t)
	return t, nil
}

func (r *Record) apply(t Transition) {
	sid, at := t.SupervisorID, t.At
	r.ValidationState = t.To
	r.SupervisorID = &sid
	r.SupervisorComment = t.Comment
	r.ValidationTimestamp = &at
}
