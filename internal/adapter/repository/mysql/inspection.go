package mysql

import (
	"context"
	"errors"
	"strings"
	"time"

	"cta-backend/internal/domain/inspection"

	"gorm.io/gorm"
)

type InspectionRepository struct{ db *gorm.DB }

func NewInspectionRepository(db *gorm.DB) *InspectionRepository {
	return &InspectionRepository{db: db}
}

// summaryColumns is everything but the attachment blobs.
var summaryColumns = []string{
	"id", "registration_plate", "visit_date", "vehicle_category", "validity_date",
	"center", "technician_name", "latitude", "longitude", "address", "capture_timestamp",
	"linked_inspection_id", "submitted_by", "validation_state", "supervisor_id",
	"supervisor_comment", "validation_timestamp", "created_at", "updated_at",
}

func (r *InspectionRepository) Create(ctx context.Context, rec *inspection.Record) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *InspectionRepository) GetByID(ctx context.Context, id uint64) (*inspection.Record, error) {
	var out inspection.Record
	err := r.db.WithContext(ctx).First(&out, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, inspection.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// escapeLike escapes LIKE wildcards with '!', an escape char both MySQL and SQLite accept.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

func (r *InspectionRepository) List(ctx context.Context, f inspection.ListFilter) ([]inspection.Record, error) {
	q := r.db.WithContext(ctx).Model(&inspection.Record{}).Select(summaryColumns)
	if len(f.States) > 0 {
		q = q.Where("validation_state IN ?", f.States)
	}
	if p := strings.ToUpper(strings.TrimSpace(f.PlateContains)); p != "" {
		q = q.Where("registration_plate LIKE ? ESCAPE '!'", "%"+escapeLike(p)+"%")
	}
	if f.ByValidationTime {
		q = q.Order("validation_timestamp DESC").Order("id DESC")
	} else {
		q = q.Order("created_at DESC").Order("id DESC")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var out []inspection.Record
	return out, q.Find(&out).Error
}

func (r *InspectionRepository) pending(ctx context.Context, id uint64) *gorm.DB {
	return r.db.WithContext(ctx).Model(&inspection.Record{}).
		Where("id = ? AND validation_state = ?", id, inspection.StatePending)
}

func (r *InspectionRepository) UpdatePending(ctx context.Context, rec *inspection.Record) (bool, error) {
	rec.UpdatedAt = time.Now().UTC()
	res := r.pending(ctx, rec.ID).Updates(map[string]any{
		"registration_plate":     rec.RegistrationPlate,
		"visit_date":             rec.VisitDate,
		"vehicle_category":       rec.VehicleCategory,
		"validity_date":          rec.ValidityDate,
		"center":                 rec.Center,
		"technician_name":        rec.TechnicianName,
		"latitude":               rec.Latitude,
		"longitude":              rec.Longitude,
		"address":                rec.Address,
		"capture_timestamp":      rec.CaptureTimestamp,
		"photo_base64":           rec.PhotoBase64,
		"certificate_pdf_base64": rec.CertificatePDF,
		"linked_inspection_id":   rec.LinkedInspectionID,
		"updated_at":             rec.UpdatedAt,
	})
	return res.RowsAffected == 1, res.Error
}

// ApplyTransition is UPDATE … WHERE id = ? AND validation_state = 'pending';
// false means another writer got there first or the record is gone.
func (r *InspectionRepository) ApplyTransition(ctx context.Context, id uint64, t inspection.Transition) (bool, error) {
	res := r.pending(ctx, id).Updates(map[string]any{
		"validation_state":     t.To,
		"supervisor_id":        t.SupervisorID,
		"supervisor_comment":   t.Comment,
		"validation_timestamp": t.At,
		"updated_at":           time.Now().UTC(),
	})
	return res.RowsAffected == 1, res.Error
}

func (r *InspectionRepository) Delete(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&inspection.Record{}, id)
	return res.RowsAffected > 0, res.Error
}

func (r *InspectionRepository) CountByState(ctx context.Context) (map[inspection.ValidationState]int64, error) {
	var rows []struct {
		State inspection.ValidationState
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&inspection.Record{}).
		Select("validation_state AS state, COUNT(*) AS count").
		Group("validation_state").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := map[inspection.ValidationState]int64{
		inspection.StatePending:   0,
		inspection.StateValidated: 0,
		inspection.StateRejected:  0,
	}
	for _, row := range rows {
		out[row.State] = row.Count
	}
	return out, nil
}

func (r *InspectionRepository) CountBySubmitter(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&inspection.Record{}).Where("submitted_by = ?", userID).Count(&n).Error
	return n, err
}
