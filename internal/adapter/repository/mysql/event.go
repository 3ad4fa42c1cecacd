package mysql

import (
	"context"

	"cta-backend/internal/domain/inspection"

	"gorm.io/gorm"
)

type EventRepository struct{ db *gorm.DB }

func NewEventRepository(db *gorm.DB) *EventRepository { return &EventRepository{db: db} }

func (r *EventRepository) Append(ctx context.Context, e *inspection.ValidationEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EventRepository) ListByRecord(ctx context.Context, recordID uint64) ([]inspection.ValidationEvent, error) {
	var out []inspection.ValidationEvent
	err := r.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}
