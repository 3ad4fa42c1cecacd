package inspectionmock

import (
	"context"

	domain "cta-backend/internal/domain/inspection"
)

var (
	_ domain.Repository      = (*Repo)(nil)
	_ domain.EventRepository = (*EventRepo)(nil)
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to success, reads default to context.Canceled.
type Repo struct {
	CreateFn           func(ctx context.Context, r *domain.Record) error
	GetByIDFn          func(ctx context.Context, id uint64) (*domain.Record, error)
	ListFn             func(ctx context.Context, f domain.ListFilter) ([]domain.Record, error)
	UpdatePendingFn    func(ctx context.Context, r *domain.Record) (bool, error)
	ApplyTransitionFn  func(ctx context.Context, id uint64, t domain.Transition) (bool, error)
	DeleteFn           func(ctx context.Context, id uint64) (bool, error)
	CountByStateFn     func(ctx context.Context) (map[domain.ValidationState]int64, error)
	CountBySubmitterFn func(ctx context.Context, userID uint64) (int64, error)
}

func (m *Repo) Create(ctx context.Context, r *domain.Record) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Record, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.Record, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, context.Canceled
}

func (m *Repo) UpdatePending(ctx context.Context, r *domain.Record) (bool, error) {
	if m.UpdatePendingFn != nil {
		return m.UpdatePendingFn(ctx, r)
	}
	return true, nil
}

func (m *Repo) ApplyTransition(ctx context.Context, id uint64, t domain.Transition) (bool, error) {
	if m.ApplyTransitionFn != nil {
		return m.ApplyTransitionFn(ctx, id, t)
	}
	return true, nil
}

func (m *Repo) Delete(ctx context.Context, id uint64) (bool, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return true, nil
}

func (m *Repo) CountByState(ctx context.Context) (map[domain.ValidationState]int64, error) {
	if m.CountByStateFn != nil {
		return m.CountByStateFn(ctx)
	}
	return nil, context.Canceled
}

func (m *Repo) CountBySubmitter(ctx context.Context, userID uint64) (int64, error) {
	if m.CountBySubmitterFn != nil {
		return m.CountBySubmitterFn(ctx, userID)
	}
	return 0, context.Canceled
}

// EventRepo is a function-backed mock that satisfies domain.EventRepository.
type EventRepo struct {
	AppendFn       func(ctx context.Context, e *domain.ValidationEvent) error
	ListByRecordFn func(ctx context.Context, recordID uint64) ([]domain.ValidationEvent, error)
}

func (m *EventRepo) Append(ctx context.Context, e *domain.ValidationEvent) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, e)
	}
	return nil
}

func (m *EventRepo) ListByRecord(ctx context.Context, recordID uint64) ([]domain.ValidationEvent, error) {
	if m.ListByRecordFn != nil {
		return m.ListByRecordFn(ctx, recordID)
	}
	return nil, context.Canceled
}
