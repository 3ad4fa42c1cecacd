package inspection

import "context"

// ListFilter selects record summaries. Attachments are never loaded by List.
type ListFilter struct {
	States        []ValidationState
	PlateContains string
	// ByValidationTime orders by validation timestamp instead of creation time (both newest first).
	ByValidationTime bool
	Limit            int
	Offset           int
}

type Repository interface {
	Create(ctx context.Context, r *Record) error
	// GetByID returns ErrNotFound when no record has this id.
	GetByID(ctx context.Context, id uint64) (*Record, error)
	List(ctx context.Context, f ListFilter) ([]Record, error)

	// UpdatePending persists editable fields only while the stored record is
	// still pending; false means the guard matched no row.
	UpdatePending(ctx context.Context, r *Record) (bool, error)
	// ApplyTransition writes t with an equality guard on the pending state.
	ApplyTransition(ctx context.Context, id uint64, t Transition) (bool, error)

	Delete(ctx context.Context, id uint64) (bool, error)
	CountByState(ctx context.Context) (map[ValidationState]int64, error)
	CountBySubmitter(ctx context.Context, userID uint64) (int64, error)
}

type EventRepository interface {
	Append(ctx context.Context, e *ValidationEvent) error
	ListByRecord(ctx context.Context, recordID uint64) ([]ValidationEvent, error)
}
