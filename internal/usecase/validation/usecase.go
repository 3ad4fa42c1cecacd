package validation

import (
	"context"
	"errors"
	"time"

	domain "cta-backend/internal/domain/inspection"
	"cta-backend/internal/domain/uow"
	"cta-backend/internal/domain/user"
	"cta-backend/internal/infrastructure/metrics"
	insuc "cta-backend/internal/usecase/inspection"

	"go.uber.org/zap"
)

type Usecase struct {
	repo    domain.Repository
	uow     uow.UnitOfWork
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

// NewUsecase: reads go through r, transitions through tx. m and log may be nil.
func NewUsecase(r domain.Repository, tx uow.UnitOfWork, m *metrics.Metrics, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{repo: r, uow: tx, metrics: m, log: log, now: time.Now}
}

// Validate moves a pending record to validated; comment may be empty.
func (u *Usecase) Validate(ctx context.Context, actor domain.Actor, id uint64, comment string) (*insuc.RecordDTO, error) {
	return u.decide(ctx, actor, id, domain.StateValidated, comment)
}

// Reject moves a pending record to rejected; comment is required.
func (u *Usecase) Reject(ctx context.Context, actor domain.Actor, id uint64, comment string) (*insuc.RecordDTO, error) {
	return u.decide(ctx, actor, id, domain.StateRejected, comment)
}

func (u *Usecase) decide(ctx context.Context, actor domain.Actor, id uint64, to domain.ValidationState, comment string) (*insuc.RecordDTO, error) {
	if !actor.Can(user.CapValidateInspection) {
		u.metrics.Transition(string(to), metrics.OutcomeRejected)
		return nil, domain.ErrPermissionDenied
	}
	var decided *domain.Record
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		rec, err := r.Inspections.GetByID(ctx, id)
		if err != nil {
			return err
		}
		var t domain.Transition
		if to == domain.StateRejected {
			t, err = rec.Reject(actor, comment, u.now())
		} else {
			t, err = rec.Validate(actor, comment, u.now())
		}
		if err != nil {
			return err
		}
		ok, err := r.Inspections.ApplyTransition(ctx, id, t)
		if err != nil {
			return err
		}
		if !ok {
			// someone else decided first
			return domain.ErrInvalidStateTransition
		}
		if err := r.Events.Append(ctx, t.Event(id)); err != nil {
			return err
		}
		decided = rec
		return nil
	})
	if err != nil {
		u.observeFailure(to, id, actor, err)
		return nil, err
	}
	u.metrics.Transition(string(to), metrics.OutcomeOK)
	u.log.Info("inspection decided",
		zap.Uint64("record_id", id),
		zap.String("to", string(to)),
		zap.Uint64("supervisor_id", actor.UserID),
	)
	dto := insuc.ToDTO(decided)
	return &dto, nil
}

func (u *Usecase) observeFailure(to domain.ValidationState, id uint64, actor domain.Actor, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidStateTransition),
		errors.Is(err, domain.ErrPermissionDenied),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrNotFound):
		u.metrics.Transition(string(to), metrics.OutcomeRejected)
		u.log.Debug("transition refused", zap.Uint64("record_id", id), zap.String("to", string(to)), zap.Error(err))
	default:
		u.metrics.Transition(string(to), metrics.OutcomeError)
		u.log.Error("transition failed",
			zap.Uint64("record_id", id),
			zap.String("to", string(to)),
			zap.Uint64("supervisor_id", actor.UserID),
			zap.Error(err),
		)
	}
}

// Pending lists records awaiting a decision, newest first.
func (u *Usecase) Pending(ctx context.Context, p insuc.Page) ([]insuc.RecordDTO, error) {
	if p.Limit <= 0 {
		p.Limit = insuc.DefaultPageSize
	}
	rs, err := u.repo.List(ctx, domain.ListFilter{
		States: []domain.ValidationState{domain.StatePending},
		Limit:  min(p.Limit, insuc.MaxPageSize),
		Offset: max(p.Offset, 0),
	})
	if err != nil {
		return nil, err
	}
	return insuc.ToDTOs(rs), nil
}

// History returns the last HistoryLimit decided records by decision time.
func (u *Usecase) History(ctx context.Context) ([]insuc.RecordDTO, error) {
	rs, err := u.repo.List(ctx, domain.ListFilter{
		States:           []domain.ValidationState{domain.StateValidated, domain.StateRejected},
		ByValidationTime: true,
		Limit:            HistoryLimit,
	})
	if err != nil {
		return nil, err
	}
	return insuc.ToDTOs(rs), nil
}

func (u *Usecase) Statistics(ctx context.Context) (*Statistics, error) {
	counts, err := u.repo.CountByState(ctx)
	if err != nil {
		return nil, err
	}
	s := &Statistics{
		Pending:   counts[domain.StatePending],
		Validated: counts[domain.StateValidated],
		Rejected:  counts[domain.StateRejected],
	}
	s.Total = s.Pending + s.Validated + s.Rejected
	return s, nil
}
