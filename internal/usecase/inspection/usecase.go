package inspection

import (
	"context"
	"fmt"
	"strings"

	domain "cta-backend/internal/domain/inspection"
	"cta-backend/internal/domain/user"
	"cta-backend/internal/infrastructure/metrics"

	"go.uber.org/zap"
)

type Usecase struct {
	repo    domain.Repository
	events  domain.EventRepository
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewUsecase: m and log may be nil.
func NewUsecase(r domain.Repository, events domain.EventRepository, m *metrics.Metrics, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{repo: r, events: events, metrics: m, log: log}
}

func (u *Usecase) Submit(ctx context.Context, actor domain.Actor, in SubmitInput) (*RecordDTO, error) {
	if !actor.Can(user.CapSubmitInspection) {
		return nil, domain.ErrPermissionDenied
	}
	visit, err := domain.ParseDate(in.VisitDate)
	if err != nil {
		return nil, err
	}
	rec, err := domain.Submit(domain.NewRecord{
		RegistrationPlate:  in.RegistrationPlate,
		VisitDate:          visit,
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
		SubmittedBy:        actor.UserID,
	})
	if err != nil {
		return nil, err
	}
	if err := u.repo.Create(ctx, rec); err != nil {
		u.log.Error("create inspection record", zap.Error(err), zap.String("plate", rec.RegistrationPlate))
		return nil, err
	}
	u.metrics.Submitted(string(rec.VehicleCategory))
	u.log.Info("inspection submitted",
		zap.Uint64("record_id", rec.ID),
		zap.String("category", string(rec.VehicleCategory)),
		zap.String("validity_date", rec.ValidityDate.Format(domain.DateLayout)),
		zap.Uint64("submitted_by", actor.UserID),
	)
	dto := ToDTO(rec)
	return &dto, nil
}

func (u *Usecase) Get(ctx context.Context, id uint64) (*RecordDTO, error) {
	rec, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToDTO(rec)
	return &dto, nil
}

// List returns record summaries, newest first, without attachments.
func (u *Usecase) List(ctx context.Context, p Page) ([]RecordDTO, error) {
	p = p.normalize()
	rs, err := u.repo.List(ctx, domain.ListFilter{Limit: p.Limit, Offset: p.Offset})
	if err != nil {
		return nil, err
	}
	return ToDTOs(rs), nil
}

func (u *Usecase) Search(ctx context.Context, plate string, p Page) ([]RecordDTO, error) {
	if strings.TrimSpace(plate) == "" {
		return nil, fmt.Errorf("%w: plate query is required", domain.ErrValidation)
	}
	p = p.normalize()
	rs, err := u.repo.List(ctx, domain.ListFilter{PlateContains: plate, Limit: p.Limit, Offset: p.Offset})
	if err != nil {
		return nil, err
	}
	return ToDTOs(rs), nil
}

// Update edits a pending record on behalf of its submitter or a supervisor.
// A record that left pending between the read and the write fails with
// ErrInvalidStateTransition.
func (u *Usecase) Update(ctx context.Context, actor domain.Actor, id uint64, in UpdateInput) (*RecordDTO, error) {
	if !actor.Can(user.CapSubmitInspection) {
		return nil, domain.ErrPermissionDenied
	}
	patch, err := in.patch()
	if err != nil {
		return nil, err
	}
	rec, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.EditableBy(actor) {
		return nil, domain.ErrPermissionDenied
	}
	if err := rec.ApplyPatch(patch); err != nil {
		return nil, err
	}
	ok, err := u.repo.UpdatePending(ctx, rec)
	if err != nil {
		u.log.Error("update inspection record", zap.Error(err), zap.Uint64("record_id", id))
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidStateTransition
	}
	dto := ToDTO(rec)
	return &dto, nil
}

func (u *Usecase) Delete(ctx context.Context, actor domain.Actor, id uint64) error {
	if !actor.Can(user.CapDeleteInspection) {
		return domain.ErrPermissionDenied
	}
	ok, err := u.repo.Delete(ctx, id)
	if err != nil {
		u.log.Error("delete inspection record", zap.Error(err), zap.Uint64("record_id", id))
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	u.log.Info("inspection deleted", zap.Uint64("record_id", id), zap.Uint64("actor_id", actor.UserID))
	return nil
}

// Events returns the transition audit trail of a record, oldest first.
func (u *Usecase) Events(ctx context.Context, id uint64) ([]EventDTO, error) {
	if _, err := u.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	es, err := u.events.ListByRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]EventDTO, 0, len(es))
	for _, e := range es {
		out = append(out, toEventDTO(e))
	}
	return out, nil
}
