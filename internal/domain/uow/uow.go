package uow

import (
	"context"

	"cta-backend/internal/domain/inspection"
)

type Repos struct {
	Inspections inspection.Repository
	Events      inspection.EventRepository
}

type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
