package usermock

import (
	"context"
	"errors"
	"testing"

	domain "cta-backend/internal/domain/user"
)

func TestRepo_GetByEmail(t *testing.T) {
	ctx := context.Background()
	want := &domain.User{ID: 1, Email: "a@cta.sn"}

	m := &Repo{
		GetByEmailFn: func(_ context.Context, email string) (*domain.User, error) {
			if email != "a@cta.sn" {
				t.Fatalf("GetByEmail email mismatch: %s", email)
			}
			return want, nil
		},
	}
	got, err := m.GetByEmail(ctx, "a@cta.sn")
	if err != nil || got != want {
		t.Fatalf("GetByEmail: got %+v, %v", got, err)
	}

	m = &Repo{}
	if _, err := m.GetByEmail(ctx, "a@cta.sn"); err != context.Canceled {
		t.Fatalf("GetByEmail default: want context.Canceled, got %v", err)
	}
}

func TestRepo_WritesForwardErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	m := &Repo{
		CreateFn: func(context.Context, *domain.User) error { return boom },
		SaveFn:   func(context.Context, *domain.User) error { return boom },
		DeleteFn: func(context.Context, uint64) (bool, error) { return false, boom },
	}
	if err := m.Create(ctx, &domain.User{}); !errors.Is(err, boom) {
		t.Fatalf("Create: %v", err)
	}
	if err := m.Save(ctx, &domain.User{}); !errors.Is(err, boom) {
		t.Fatalf("Save: %v", err)
	}
	if _, err := m.Delete(ctx, 1); !errors.Is(err, boom) {
		t.Fatalf("Delete: %v", err)
	}
}

func TestRepo_Defaults(t *testing.T) {
	ctx := context.Background()
	m := &Repo{}
	if err := m.Create(ctx, &domain.User{}); err != nil {
		t.Fatalf("Create default: %v", err)
	}
	if err := m.Save(ctx, &domain.User{}); err != nil {
		t.Fatalf("Save default: %v", err)
	}
	if ok, err := m.Delete(ctx, 1); !ok || err != nil {
		t.Fatalf("Delete default: %v, %v", ok, err)
	}
	if _, err := m.GetByID(ctx, 1); err != context.Canceled {
		t.Fatalf("GetByID default: %v", err)
	}
	if _, err := m.List(ctx, ""); err != context.Canceled {
		t.Fatalf("List default: %v", err)
	}
}
