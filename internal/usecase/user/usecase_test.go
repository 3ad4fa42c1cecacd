package user

import (
	"context"
	"errors"
	"strings"
	"testing"

	domain "cta-backend/internal/domain/user"
	"cta-backend/internal/testutil/inspectionmock"
	"cta-backend/internal/testutil/usermock"
)

type fakeHasher struct{ err error }

func (f fakeHasher) Hash(p string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "hashed:" + p, nil
}

func ptr[T any](v T) *T { return &v }

func existing() *domain.User {
	return &domain.User{ID: 4, Name: "Awa Diop", Email: "awa@cta.sn", PasswordHash: "hashed:old", Role: domain.RoleTechnician}
}

func notFoundByEmail(context.Context, string) (*domain.User, error) { return nil, domain.ErrNotFound }

func TestCreate(t *testing.T) {
	tests := []struct {
		name    string
		in      CreateInput
		byEmail func(context.Context, string) (*domain.User, error)
		wantErr error
		check   func(t *testing.T, created *domain.User)
	}{
		{
			name:    "defaults to technician",
			in:      CreateInput{Name: " Moussa ", Email: " Moussa@CTA.sn", Password: "secret1"},
			byEmail: notFoundByEmail,
			check: func(t *testing.T, u *domain.User) {
				if u.Role != domain.RoleTechnician || u.Email != "moussa@cta.sn" || u.Name != "Moussa" {
					t.Fatalf("unexpected user: %+v", u)
				}
				if u.PasswordHash != "hashed:secret1" {
					t.Fatalf("password not hashed: %q", u.PasswordHash)
				}
			},
		},
		{
			name:    "legacy supervisor spelling",
			in:      CreateInput{Name: "S", Email: "s@cta.sn", Password: "secret1", Role: "superviseur"},
			byEmail: notFoundByEmail,
			check: func(t *testing.T, u *domain.User) {
				if u.Role != domain.RoleSupervisor {
					t.Fatalf("role = %s", u.Role)
				}
			},
		},
		{name: "missing name", in: CreateInput{Email: "a@b.sn", Password: "secret1"}, wantErr: domain.ErrInvalidInput},
		{name: "bad email", in: CreateInput{Name: "A", Email: "not-an-email", Password: "secret1"}, wantErr: domain.ErrInvalidInput},
		{name: "short password", in: CreateInput{Name: "A", Email: "a@b.sn", Password: "123"}, wantErr: domain.ErrInvalidInput},
		{name: "password over bcrypt limit", in: CreateInput{Name: "A", Email: "a@b.sn", Password: strings.Repeat("é", 40)}, wantErr: domain.ErrInvalidInput},
		{name: "unknown role", in: CreateInput{Name: "A", Email: "a@b.sn", Password: "secret1", Role: "boss"}, wantErr: domain.ErrInvalidInput},
		{
			name:    "email taken",
			in:      CreateInput{Name: "A", Email: "awa@cta.sn", Password: "secret1"},
			byEmail: func(context.Context, string) (*domain.User, error) { return existing(), nil },
			wantErr: domain.ErrEmailTaken,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var created *domain.User
			repo := &usermock.Repo{
				GetByEmailFn: tc.byEmail,
				CreateFn: func(_ context.Context, u *domain.User) error {
					u.ID = 10
					created = u
					return nil
				},
			}
			uc := NewUsecase(repo, &inspectionmock.Repo{}, fakeHasher{}, nil)
			dto, err := uc.Create(context.Background(), domain.RoleAdmin, tc.in)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
				if created != nil {
					t.Fatalf("nothing must be created on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if dto.ID != 10 {
				t.Fatalf("dto id = %d", dto.ID)
			}
			tc.check(t, created)
		})
	}
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name    string
		in      UpdateInput
		byEmail func(context.Context, string) (*domain.User, error)
		wantErr error
		check   func(t *testing.T, saved *domain.User)
	}{
		{name: "empty patch", in: UpdateInput{}, wantErr: domain.ErrNoOp},
		{
			name: "rename and promote",
			in:   UpdateInput{Name: ptr("Awa D."), Role: ptr("admin")},
			check: func(t *testing.T, u *domain.User) {
				if u.Name != "Awa D." || u.Role != domain.RoleAdmin || u.PasswordHash != "hashed:old" {
					t.Fatalf("unexpected save: %+v", u)
				}
			},
		},
		{
			name: "same email is not a conflict",
			in:   UpdateInput{Email: ptr("AWA@cta.sn")},
			check: func(t *testing.T, u *domain.User) {
				if u.Email != "awa@cta.sn" {
					t.Fatalf("email = %s", u.Email)
				}
			},
		},
		{
			name: "email owned by someone else",
			in:   UpdateInput{Email: ptr("moussa@cta.sn")},
			byEmail: func(context.Context, string) (*domain.User, error) {
				return &domain.User{ID: 5, Email: "moussa@cta.sn"}, nil
			},
			wantErr: domain.ErrEmailTaken,
		},
		{
			name: "new password is hashed",
			in:   UpdateInput{Password: ptr("n3wpass")},
			check: func(t *testing.T, u *domain.User) {
				if u.PasswordHash != "hashed:n3wpass" {
					t.Fatalf("hash = %s", u.PasswordHash)
				}
			},
		},
		{name: "blank name", in: UpdateInput{Name: ptr("  ")}, wantErr: domain.ErrInvalidInput},
		{name: "long password", in: UpdateInput{Password: ptr(strings.Repeat("p", 73))}, wantErr: domain.ErrInvalidInput},
		{name: "bad role", in: UpdateInput{Role: ptr("")}, wantErr: domain.ErrInvalidInput},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var saved *domain.User
			repo := &usermock.Repo{
				GetByIDFn:    func(context.Context, uint64) (*domain.User, error) { return existing(), nil },
				GetByEmailFn: tc.byEmail,
				SaveFn: func(_ context.Context, u *domain.User) error {
					saved = u
					return nil
				},
			}
			uc := NewUsecase(repo, &inspectionmock.Repo{}, fakeHasher{}, nil)
			_, err := uc.Update(context.Background(), domain.RoleAdmin, 4, tc.in)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
				if saved != nil {
					t.Fatalf("nothing must be saved on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			tc.check(t, saved)
		})
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name    string
		records int64
		found   bool
		wantErr error
		deletes bool
	}{
		{name: "no records", found: true, deletes: true},
		{name: "has records", found: true, records: 3, wantErr: domain.ErrHasRecords},
		{name: "unknown user", found: false, wantErr: domain.ErrNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			deleted := false
			users := &usermock.Repo{
				GetByIDFn: func(context.Context, uint64) (*domain.User, error) {
					if !tc.found {
						return nil, domain.ErrNotFound
					}
					return existing(), nil
				},
				DeleteFn: func(context.Context, uint64) (bool, error) {
					deleted = true
					return true, nil
				},
			}
			records := &inspectionmock.Repo{
				CountBySubmitterFn: func(_ context.Context, id uint64) (int64, error) {
					if id != 4 {
						t.Fatalf("counted records of user %d", id)
					}
					return tc.records, nil
				},
			}
			err := NewUsecase(users, records, fakeHasher{}, nil).Delete(context.Background(), domain.RoleAdmin, 4)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if deleted != tc.deletes {
				t.Fatalf("deleted = %v, want %v", deleted, tc.deletes)
			}
		})
	}
}

func TestList(t *testing.T) {
	repo := &usermock.Repo{
		ListFn: func(_ context.Context, q string) ([]domain.User, error) {
			if q != "awa" {
				t.Fatalf("query = %q", q)
			}
			return []domain.User{*existing()}, nil
		},
	}
	out, err := NewUsecase(repo, nil, fakeHasher{}, nil).List(context.Background(), "awa")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 1 || out[0].Email != "awa@cta.sn" || out[0].Role != "technician" {
		t.Fatalf("unexpected list: %+v", out)
	}
}

func TestCreate_HasherFailure(t *testing.T) {
	repo := &usermock.Repo{GetByEmailFn: notFoundByEmail}
	_, err := NewUsecase(repo, nil, fakeHasher{err: errors.New("entropy")}, nil).
		Create(context.Background(), domain.RoleAdmin, CreateInput{Name: "A", Email: "a@b.sn", Password: "secret1"})
	if err == nil || !strings.Contains(err.Error(), "entropy") {
		t.Fatalf("want hasher error, got %v", err)
	}
}

func TestSuperAdminGuard(t *testing.T) {
	root := func(context.Context, uint64) (*domain.User, error) {
		return &domain.User{ID: 2, Name: "Root", Email: "root@cta.sn", Role: domain.RoleSuperAdmin}, nil
	}
	users := &usermock.Repo{
		GetByIDFn:    root,
		GetByEmailFn: notFoundByEmail,
		CreateFn:     func(context.Context, *domain.User) error { return nil },
		SaveFn:       func(context.Context, *domain.User) error { return nil },
		DeleteFn:     func(context.Context, uint64) (bool, error) { return true, nil },
	}
	records := &inspectionmock.Repo{
		CountBySubmitterFn: func(context.Context, uint64) (int64, error) { return 0, nil },
	}
	uc := NewUsecase(users, records, fakeHasher{}, nil)
	ctx := context.Background()
	newRoot := CreateInput{Name: "B", Email: "b@cta.sn", Password: "secret1", Role: "superadmin"}

	if _, err := uc.Create(ctx, domain.RoleAdmin, newRoot); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("admin create: want ErrForbidden, got %v", err)
	}
	if _, err := uc.Update(ctx, domain.RoleAdmin, 2, UpdateInput{Name: ptr("X")}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("admin update: want ErrForbidden, got %v", err)
	}
	if err := uc.Delete(ctx, domain.RoleAdmin, 2); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("admin delete: want ErrForbidden, got %v", err)
	}
	if _, err := uc.Create(ctx, domain.RoleSuperAdmin, newRoot); err != nil {
		t.Fatalf("superadmin create: %v", err)
	}
	if _, err := uc.Update(ctx, domain.RoleSuperAdmin, 2, UpdateInput{Name: ptr("X")}); err != nil {
		t.Fatalf("superadmin update: %v", err)
	}
	if err := uc.Delete(ctx, domain.RoleSuperAdmin, 2); err != nil {
		t.Fatalf("superadmin delete: %v", err)
	}
}

func TestUpdate_AdminCannotPromoteToSuperAdmin(t *testing.T) {
	repo := &usermock.Repo{
		GetByIDFn: func(context.Context, uint64) (*domain.User, error) { return existing(), nil },
		SaveFn: func(context.Context, *domain.User) error {
			t.Fatal("promotion must not be saved")
			return nil
		},
	}
	_, err := NewUsecase(repo, nil, fakeHasher{}, nil).
		Update(context.Background(), domain.RoleAdmin, 4, UpdateInput{Role: ptr("superadmin")})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
}
