package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	domain "cta-backend/internal/domain/user"

	"go.uber.org/zap"
)

type Hasher interface {
	Hash(password string) (string, error)
}

// RecordCounter reports how many inspection records a user submitted.
type RecordCounter interface {
	CountBySubmitter(ctx context.Context, userID uint64) (int64, error)
}

type Usecase struct {
	users   domain.Repository
	records RecordCounter
	hasher  Hasher
	log     *zap.Logger
}

func NewUsecase(users domain.Repository, records RecordCounter, h Hasher, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{users: users, records: records, hasher: h, log: log}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{domain.ErrInvalidInput}, args...)...)
}

func normalizeEmail(e string) (string, error) {
	e = strings.ToLower(strings.TrimSpace(e))
	if e == "" {
		return "", invalid("email is required")
	}
	if a, err := mail.ParseAddress(e); err != nil || a.Address != e {
		return "", invalid("email %q is malformed", e)
	}
	return e, nil
}

func parseRole(r string) (domain.Role, error) {
	if strings.TrimSpace(r) == "" {
		return domain.RoleTechnician, nil
	}
	role, ok := domain.ParseRole(r)
	if !ok {
		return "", invalid("unknown role %q", r)
	}
	return role, nil
}

func checkPassword(p string) error {
	if len(p) < MinPasswordLen {
		return invalid("password must be at least %d characters", MinPasswordLen)
	}
	if len(p) > MaxPasswordLen {
		return invalid("password must be at most %d bytes", MaxPasswordLen)
	}
	return nil
}

// guardSuperAdmin refuses callers without CapManageSuperAdmins when any of
// roles is superadmin.
func guardSuperAdmin(by domain.Role, roles ...domain.Role) error {
	if by.Can(domain.CapManageSuperAdmins) {
		return nil
	}
	for _, r := range roles {
		if r == domain.RoleSuperAdmin {
			return domain.ErrForbidden
		}
	}
	return nil
}

func (u *Usecase) List(ctx context.Context, query string) ([]UserDTO, error) {
	us, err := u.users.List(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]UserDTO, 0, len(us))
	for i := range us {
		out = append(out, ToDTO(&us[i]))
	}
	return out, nil
}

func (u *Usecase) Get(ctx context.Context, id uint64) (*UserDTO, error) {
	usr, err := u.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToDTO(usr)
	return &dto, nil
}

// emailFree returns ErrEmailTaken when email belongs to a user other than self.
func (u *Usecase) emailFree(ctx context.Context, email string, self uint64) error {
	other, err := u.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case other.ID != self:
		return domain.ErrEmailTaken
	}
	return nil
}

// Create adds an account on behalf of a caller holding role by.
func (u *Usecase) Create(ctx context.Context, by domain.Role, in CreateInput) (*UserDTO, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}
	role, err := parseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if err := guardSuperAdmin(by, role); err != nil {
		return nil, err
	}
	if err := u.emailFree(ctx, email, 0); err != nil {
		return nil, err
	}
	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	usr := &domain.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := u.users.Create(ctx, usr); err != nil {
		if !errors.Is(err, domain.ErrEmailTaken) {
			u.log.Error("create user", zap.Error(err))
		}
		return nil, err
	}
	u.log.Info("user created", zap.Uint64("user_id", usr.ID), zap.String("role", string(role)))
	dto := ToDTO(usr)
	return &dto, nil
}

func (u *Usecase) Update(ctx context.Context, by domain.Role, id uint64, in UpdateInput) (*UserDTO, error) {
	if in.empty() {
		return nil, domain.ErrNoOp
	}
	usr, err := u.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guardSuperAdmin(by, usr.Role); err != nil {
		return nil, err
	}
	next := *usr
	if in.Name != nil {
		if next.Name = strings.TrimSpace(*in.Name); next.Name == "" {
			return nil, invalid("name is required")
		}
	}
	if in.Email != nil {
		if next.Email, err = normalizeEmail(*in.Email); err != nil {
			return nil, err
		}
		if next.Email != usr.Email {
			if err := u.emailFree(ctx, next.Email, id); err != nil {
				return nil, err
			}
		}
	}
	if in.Role != nil {
		role, ok := domain.ParseRole(*in.Role)
		if !ok {
			return nil, invalid("unknown role %q", *in.Role)
		}
		if err := guardSuperAdmin(by, role); err != nil {
			return nil, err
		}
		next.Role = role
	}
	if in.Password != nil {
		if err := checkPassword(*in.Password); err != nil {
			return nil, err
		}
		if next.PasswordHash, err = u.hasher.Hash(*in.Password); err != nil {
			return nil, err
		}
	}
	if err := u.users.Save(ctx, &next); err != nil {
		if !errors.Is(err, domain.ErrEmailTaken) {
			u.log.Error("update user", zap.Error(err), zap.Uint64("user_id", id))
		}
		return nil, err
	}
	dto := ToDTO(&next)
	return &dto, nil
}

// Delete removes a user that submitted no inspection records.
func (u *Usecase) Delete(ctx context.Context, by domain.Role, id uint64) error {
	usr, err := u.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := guardSuperAdmin(by, usr.Role); err != nil {
		return err
	}
	n, err := u.records.CountBySubmitter(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w (%d)", domain.ErrHasRecords, n)
	}
	ok, err := u.users.Delete(ctx, id)
	if err != nil {
		u.log.Error("delete user", zap.Error(err), zap.Uint64("user_id", id))
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	u.log.Info("user deleted", zap.Uint64("user_id", id))
	return nil
}
