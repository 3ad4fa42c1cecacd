package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "cta-backend/internal/domain/user"
	"cta-backend/internal/infrastructure/token"
	useruc "cta-backend/internal/usecase/user"

	"go.uber.org/zap"
)

type TokenService interface {
	Issue(u *domain.User) (string, time.Time, error)
	Verify(raw string) (*token.Claims, error)
}

type PasswordChecker interface {
	Compare(hash, password string) (bool, error)
}

type LoginResult struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      useruc.UserDTO `json:"user"`
}

type Usecase struct {
	users  domain.Repository
	tokens TokenService
	hasher PasswordChecker
	log    *zap.Logger
}

func NewUsecase(users domain.Repository, tokens TokenService, h PasswordChecker, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{users: users, tokens: tokens, hasher: h, log: log}
}

// Login exchanges credentials for a token. Unknown email and wrong password
// are indistinguishable to the caller.
func (u *Usecase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	usr, err := u.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		u.log.Info("login refused", zap.String("reason", "unknown email"))
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	ok, err := u.hasher.Compare(usr.PasswordHash, password)
	if err != nil {
		u.log.Error("compare password hash", zap.Error(err), zap.Uint64("user_id", usr.ID))
		return nil, domain.ErrInvalidCredentials
	}
	if !ok {
		u.log.Info("login refused", zap.String("reason", "wrong password"), zap.Uint64("user_id", usr.ID))
		return nil, domain.ErrInvalidCredentials
	}
	raw, exp, err := u.tokens.Issue(usr)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: raw, ExpiresAt: exp, User: useruc.ToDTO(usr)}, nil
}

// Verify checks raw and that its user still exists. The returned user carries
// the stored role, which may differ from the token claim.
func (u *Usecase) Verify(ctx context.Context, raw string) (*useruc.UserDTO, error) {
	claims, err := u.tokens.Verify(raw)
	if err != nil {
		return nil, err
	}
	usr, err := u.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	dto := useruc.ToDTO(usr)
	return &dto, nil
}
