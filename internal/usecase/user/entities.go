package user

import (
	"time"

	domain "cta-backend/internal/domain/user"
)

type CreateInput struct {
	Name     string
	Email    string
	Password string
	Role     string // empty means technician
}

// UpdateInput is a partial edit; nil fields are left unchanged.
type UpdateInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
}

func (in UpdateInput) empty() bool {
	return in.Name == nil && in.Email == nil && in.Password == nil && in.Role == nil
}

type UserDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Password length bounds on create/update. bcrypt reads at most 72 bytes.
const (
	MinPasswordLen = 6
	MaxPasswordLen = 72
)
