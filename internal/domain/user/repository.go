package user

import "context"

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uint64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// List returns users ordered by name; query filters on name/email substring when non-empty.
	List(ctx context.Context, query string) ([]User, error)
	Save(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uint64) (bool, error)
}
