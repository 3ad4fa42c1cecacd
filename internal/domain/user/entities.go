package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already in use")
	ErrHasRecords         = errors.New("user has inspection records")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidInput       = errors.New("invalid user input")
	ErrNoOp               = errors.New("nothing to update")
	ErrForbidden          = errors.New("only a superadmin may manage superadmin accounts")
)

// Table: users
type User struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"column:name;size:100;not null" json:"name"`
	Email        string    `gorm:"column:email;size:191;not null;uniqueIndex:ux_users_email" json:"email"`
	PasswordHash string    `gorm:"column:password;size:100;not null" json:"-"`
	Role         Role      `gorm:"column:role;size:20;not null;default:'technician'" json:"role"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }
