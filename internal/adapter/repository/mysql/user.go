package mysql

import (
	"context"
	"errors"
	"strings"

	"cta-backend/internal/domain/user"

	"gorm.io/gorm"
)

type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

func translateUserErr(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return user.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return user.ErrEmailTaken
	}
	return err
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	return translateUserErr(r.db.WithContext(ctx).Create(u).Error)
}

func (r *UserRepository) Save(ctx context.Context, u *user.User) error {
	return translateUserErr(r.db.WithContext(ctx).Save(u).Error)
}

func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*user.User, error) {
	var out user.User
	if err := r.db.WithContext(ctx).First(&out, id).Error; err != nil {
		return nil, translateUserErr(err)
	}
	return &out, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var out user.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&out).Error
	if err != nil {
		return nil, translateUserErr(err)
	}
	return &out, nil
}

func (r *UserRepository) List(ctx context.Context, query string) ([]user.User, error) {
	q := r.db.WithContext(ctx).Model(&user.User{})
	if query = strings.TrimSpace(query); query != "" {
		like := "%" + escapeLike(query) + "%"
		q = q.Where("name LIKE ? ESCAPE '!' OR email LIKE ? ESCAPE '!'", like, like)
	}
	var out []user.User
	return out, q.Order("name ASC").Find(&out).Error
}

func (r *UserRepository) Delete(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&user.User{}, id)
	return res.RowsAffected > 0, res.Error
}
