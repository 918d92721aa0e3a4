package dao

import (
	"Discodeit/models"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Users struct {
	Repo[models.User]
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{
		Repo: NewRepo[models.User](db),
	}
}

// WithDB 绑定到事务
func (u *Users) WithDB(db *gorm.DB) *Users {
	return NewUsers(db)
}

// FindById 不存在时返回 gorm.ErrRecordNotFound
func (u *Users) FindById(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return u.Repo.FindById(ctx, id)
}
