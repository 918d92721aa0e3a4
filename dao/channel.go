package dao

import (
	"Discodeit/models"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Channels struct {
	Repo[models.Channel]
}

func NewChannels(db *gorm.DB) *Channels {
	return &Channels{Repo: NewRepo[models.Channel](db)}
}

// WithDB 绑定到事务
func (c *Channels) WithDB(db *gorm.DB) *Channels {
	return NewChannels(db)
}

// FindById 不存在时返回 gorm.ErrRecordNotFound
func (c *Channels) FindById(ctx context.Context, id uuid.UUID) (*models.Channel, error) {
	return c.Repo.FindById(ctx, id)
}
