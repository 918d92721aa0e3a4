package dao

import (
	"Discodeit/models"
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReadStatus struct {
	Repo[models.ReadStatus]
}

func NewReadStatus(db *gorm.DB) *ReadStatus {
	return &ReadStatus{Repo: NewRepo[models.ReadStatus](db)}
}

// WithDB 绑定到事务
func (r *ReadStatus) WithDB(db *gorm.DB) *ReadStatus {
	return NewReadStatus(db)
}

func (r *ReadStatus) FindById(ctx context.Context, id uuid.UUID) (*models.ReadStatus, error) {
	return r.Repo.FindById(ctx, id)
}

// FindByUserAndChannel 按唯一键查询
func (r *ReadStatus) FindByUserAndChannel(ctx context.Context, userId, channelId uuid.UUID) (*models.ReadStatus, error) {
	return r.Repo.FindByWhere(ctx, "user_id = ? AND channel_id = ?", userId, channelId)
}

// FindAllByUserId 按创建时间升序返回用户的全部读状态
func (r *ReadStatus) FindAllByUserId(ctx context.Context, userId uuid.UUID) ([]*models.ReadStatus, error) {
	return r.Repo.FindAll(ctx, func(db *gorm.DB) {
		db.Where("user_id = ?", userId).Order("created_at ASC, id ASC")
	})
}

// UpdateLastReadAt 只修改 last_read_at，updated_at 作为缓存版本由调用方传入
func (r *ReadStatus) UpdateLastReadAt(ctx context.Context, id uuid.UUID, lastReadAt, updatedAt time.Time) (int64, error) {
	return r.Repo.UpdateById(ctx, id, map[string]any{
		"last_read_at": lastReadAt,
		"updated_at":   updatedAt,
	})
}

// DeleteById 返回受影响行数，0 表示记录不存在
func (r *ReadStatus) DeleteById(ctx context.Context, id uuid.UUID) (int64, error) {
	return r.Repo.Delete(ctx, "id = ?", id)
}
