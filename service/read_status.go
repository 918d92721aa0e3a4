package service

import (
	"Discodeit/dao"
	"Discodeit/dao/cache"
	"Discodeit/models"
	"Discodeit/pkg/log"
	"Discodeit/types"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var _ IReadStatusService = (*ReadStatusService)(nil)

type IReadStatusService interface {
	Create(ctx context.Context, req *types.CreateReadStatusReq) (*types.ReadStatusView, error)
	Find(ctx context.Context, id uuid.UUID) (*types.ReadStatusView, error)
	FindAllByUserId(ctx context.Context, userId uuid.UUID) ([]*types.ReadStatusView, error)
	Update(ctx context.Context, id uuid.UUID, req *types.UpdateReadStatusReq) (*types.ReadStatusView, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReadStatusService 每个方法在一个事务内完成
type ReadStatusService struct {
	Db            *gorm.DB
	UserDao       *dao.Users
	ChannelDao    *dao.Channels
	ReadStatusDao *dao.ReadStatus
	Cache         *cache.ReadStatusStorage
}

func (s *ReadStatusService) Create(ctx context.Context, req *types.CreateReadStatusReq) (*types.ReadStatusView, error) {
	item := &models.ReadStatus{
		UserID:     req.UserId,
		ChannelID:  req.ChannelId,
		LastReadAt: normalize(req.LastReadAt),
	}

	err := s.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.UserDao.WithDB(tx).FindById(ctx, req.UserId); err != nil {
			return notFound(err, "user with id %s does not exist", req.UserId)
		}
		if _, err := s.ChannelDao.WithDB(tx).FindById(ctx, req.ChannelId); err != nil {
			return notFound(err, "channel with id %s does not exist", req.ChannelId)
		}

		readStatusDao := s.ReadStatusDao.WithDB(tx)
		_, err := readStatusDao.FindByUserAndChannel(ctx, req.UserId, req.ChannelId)
		if err == nil {
			return conflict(req.UserId, req.ChannelId)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// 并发创建时由唯一索引兜底
		if err := readStatusDao.Create(ctx, item); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return conflict(req.UserId, req.ChannelId)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.L.Info("read status created",
		zap.String("id", item.ID.String()),
		zap.String("user_id", item.UserID.String()),
		zap.String("channel_id", item.ChannelID.String()),
	)
	return toView(item), nil
}

func (s *ReadStatusService) Find(ctx context.Context, id uuid.UUID) (*types.ReadStatusView, error) {
	item, err := s.getCache(ctx, id)
	if err != nil {
		return nil, err
	}
	if item != nil {
		return toView(item), nil
	}

	err = s.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		item, err = s.ReadStatusDao.WithDB(tx).FindById(ctx, id)
		if err != nil {
			return notFound(err, "read status with id %s not found", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.setCache(ctx, item)
	return toView(item), nil
}

func (s *ReadStatusService) FindAllByUserId(ctx context.Context, userId uuid.UUID) ([]*types.ReadStatusView, error) {
	var items []*models.ReadStatus
	err := s.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		items, err = s.ReadStatusDao.WithDB(tx).FindAllByUserId(ctx, userId)
		return err
	})
	if err != nil {
		return nil, err
	}

	data := make([]*types.ReadStatusView, 0, len(items))
	for _, v := range items {
		data = append(data, toView(v))
	}
	return data, nil
}

func (s *ReadStatusService) Update(ctx context.Context, id uuid.UUID, req *types.UpdateReadStatusReq) (*types.ReadStatusView, error) {
	var item *models.ReadStatus
	err := s.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		readStatusDao := s.ReadStatusDao.WithDB(tx)

		var err error
		item, err = readStatusDao.FindById(ctx, id)
		if err != nil {
			return notFound(err, "read status with id %s not found", id)
		}

		item.LastReadAt = normalize(req.NewLastReadAt)
		item.UpdatedAt = normalize(time.Now())
		_, err = readStatusDao.UpdateLastReadAt(ctx, id, item.LastReadAt, item.UpdatedAt)
		return err
	})
	if err != nil {
		return nil, err
	}

	// 提交后写入新值，并发的 Find 回填旧版本时会被忽略
	if !s.setCache(ctx, item) {
		s.delCache(ctx, id)
	}
	log.L.Info("read status updated",
		zap.String("id", id.String()),
		zap.Time("last_read_at", item.LastReadAt),
	)
	return toView(item), nil
}

func (s *ReadStatusService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.Db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected, err := s.ReadStatusDao.WithDB(tx).DeleteById(ctx, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: read status with id %s not found", ErrNotFound, id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.markDeleted(ctx, id)
	log.L.Info("read status deleted", zap.String("id", id.String()))
	return nil
}

// getCache 未命中或缓存不可用时返回 nil, nil
func (s *ReadStatusService) getCache(ctx context.Context, id uuid.UUID) (*models.ReadStatus, error) {
	if s.Cache == nil {
		return nil, nil
	}
	item, err := s.Cache.Get(ctx, id)
	switch {
	case err == nil:
		return item, nil
	case errors.Is(err, cache.ErrDeleted):
		return nil, fmt.Errorf("%w: read status with id %s not found", ErrNotFound, id)
	case !errors.Is(err, cache.ErrCacheMiss):
		log.L.Warn("get read status cache", zap.String("id", id.String()), zap.Error(err))
	}
	return nil, nil
}

// setCache 写入成功或缓存中已有更新的版本时返回 true
func (s *ReadStatusService) setCache(ctx context.Context, item *models.ReadStatus) bool {
	if s.Cache == nil {
		return true
	}
	if _, err := s.Cache.Set(ctx, item); err != nil {
		log.L.Warn("set read status cache", zap.String("id", item.ID.String()), zap.Error(err))
		return false
	}
	return true
}

func (s *ReadStatusService) delCache(ctx context.Context, id uuid.UUID) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, id); err != nil {
		log.L.Warn("del read status cache", zap.String("id", id.String()), zap.Error(err))
	}
}

func (s *ReadStatusService) markDeleted(ctx context.Context, id uuid.UUID) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.SetDeleted(ctx, id); err != nil {
		log.L.Warn("mark read status cache deleted", zap.String("id", id.String()), zap.Error(err))
		s.delCache(ctx, id)
	}
}

func conflict(userId, channelId uuid.UUID) error {
	return fmt.Errorf("%w: read status with user_id %s and channel_id %s", ErrConflict, userId, channelId)
}

// normalize 统一为 UTC 微秒精度，与 datetime(6) 列一致
func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func toView(m *models.ReadStatus) *types.ReadStatusView {
	return &types.ReadStatusView{
		Id:         m.ID,
		UserId:     m.UserID,
		ChannelId:  m.ChannelID,
		LastReadAt: m.LastReadAt.UTC(),
	}
}
