package cache

import (
	"Discodeit/models"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// 读状态缓存过期时间 - 10分钟
const readStatusExpireAt = 10 * time.Minute

const (
	fieldVersion = "version"
	fieldData    = "data"
	fieldDeleted = "deleted"
)

var (
	// ErrCacheMiss 缓存中不存在
	ErrCacheMiss = errors.New("cache miss")
	// ErrDeleted 记录已被删除
	ErrDeleted = errors.New("read status deleted")
)

// 已删除或缓存版本更新时不覆盖
// KEYS[1] key, ARGV[1] version, ARGV[2] data, ARGV[3] ttl(ms)
var setIfNewer = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'deleted') == '1' then
	return 0
end
local cur = redis.call('HGET', KEYS[1], 'version')
if cur and tonumber(cur) > tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'version', ARGV[1], 'data', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

// ReadStatusStorage 每条读状态存一个 hash，version 为 updated_at 微秒时间戳
type ReadStatusStorage struct {
	redis *redis.Client
}

func NewReadStatusStorage(rds *redis.Client) *ReadStatusStorage {
	return &ReadStatusStorage{rds}
}

// Get 获取读状态缓存，未命中返回 ErrCacheMiss，已删除返回 ErrDeleted
func (s *ReadStatusStorage) Get(ctx context.Context, id uuid.UUID) (*models.ReadStatus, error) {
	values, err := s.redis.HGetAll(ctx, s.name(id)).Result()
	if err != nil {
		return nil, err
	}
	if values[fieldDeleted] == "1" {
		return nil, ErrDeleted
	}
	data, ok := values[fieldData]
	if !ok {
		return nil, ErrCacheMiss
	}

	var item models.ReadStatus
	if err := msgpack.Unmarshal([]byte(data), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Set 写入读状态缓存，缓存中已有更新的版本时返回 false
func (s *ReadStatusStorage) Set(ctx context.Context, item *models.ReadStatus) (bool, error) {
	data, err := msgpack.Marshal(item)
	if err != nil {
		return false, err
	}

	n, err := setIfNewer.Run(ctx, s.redis, []string{s.name(item.ID)},
		item.UpdatedAt.UnixMicro(), data, readStatusExpireAt.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SetDeleted 标记为已删除，之后的 Set 不再生效
func (s *ReadStatusStorage) SetDeleted(ctx context.Context, id uuid.UUID) error {
	key := s.name(id)
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fieldDeleted, 1)
		pipe.Expire(ctx, key, readStatusExpireAt)
		return nil
	})
	return err
}

// Del 删除读状态缓存
func (s *ReadStatusStorage) Del(ctx context.Context, id uuid.UUID) error {
	return s.redis.Del(ctx, s.name(id)).Err()
}

// im:read_status:id
func (s *ReadStatusStorage) name(id uuid.UUID) string {
	return fmt.Sprintf("im:read_status:%s", id)
}
