package service

import (
	"Discodeit/dao"
	"Discodeit/dao/cache"
	"Discodeit/models"
	"Discodeit/pkg/testutil"
	"Discodeit/types"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	mr      *miniredis.Miniredis
	svc     *ReadStatusService
	user    *models.User
	channel *models.Channel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	mr := miniredis.RunT(t)
	rds := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rds.Close() })

	return &fixture{
		db: db,
		mr: mr,
		svc: &ReadStatusService{
			Db:            db,
			UserDao:       dao.NewUsers(db),
			ChannelDao:    dao.NewChannels(db),
			ReadStatusDao: dao.NewReadStatus(db),
			Cache:         cache.NewReadStatusStorage(rds),
		},
		user:    testutil.CreateUser(t, db, "alice"),
		channel: testutil.CreateChannel(t, db, "general"),
	}
}

func (f *fixture) create(t *testing.T, lastReadAt time.Time) *types.ReadStatusView {
	t.Helper()

	view, err := f.svc.Create(context.Background(), &types.CreateReadStatusReq{
		UserId:     f.user.ID,
		ChannelId:  f.channel.ID,
		LastReadAt: lastReadAt,
	})
	require.NoError(t, err)
	return view
}

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestReadStatusService_CreateThenFind(t *testing.T) {
	f := newFixture(t)

	created := f.create(t, t0)
	assert.NotEqual(t, uuid.Nil, created.Id)
	assert.Equal(t, f.user.ID, created.UserId)
	assert.Equal(t, f.channel.ID, created.ChannelId)
	assert.True(t, t0.Equal(created.LastReadAt))

	found, err := f.svc.Find(context.Background(), created.Id)
	require.NoError(t, err)
	assert.Equal(t, created.Id, found.Id)
	assert.Equal(t, created.UserId, found.UserId)
	assert.Equal(t, created.ChannelId, found.ChannelId)
	assert.True(t, created.LastReadAt.Equal(found.LastReadAt))
}

func TestReadStatusService_CreateUnknownUser(t *testing.T) {
	f := newFixture(t)

	for _, channelId := range []uuid.UUID{f.channel.ID, uuid.New()} {
		_, err := f.svc.Create(context.Background(), &types.CreateReadStatusReq{
			UserId:     uuid.New(),
			ChannelId:  channelId,
			LastReadAt: t0,
		})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "user")
	}
}

func TestReadStatusService_CreateUnknownChannel(t *testing.T) {
	f := newFixture(t)

	missing := uuid.New()
	_, err := f.svc.Create(context.Background(), &types.CreateReadStatusReq{
		UserId:     f.user.ID,
		ChannelId:  missing,
		LastReadAt: t0,
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), missing.String())
}

func TestReadStatusService_CreateDuplicate(t *testing.T) {
	f := newFixture(t)
	f.create(t, t0)

	_, err := f.svc.Create(context.Background(), &types.CreateReadStatusReq{
		UserId:     f.user.ID,
		ChannelId:  f.channel.ID,
		LastReadAt: t0.Add(time.Hour),
	})
	assert.ErrorIs(t, err, ErrConflict)

	items, err := f.svc.FindAllByUserId(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestReadStatusService_SameChannelDifferentUsers(t *testing.T) {
	f := newFixture(t)
	f.create(t, t0)

	bob := testutil.CreateUser(t, f.db, "bob")
	view, err := f.svc.Create(context.Background(), &types.CreateReadStatusReq{
		UserId:     bob.ID,
		ChannelId:  f.channel.ID,
		LastReadAt: t0,
	})
	require.NoError(t, err)
	assert.Equal(t, bob.ID, view.UserId)
}

func TestReadStatusService_FindUnknown(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Find(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadStatusService_FindAllByUserId(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	items, err := f.svc.FindAllByUserId(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	first := f.create(t, t0)
	random := testutil.CreateChannel(t, f.db, "random")
	second, err := f.svc.Create(ctx, &types.CreateReadStatusReq{
		UserId:     f.user.ID,
		ChannelId:  random.ID,
		LastReadAt: t0,
	})
	require.NoError(t, err)

	items, err = f.svc.FindAllByUserId(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	ids := []uuid.UUID{items[0].Id, items[1].Id}
	assert.ElementsMatch(t, []uuid.UUID{first.Id, second.Id}, ids)
}

func TestReadStatusService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, t0)

	t1 := t0.Add(90 * time.Minute)
	updated, err := f.svc.Update(ctx, created.Id, &types.UpdateReadStatusReq{NewLastReadAt: t1})
	require.NoError(t, err)
	assert.Equal(t, created.Id, updated.Id)
	assert.Equal(t, created.UserId, updated.UserId)
	assert.Equal(t, created.ChannelId, updated.ChannelId)
	assert.True(t, t1.Equal(updated.LastReadAt))

	again, err := f.svc.Update(ctx, created.Id, &types.UpdateReadStatusReq{NewLastReadAt: t1})
	require.NoError(t, err)
	assert.Equal(t, updated, again)

	found, err := f.svc.Find(ctx, created.Id)
	require.NoError(t, err)
	assert.True(t, t1.Equal(found.LastReadAt))
}

func TestReadStatusService_UpdateUnknown(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Update(context.Background(), uuid.New(), &types.UpdateReadStatusReq{NewLastReadAt: t0})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadStatusService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, t0)

	require.NoError(t, f.svc.Delete(ctx, created.Id))

	_, err := f.svc.Find(ctx, created.Id)
	assert.ErrorIs(t, err, ErrNotFound)

	err = f.svc.Delete(ctx, created.Id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadStatusService_DeleteUnknown(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.svc.Delete(context.Background(), uuid.New()), ErrNotFound)
}

func TestReadStatusService_Example(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	t1 := t0.Add(24 * time.Hour)

	r1 := f.create(t, t0)
	updated, err := f.svc.Update(ctx, r1.Id, &types.UpdateReadStatusReq{NewLastReadAt: t1})
	require.NoError(t, err)
	assert.Equal(t, &types.ReadStatusView{Id: r1.Id, UserId: f.user.ID, ChannelId: f.channel.ID, LastReadAt: t1}, updated)

	require.NoError(t, f.svc.Delete(ctx, r1.Id))
	_, err = f.svc.Find(ctx, r1.Id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadStatusService_FindUsesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, t0)
	key := "im:read_status:" + created.Id.String()

	assert.False(t, f.mr.Exists(key))
	_, err := f.svc.Find(ctx, created.Id)
	require.NoError(t, err)
	assert.True(t, f.mr.Exists(key))

	// 缓存命中时不再查库
	require.NoError(t, f.db.Exec("DELETE FROM read_statuses WHERE id = ?", created.Id).Error)
	found, err := f.svc.Find(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, created.Id, found.Id)
}

func TestReadStatusService_CacheFollowsWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, t0)

	_, err := f.svc.Find(ctx, created.Id)
	require.NoError(t, err)

	t1 := t0.Add(time.Minute)
	_, err = f.svc.Update(ctx, created.Id, &types.UpdateReadStatusReq{NewLastReadAt: t1})
	require.NoError(t, err)

	cached, err := f.svc.Cache.Get(ctx, created.Id)
	require.NoError(t, err)
	assert.True(t, t1.Equal(cached.LastReadAt))

	require.NoError(t, f.svc.Delete(ctx, created.Id))
	_, err = f.svc.Cache.Get(ctx, created.Id)
	assert.ErrorIs(t, err, cache.ErrDeleted)
}

// Find 查库后、回填缓存前发生 Update，旧值不能覆盖新值
func TestReadStatusService_FindRefillAfterUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, t0)

	stale, err := f.svc.ReadStatusDao.FindById(ctx, created.Id)
	require.NoError(t, err)

	t1 := t0.Add(time.Hour)
	_, err = f.svc.Update(ctx, created.Id, &types.UpdateReadStatusReq{NewLastReadAt: t1})
	require.NoError(t, err)

	f.svc.setCache(ctx, stale)

	found, err := f.svc.Find(ctx, created.Id)
	require.NoError(t, err)
	assert.True(t, t1.Equal(found.LastReadAt), "got %s", found.LastReadAt)
}

// Find 查库后、回填缓存前发生 Delete，已删除的记录不能回到缓存
func TestReadStatusService_FindRefillAfterDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, t0)

	stale, err := f.svc.ReadStatusDao.FindById(ctx, created.Id)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, created.Id))
	f.svc.setCache(ctx, stale)

	_, err = f.svc.Find(ctx, created.Id)
	assert.ErrorIs(t, err, ErrNotFound)
}

// 查重之后、插入之前另一请求写入了同一 (user, channel)，唯一索引冲突转为 ErrConflict
func TestReadStatusService_CreateConcurrentDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var inserted bool
	err := f.db.Callback().Create().Before("gorm:create").Register("test:concurrent_insert", func(tx *gorm.DB) {
		if inserted || tx.Statement.Table != "read_statuses" {
			return
		}
		inserted = true
		now := time.Now().UTC()
		tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO read_statuses (id, user_id, channel_id, last_read_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			uuid.New(), f.user.ID, f.channel.ID, t0, now, now,
		)
	})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, &types.CreateReadStatusReq{
		UserId:     f.user.ID,
		ChannelId:  f.channel.ID,
		LastReadAt: t0,
	})
	require.True(t, inserted)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), f.channel.ID.String())
}

func TestReadStatusService_CacheUnavailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.create(t, t0)

	f.mr.SetError("ERR cache unavailable")
	found, err := f.svc.Find(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, created.Id, found.Id)
	require.NoError(t, f.svc.Delete(ctx, created.Id))
}

func TestReadStatusService_WithoutCache(t *testing.T) {
	f := newFixture(t)
	f.svc.Cache = nil
	ctx := context.Background()
	created := f.create(t, t0)

	found, err := f.svc.Find(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, created.Id, found.Id)
	require.NoError(t, f.svc.Delete(ctx, created.Id))
}
