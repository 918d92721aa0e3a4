package testutil

import (
	"Discodeit/models"
	"Discodeit/pkg/database"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// NewDB 返回已迁移的内存 sqlite，测试结束自动关闭
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(sqlite.Open(":memory:"), false)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	// 内存库每个连接相互独立，只保留一个连接
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser 插入一个用户
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{Username: username}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// CreateChannel 插入一个频道
func CreateChannel(t *testing.T, db *gorm.DB, name string) *models.Channel {
	t.Helper()

	channel := &models.Channel{Name: name}
	if err := db.Create(channel).Error; err != nil {
		t.Fatalf("create channel %s: %v", name, err)
	}
	return channel
}
