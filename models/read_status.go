package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReadStatus 用户在某个频道的最后阅读时间
// (user_id, channel_id) 唯一，由 uk_read_status_user_channel 保证
type ReadStatus struct {
	ID         uuid.UUID `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"column:user_id;type:char(36);not null;uniqueIndex:uk_read_status_user_channel,priority:1" json:"user_id"`
	ChannelID  uuid.UUID `gorm:"column:channel_id;type:char(36);not null;uniqueIndex:uk_read_status_user_channel,priority:2;index" json:"channel_id"`
	LastReadAt time.Time `gorm:"column:last_read_at;precision:6;not null" json:"last_read_at"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;precision:6;autoUpdateTime" json:"updated_at"`

	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
	Channel *Channel `gorm:"foreignKey:ChannelID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (ReadStatus) TableName() string {
	return "read_statuses"
}

func (r *ReadStatus) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
