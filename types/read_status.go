package types

import (
	"time"

	"github.com/google/uuid"
)

// CreateReadStatusReq 创建读状态请求
type CreateReadStatusReq struct {
	UserId     uuid.UUID `json:"user_id" binding:"required"`
	ChannelId  uuid.UUID `json:"channel_id" binding:"required"`
	LastReadAt time.Time `json:"last_read_at" binding:"required"`
}

// UpdateReadStatusReq 更新读状态请求
type UpdateReadStatusReq struct {
	NewLastReadAt time.Time `json:"new_last_read_at" binding:"required"`
}

// ListReadStatusReq 查询用户读状态列表
type ListReadStatusReq struct {
	UserId string `form:"user_id" binding:"required"`
}

// ReadStatusView 读状态
type ReadStatusView struct {
	Id         uuid.UUID `json:"id"`
	UserId     uuid.UUID `json:"user_id"`
	ChannelId  uuid.UUID `json:"channel_id"`
	LastReadAt time.Time `json:"last_read_at"`
}
