package dao

import (
	"Discodeit/dao/cache"

	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewUsers,
	NewChannels,
	NewReadStatus,
	cache.NewReadStatusStorage,
)
