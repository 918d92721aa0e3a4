package service

import (
	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	wire.Struct(new(ReadStatusService), "*"),
	wire.Bind(new(IReadStatusService), new(*ReadStatusService)),
)
