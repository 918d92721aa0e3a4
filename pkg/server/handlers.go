package server

import (
	"Discodeit/handler"
)

type Handlers struct {
	ReadStatus *handler.ReadStatus
}
