package redis

import (
	"github.com/pkg/errors"
)

// ErrKeyNotFound возвращается когда ключ не найден в Redis
var ErrKeyNotFound = errors.New("key not found")

// ErrClosed возвращается после Close
var ErrClosed = errors.New("redis client is closed")
