package core

import "github.com/go-redis/redis/v8"

// RedisDB represents the redis client
type RedisDB interface {
	// Client exposes redis client interface
	Client() redis.UniversalClient
}
