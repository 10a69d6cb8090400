package database

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/Mulandii/Clinic-cms/internal/config"
)

type RedisClient struct{ *redis.Client }

func NewRedis(cfg *config.Config) *RedisClient {
	return &RedisClient{redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  cfg.RedisDialTimeout,
		ReadTimeout:  cfg.RedisReadTimeout,
		WriteTimeout: cfg.RedisReadTimeout,
	})}
}

func (c *RedisClient) Ping(ctx context.Context) error { return c.Client.Ping(ctx).Err() }
