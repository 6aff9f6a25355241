package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"rushbot/internal/config"
)

// RedisCache Redis 缓存封装
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache 创建 Redis 缓存客户端
func NewRedisCache(cfg *config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{client: client}, nil
}

// AcquireCooldown 尝试获取冷却锁
// 返回 true 表示当前不在冷却期，并已启动一个 ttl 长度的冷却窗口。
// 基于 SET NX + TTL，对同一 key 的并发请求只有一个会成功。
func (c *RedisCache) AcquireCooldown(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, key, 1, ttl).Result()
}

// CooldownRemaining 查询冷却剩余时间，不在冷却期返回 0
func (c *RedisCache) CooldownRemaining(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := c.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// Delete 删除 key
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// Close 关闭连接
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// 常用 key 模式
const chatCooldownKeyPrefix = "cooldown:chat:"

// ChatCooldownKey 生成 AI 对话冷却 key
func ChatCooldownKey(userID string) string {
	return chatCooldownKeyPrefix + userID
}
