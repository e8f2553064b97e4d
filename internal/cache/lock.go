package cache

import (
	"context"
	"time"

	"github.com/seller-settlement/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// TryLock 尝试获取分布式锁，ok=false 表示锁被其他持有者占用
// 未启用 Redis 时总是成功，仅依赖数据库唯一约束保证幂等
func (r *Redis) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if !r.Enabled() {
		return func() {}, true, nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	fullKey := r.Key("lock:" + key)
	token := uuid.NewString()

	acquired, err := r.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !acquired {
		return nil, false, nil
	}

	unlock := func() {
		// 调用方 ctx 可能已取消，释放锁使用独立超时
		releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := releaseLockScript.Run(releaseCtx, r.client, []string{fullKey}, token).Err(); err != nil {
			logger.Warnw("redis_lock_release_failed", "key", fullKey, "error", err)
		}
	}
	return unlock, true, nil
}
