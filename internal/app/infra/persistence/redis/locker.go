package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockTimeout 在等待时间内未获取到锁
var ErrLockTimeout = errors.New("acquire lock timeout")

// 只有持有者（token 匹配）才能释放锁
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker 基于 SET NX PX 的分布式互斥锁
type Locker struct {
	rdb        *redis.Client
	ttl        time.Duration
	retryDelay time.Duration
}

// NewLocker 创建分布式锁，ttl 为锁自动过期时间
func NewLocker(rdb *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return &Locker{
		rdb:        rdb,
		ttl:        ttl,
		retryDelay: 20 * time.Millisecond,
	}
}

// Lock 阻塞直到获取锁或 ctx 结束，返回释放函数
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("lock %s failed: %w", key, err)
		}
		if ok {
			return func() {
				// 使用独立 context，调用方 ctx 已取消时仍能释放
				releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = unlockScript.Run(releaseCtx, l.rdb, []string{key}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("lock %s: %w", key, ErrLockTimeout)
		case <-time.After(l.retryDelay):
		}
	}
}
