package mdcart

import (
	"context"
	"fmt"
	"sync"
)

// Locker 按 key 互斥，返回释放函数
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// LockKey 用户购物车锁的 key
func LockKey(userID int64) string {
	return fmt.Sprintf("takeout:cart:lock:%d", userID)
}

// LocalLocker 进程内按 key 互斥，单实例部署与测试使用
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewLocalLocker 创建进程内锁
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]chan struct{})}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	ch, ok := l.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
