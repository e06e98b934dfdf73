package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

type Cache struct {
	RDB *redis.Client
	sf  singleflight.Group
}

func New(addr, pass string, db int) *Cache {
	return &Cache{
		RDB: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
	}
}

func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	// 先读缓存
	if b, err := c.RDB.Get(ctx, key).Bytes(); err == nil {
		return b, nil
	}
	// single flight 合并回源
	v, err, _ := c.sf.Do(key, func() (any, error) {
		b, e := load(ctx)
		if e != nil {
			return nil, e
		}
		_ = c.RDB.Set(ctx, key, b, ttl).Err()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Ver 读版本号，key 不存在按 0 算；redis 不可用也按 0，让回源逻辑兜底
func (c *Cache) Ver(ctx context.Context, verKey string) int64 {
	n, err := c.RDB.Get(ctx, verKey).Int64()
	if err != nil {
		return 0
	}
	return n
}

// Bump 写操作后递增版本号，旧 key 靠 TTL 过期回收
func (c *Cache) Bump(ctx context.Context, verKey string) {
	_ = c.RDB.Incr(ctx, verKey).Err()
}
