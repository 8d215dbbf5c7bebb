package utils

import (
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheItem 包装缓存数据和过期时间
type cacheItem[V any] struct {
	data      V
	expiresAt time.Time
}

// Cache 本地 LRU 缓存，每个条目带 TTL
type Cache[V any] struct {
	lruCache *lru.Cache[string, cacheItem[V]]
	now      func() time.Time
}

// NewCache 创建容量为 size 的缓存
func NewCache[V any](size int) (*Cache[V], error) {
	l, err := lru.New[string, cacheItem[V]](size)
	if err != nil {
		return nil, err
	}
	return &Cache[V]{lruCache: l, now: time.Now}, nil
}

// Set 设置缓存，TTL 为过期时间
func (c *Cache[V]) Set(key string, data V, ttl time.Duration) {
	c.lruCache.Add(key, cacheItem[V]{
		data:      data,
		expiresAt: c.now().Add(ttl),
	})
}

// Get 获取缓存，若不存在或已过期则返回 false
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	val, ok := c.lruCache.Get(key)
	if !ok {
		return zero, false
	}

	// 检查过期
	if !c.now().Before(val.expiresAt) {
		c.lruCache.Remove(key)
		return zero, false
	}

	return val.data, true
}

// Delete 删除指定缓存
func (c *Cache[V]) Delete(key string) {
	c.lruCache.Remove(key)
}

// DeletePrefix 删除所有以 prefix 开头的缓存
func (c *Cache[V]) DeletePrefix(prefix string) {
	for _, key := range c.lruCache.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.lruCache.Remove(key)
		}
	}
}

// Purge 清空缓存
func (c *Cache[V]) Purge() {
	c.lruCache.Purge()
}

func (c *Cache[V]) Len() int {
	return c.lruCache.Len()
}
