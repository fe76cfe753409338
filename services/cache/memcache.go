package cache

import (
	"errors"
	"fmt"
	"time"

	scrapeerrors "sjsage522/rankscout/pkg/errors"

	"github.com/bradfitz/gomemcache/memcache"
)

// MemcacheService implements CacheService using memcache
type MemcacheService struct {
	client *memcache.Client
}

// NewMemcacheService creates a memcache service for one or more servers
func NewMemcacheService(servers ...string) *MemcacheService {
	client := memcache.New(servers...)
	client.Timeout = 500 * time.Millisecond
	return &MemcacheService{client: client}
}

// Ping checks that every server is reachable
func (m *MemcacheService) Ping() error {
	if err := m.client.Ping(); err != nil {
		return scrapeerrors.NewCache("memcache ping failed", err)
	}
	return nil
}

// Get retrieves a value from memcache
func (m *MemcacheService) Get(key string) ([]byte, error) {
	item, err := m.client.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, scrapeerrors.NewCache(fmt.Sprintf("failed to get %s", key), err)
	}
	return item.Value, nil
}

// Set stores a value in memcache with an expiration time. Memcache treats
// relative expirations above 30 days as unix timestamps, so longer TTLs are
// converted to an absolute time.
func (m *MemcacheService) Set(key string, value []byte, expiration time.Duration) error {
	err := m.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: expirationSeconds(expiration, time.Now()),
	})
	if err != nil {
		return scrapeerrors.NewCache(fmt.Sprintf("failed to set %s", key), err)
	}
	return nil
}

// Delete removes a value from memcache
func (m *MemcacheService) Delete(key string) error {
	err := m.client.Delete(key)
	if err == nil || errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return scrapeerrors.NewCache(fmt.Sprintf("failed to delete %s", key), err)
}

const maxRelativeExpiration = 30 * 24 * time.Hour

func expirationSeconds(expiration time.Duration, now time.Time) int32 {
	if expiration <= 0 {
		return 0
	}
	if expiration > maxRelativeExpiration {
		return int32(now.Add(expiration).Unix())
	}
	return int32(expiration.Seconds())
}
