package translate

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"time"

	"sjsage522/rankscout/logger"
	"sjsage522/rankscout/services/cache"
)

// CachedTranslator memoizes another translator in a cache service.
// Cache failures never fail a translation.
type CachedTranslator struct {
	next  Translator
	cache cache.CacheService
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedTranslator wraps next with cacheSvc
func NewCachedTranslator(next Translator, cacheSvc cache.CacheService, ttl time.Duration) *CachedTranslator {
	return &CachedTranslator{
		next:  next,
		cache: cacheSvc,
		ttl:   ttl,
		log:   logger.ForComponent("translation-cache"),
	}
}

// Translate returns the cached translation or asks the wrapped translator
func (t *CachedTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	key := cacheKey(text, target)

	value, err := t.cache.Get(key)
	if err == nil {
		return string(value), nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		t.log.Warn().Err(err).Msg("Translation cache lookup failed")
	}

	translated, err := t.next.Translate(ctx, text, target)
	if err != nil {
		return "", err
	}

	if err := t.cache.Set(key, []byte(translated), t.ttl); err != nil {
		t.log.Warn().Err(err).Msg("Failed to store translation")
	}
	return translated, nil
}

func cacheKey(text, target string) string {
	sum := sha1.Sum([]byte(text))
	return "translate:" + target + ":" + hex.EncodeToString(sum[:])
}
