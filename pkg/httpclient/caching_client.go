package httpclient

import (
	"context"
	"crypto/sha1" //nolint:gosec // cache key, not a security boundary
	"encoding/hex"
	"net/http"
)

// CachingClient serves repeated GETs from a Cache. Only 200 responses are stored.
type CachingClient struct {
	inner Client
	cache Cache
	log   Logger
}

// NewCachingClient wraps inner. A nil cache disables caching.
func NewCachingClient(inner Client, cache Cache, log Logger) *CachingClient {
	if log == nil {
		log = nopLogger{}
	}
	return &CachingClient{inner: inner, cache: cache, log: log}
}

func (c *CachingClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	if c.cache == nil {
		return c.inner.Get(ctx, url, headers)
	}

	key := cacheKey(url)
	body, ok, err := c.cache.Get(key)
	switch {
	case err != nil:
		c.log.WarnObj("response cache read failed", "cache_error", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
	case ok:
		c.log.DebugObj("response cache hit", "cache_hit", map[string]any{"url": url})
		return cachedResponse{body: body}, nil
	}

	resp, err := c.inner.Get(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusOK {
		if err := c.cache.Put(key, resp.Body()); err != nil {
			c.log.WarnObj("response cache write failed", "cache_error", map[string]any{
				"url":   url,
				"error": err.Error(),
			})
		}
	}
	return resp, nil
}

// Post is never cached.
func (c *CachingClient) Post(ctx context.Context, url string, body any, headers map[string]string) (Response, error) {
	return c.inner.Post(ctx, url, body, headers)
}

func cacheKey(url string) string {
	sum := sha1.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

type cachedResponse struct {
	body []byte
}

func (r cachedResponse) Body() []byte    { return r.body }
func (r cachedResponse) StatusCode() int { return http.StatusOK }
