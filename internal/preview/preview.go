// Package preview fetches link metadata for URL previews in chat
// messages. It is an external collaborator of the realtime core: a
// failure here means "no preview", never a failed message.
package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheTTL = time.Hour

// Metadata is the preview shape the extraction API returns and the client
// renders: title, description, images, canonical URL.
type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	URL         string   `json:"url"`
}

// Fetcher resolves link metadata through an extraction endpoint, with a
// redis cache in front so repeated links in a busy channel don't hammer
// the upstream.
type Fetcher struct {
	endpoint string
	client   *http.Client
	cache    *redis.Client
	logger   *zap.Logger
}

// New builds a Fetcher. cache may be nil, in which case every fetch goes
// upstream.
func New(endpoint string, cache *redis.Client, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		cache:    cache,
		logger:   logger,
	}
}

// Fetch returns metadata for target, or nil when no preview is available.
// All failure modes (upstream down, non-200, unparseable body) collapse
// to nil — the caller treats absence and failure identically.
func (f *Fetcher) Fetch(ctx context.Context, target string) *Metadata {
	if meta := f.cached(ctx, target); meta != nil {
		return meta
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint+url.QueryEscape(target), nil)
	if err != nil {
		return nil
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("preview fetch failed", zap.String("url", target), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Warn("preview fetch rejected",
			zap.String("url", target),
			zap.Int("status", resp.StatusCode),
		)
		return nil
	}

	var meta Metadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		f.logger.Warn("preview decode failed", zap.String("url", target), zap.Error(err))
		return nil
	}
	if meta.Title == "" && meta.Description == "" && len(meta.Images) == 0 {
		return nil
	}

	f.store(ctx, target, &meta)
	return &meta
}

func cacheKey(target string) string {
	return fmt.Sprintf("preview:%s", target)
}

func (f *Fetcher) cached(ctx context.Context, target string) *Metadata {
	if f.cache == nil {
		return nil
	}
	raw, err := f.cache.Get(ctx, cacheKey(target)).Bytes()
	if err != nil {
		// redis.Nil is the normal miss; anything else is worth a log
		// line but never blocks the fetch.
		if err != redis.Nil {
			f.logger.Warn("preview cache read failed", zap.Error(err))
		}
		return nil
	}
	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil
	}
	return &meta
}

func (f *Fetcher) store(ctx context.Context, target string, meta *Metadata) {
	if f.cache == nil {
		return
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return
	}
	if err := f.cache.Set(ctx, cacheKey(target), raw, cacheTTL).Err(); err != nil {
		f.logger.Warn("preview cache write failed", zap.Error(err))
	}
}
