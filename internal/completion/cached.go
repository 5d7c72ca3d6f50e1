package completion

import (
	"context"
	"log/slog"

	"github.com/eydough/awc-code-updater/internal/challenge"
)

// CachedSource serves completion data from a Store, falling back to the
// wrapped Source on a miss. Only successful fetches are cached; a failed
// fetch is returned unchanged with no stale fallback.
type CachedSource struct {
	source Source
	store  Store
	logger *slog.Logger
}

// NewCachedSource wraps source with store.
func NewCachedSource(source Source, store Store, logger *slog.Logger) *CachedSource {
	return &CachedSource{
		source: source,
		store:  store,
		logger: logger,
	}
}

// FetchAllCompleted returns cached data for username when present.
func (c *CachedSource) FetchAllCompleted(ctx context.Context, username string) (challenge.CompletionMap, error) {
	media, ok, err := c.store.Get(ctx, username)
	switch {
	case err != nil:
		c.logger.Warn("completion cache read failed", "username", username, "error", err)
	case ok:
		c.logger.Debug("completion cache hit", "username", username, "count", len(media))
		return media, nil
	}

	return c.fetch(ctx, username)
}

// RefreshAllCompleted skips the cache read, fetches fresh data and stores it.
func (c *CachedSource) RefreshAllCompleted(ctx context.Context, username string) (challenge.CompletionMap, error) {
	return c.fetch(ctx, username)
}

func (c *CachedSource) fetch(ctx context.Context, username string) (challenge.CompletionMap, error) {
	media, err := c.source.FetchAllCompleted(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := c.store.Set(ctx, username, media); err != nil {
		c.logger.Warn("completion cache write failed", "username", username, "error", err)
	}
	return media, nil
}
