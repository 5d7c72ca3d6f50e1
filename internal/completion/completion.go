// Package completion caches a user's AniList completion data in front of the
// API client. Only completion records are stored, never challenge text.
package completion

import (
	"context"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/eydough/awc-code-updater/internal/challenge"
)

const keyPrefix = "completion:"

// Source fetches a user's completed anime and manga.
type Source interface {
	FetchAllCompleted(ctx context.Context, username string) (challenge.CompletionMap, error)
}

// Store is a cache of completion maps keyed by username.
// Get reports a miss with ok == false; expired records are misses.
type Store interface {
	Get(ctx context.Context, username string) (challenge.CompletionMap, bool, error)
	Set(ctx context.Context, username string, media challenge.CompletionMap) error
	Delete(ctx context.Context, username string) error
}

// CachedCompletion wraps fetched completion data with cache info.
type CachedCompletion struct {
	Username  string                  `json:"username"`
	Media     challenge.CompletionMap `json:"media"`
	FetchedAt time.Time               `json:"fetched_at"`
}

// NormalizeUsername folds a username into its cache key form.
// AniList usernames are case-insensitive.
func NormalizeUsername(username string) string {
	return strings.ToLower(norm.NFKC.String(strings.TrimSpace(username)))
}

func cacheKey(username string) string {
	return keyPrefix + NormalizeUsername(username)
}
