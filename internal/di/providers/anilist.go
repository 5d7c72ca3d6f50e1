package providers

import (
	"github.com/samber/do/v2"

	"github.com/eydough/awc-code-updater/internal/anilist"
	"github.com/eydough/awc-code-updater/internal/completion"
	"github.com/eydough/awc-code-updater/internal/config"
	"github.com/eydough/awc-code-updater/internal/logger"
	"github.com/eydough/awc-code-updater/internal/service"
)

// AniListClientHandle wraps the AniList client with shutdown capability.
type AniListClientHandle struct {
	*anilist.Client
}

// Shutdown implements do.Shutdownable.
func (h *AniListClientHandle) Shutdown() error {
	h.Client.Close()
	return nil
}

// ProvideAniListClient provides the AniList GraphQL client.
func ProvideAniListClient(i do.Injector) (*AniListClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client, err := anilist.New(log.Logger, anilist.Options{
		BaseURL: cfg.AniList.URL,
		Timeout: cfg.AniList.Timeout,
		RPS:     cfg.AniList.RPS,
		Burst:   cfg.AniList.Burst,
	})
	if err != nil {
		return nil, err
	}

	log.Info("AniList client initialized", "url", cfg.AniList.URL, "rps", cfg.AniList.RPS)
	return &AniListClientHandle{Client: client}, nil
}

// CompletionSourceHandle holds the source the challenge service fetches from.
type CompletionSourceHandle struct {
	service.CompletionSource
}

// ProvideCompletionSource puts an in-memory cache in front of the AniList
// client unless caching is disabled.
func ProvideCompletionSource(i do.Injector) (*CompletionSourceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	client := do.MustInvoke[*AniListClientHandle](i)

	if !cfg.CacheEnabled() {
		log.Info("completion cache disabled")
		return &CompletionSourceHandle{CompletionSource: client.Client}, nil
	}

	store := completion.NewMemoryStore(cfg.Cache.Size, cfg.Cache.TTL)
	log.Info("completion cache enabled", "size", cfg.Cache.Size, "ttl", cfg.Cache.TTL)

	return &CompletionSourceHandle{
		CompletionSource: completion.NewCachedSource(client.Client, store, log.Logger),
	}, nil
}
