// Package providers contains dependency injection providers for the AWC code updater server.
package providers

import (
	"flag"
	"os"

	"github.com/samber/do/v2"

	"github.com/eydough/awc-code-updater/internal/config"
	"github.com/eydough/awc-code-updater/internal/logger"
)

// ProvideConfig provides the application configuration from the process flags.
func ProvideConfig(_ do.Injector) (*config.Config, error) {
	return config.Load(flag.CommandLine, os.Args[1:])
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("starting AWC code updater server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"anilist_url", cfg.AniList.URL,
		"cache_ttl", cfg.Cache.TTL,
	)

	return log, nil
}
