// Package di provides dependency injection configuration for the AWC code updater server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/eydough/awc-code-updater/internal/challenge"
	"github.com/eydough/awc-code-updater/internal/config"
	"github.com/eydough/awc-code-updater/internal/di/providers"
	"github.com/eydough/awc-code-updater/internal/logger"
	"github.com/eydough/awc-code-updater/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Completion data
	do.Provide(injector, providers.ProvideAniListClient)
	do.Provide(injector, providers.ProvideCompletionSource)

	// Business services
	do.Provide(injector, providers.ProvideParser)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideChallengeService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services.
// This triggers lazy initialization, so configuration errors surface at startup.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	if _, err := do.Invoke[*providers.AniListClientHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.CompletionSourceHandle](injector)
	_ = do.MustInvoke[*challenge.Parser](injector)
	_ = do.MustInvoke[*service.ChallengeService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
