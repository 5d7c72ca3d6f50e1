package providers

import (
	"github.com/samber/do/v2"

	"github.com/eydough/awc-code-updater/internal/challenge"
	"github.com/eydough/awc-code-updater/internal/config"
	"github.com/eydough/awc-code-updater/internal/logger"
	"github.com/eydough/awc-code-updater/internal/service"
	"github.com/eydough/awc-code-updater/internal/validation"
)

// ProvideParser provides the challenge parser with the configured windows.
func ProvideParser(i do.Injector) (*challenge.Parser, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return challenge.NewParser(challenge.Windows{
		HeaderLookBack: cfg.Parser.HeaderWindow,
		DateLookAhead:  cfg.Parser.DateWindow,
	}), nil
}

// ProvideValidator provides the request validator.
func ProvideValidator(_ do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideChallengeService provides the challenge update service.
func ProvideChallengeService(i do.Injector) (*service.ChallengeService, error) {
	parser := do.MustInvoke[*challenge.Parser](i)
	source := do.MustInvoke[*CompletionSourceHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewChallengeService(parser, source.CompletionSource, validator, log.Logger), nil
}
