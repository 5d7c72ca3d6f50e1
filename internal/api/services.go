package api

import "github.com/eydough/awc-code-updater/internal/service"

// Services groups the business services used by the API server.
type Services struct {
	Challenge *service.ChallengeService
}
