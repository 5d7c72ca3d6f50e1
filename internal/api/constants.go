package api

const (
	// apiPrefix is the path prefix of rate limited routes.
	apiPrefix = "/api/"

	// DefaultRatePerMinute is the per-IP request budget when none is configured.
	DefaultRatePerMinute = 30

	// MaxBodyBytes bounds request bodies; challenge posts are a few KB.
	MaxBodyBytes = 1 << 20
)
