// Package config loads configuration from command-line flags, environment
// variables and an optional .env file.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidFlags wraps command-line parse failures, so callers can tell a
// mistyped flag from a bad configuration value.
var ErrInvalidFlags = errors.New("invalid flags")

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Server  ServerConfig
	AniList AniListConfig
	Cache   CacheConfig
	Parser  ParserConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port          string        // Server port (default: 8080)
	ReadTimeout   time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout  time.Duration // HTTP write timeout (default: 60s; AniList fetches are slow)
	IdleTimeout   time.Duration // HTTP idle timeout (default: 60s)
	RatePerMinute int           // Update requests per client IP per minute (default: 30)
	CORSOrigins   []string      // Allowed browser origins (default: *)
}

// AniListConfig holds AniList API client configuration.
type AniListConfig struct {
	URL     string
	Timeout time.Duration
	RPS     float64 // Outbound requests per second (AniList allows 90/min)
	Burst   int
}

// CacheConfig holds completion cache configuration.
type CacheConfig struct {
	// TTL is how long fetched completion data is reused. Zero disables caching.
	TTL time.Duration
	// Size is the number of users kept by the in-memory cache.
	Size int
	// Path is the Badger directory used by the CLI.
	Path string
}

// ParserConfig holds the proximity windows used to find entries.
type ParserConfig struct {
	HeaderWindow int // Lines searched above a link for its header (default: 5)
	DateWindow   int // Lines searched below a link for its date line (default: 3)
}

// flagValues holds the raw flag strings; empty means unset.
type flagValues struct {
	env, logLevel, envFile                                      *string
	port, readTimeout, writeTimeout, idleTimeout, ratePerMinute *string
	corsOrigins                                                 *string
	anilistURL, anilistTimeout, anilistRPS, anilistBurst        *string
	cacheTTL, cacheSize, cachePath                              *string
	headerWindow, dateWindow                                    *string
}

func registerFlags(fs *flag.FlagSet) *flagValues {
	return &flagValues{
		env:      fs.String("env", "", "Environment (development, staging, production)"),
		logLevel: fs.String("log-level", "", "Log level (debug, info, warn, error)"),
		envFile:  fs.String("env-file", ".env", "Path to .env file"),

		port:          fs.String("port", "", "Server port (default: 8080)"),
		readTimeout:   fs.String("read-timeout", "", "HTTP read timeout (default: 15s)"),
		writeTimeout:  fs.String("write-timeout", "", "HTTP write timeout (default: 60s)"),
		idleTimeout:   fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)"),
		ratePerMinute: fs.String("rate-per-minute", "", "Update requests per client per minute (default: 30)"),
		corsOrigins:   fs.String("cors-origins", "", "Comma-separated allowed origins (default: *)"),

		anilistURL:     fs.String("anilist-url", "", "AniList GraphQL endpoint"),
		anilistTimeout: fs.String("anilist-timeout", "", "AniList request timeout (default: 30s)"),
		anilistRPS:     fs.String("anilist-rps", "", "AniList requests per second (default: 1.5)"),
		anilistBurst:   fs.String("anilist-burst", "", "AniList request burst (default: 3)"),

		cacheTTL:  fs.String("cache-ttl", "", "Completion cache TTL, 0 disables (default: 10m)"),
		cacheSize: fs.String("cache-size", "", "In-memory completion cache size (default: 256)"),
		cachePath: fs.String("cache-path", "", "On-disk completion cache directory"),

		headerWindow: fs.String("header-window", "", "Lines searched above a link for its header (default: 5)"),
		dateWindow:   fs.String("date-window", "", "Lines searched below a link for its date line (default: 3)"),
	}
}

// Load registers the configuration flags on fs, parses args and builds the
// configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
//
// Callers may register their own flags on fs before calling Load.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	f := registerFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFlags, err)
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*f.envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*f.env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*f.logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*f.port, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(*f.corsOrigins, "CORS_ALLOWED_ORIGINS", "*")),
		},
		AniList: AniListConfig{
			URL: getConfigValue(*f.anilistURL, "ANILIST_URL", "https://graphql.anilist.co"),
		},
		Cache: CacheConfig{
			Path: getConfigValue(*f.cachePath, "CACHE_PATH", ""),
		},
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	cfg.Server.ReadTimeout = parseDuration(*f.readTimeout, "SERVER_READ_TIMEOUT", "15s", collect)
	cfg.Server.WriteTimeout = parseDuration(*f.writeTimeout, "SERVER_WRITE_TIMEOUT", "60s", collect)
	cfg.Server.IdleTimeout = parseDuration(*f.idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", collect)
	cfg.Server.RatePerMinute = parseInt(*f.ratePerMinute, "API_RATE_PER_MINUTE", 30, collect)

	cfg.AniList.Timeout = parseDuration(*f.anilistTimeout, "ANILIST_TIMEOUT", "30s", collect)
	cfg.AniList.RPS = parseFloat(*f.anilistRPS, "ANILIST_RPS", 1.5, collect)
	cfg.AniList.Burst = parseInt(*f.anilistBurst, "ANILIST_BURST", 3, collect)

	cfg.Cache.TTL = parseDuration(*f.cacheTTL, "CACHE_TTL", "10m", collect)
	cfg.Cache.Size = parseInt(*f.cacheSize, "CACHE_SIZE", 256, collect)

	cfg.Parser.HeaderWindow = parseInt(*f.headerWindow, "HEADER_WINDOW", 5, collect)
	cfg.Parser.DateWindow = parseInt(*f.dateWindow, "DATE_WINDOW", 3, collect)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if err := cfg.expandCachePath(); err != nil {
		return nil, fmt.Errorf("invalid cache path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %q", c.Server.Port)
	}
	if c.Server.RatePerMinute <= 0 {
		return errors.New("API_RATE_PER_MINUTE must be positive")
	}

	u, err := url.Parse(c.AniList.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid AniList URL: %q", c.AniList.URL)
	}
	if c.AniList.RPS <= 0 || c.AniList.Burst <= 0 {
		return errors.New("ANILIST_RPS and ANILIST_BURST must be positive")
	}

	if c.Cache.TTL < 0 {
		return errors.New("CACHE_TTL cannot be negative")
	}
	if c.Cache.Size <= 0 {
		return errors.New("CACHE_SIZE must be positive")
	}

	if c.Parser.HeaderWindow <= 0 || c.Parser.DateWindow <= 0 {
		return errors.New("HEADER_WINDOW and DATE_WINDOW must be positive")
	}

	return nil
}

// CacheEnabled reports whether completion data should be cached.
func (c *Config) CacheEnabled() bool {
	return c.Cache.TTL > 0
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, uses defaultPath.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandCachePath defaults the cache to {user cache dir}/awc-code-updater/completion.
func (c *Config) expandCachePath() error {
	var defaultPath string
	if c.Cache.Path == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			return fmt.Errorf("failed to get cache directory: %w", err)
		}
		defaultPath = filepath.Join(cacheDir, "awc-code-updater", "completion")
	}

	expanded, err := expandPath(c.Cache.Path, defaultPath)
	if err != nil {
		return err
	}
	c.Cache.Path = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(value string) []string {
	var out []string
	for item := range strings.SplitSeq(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseDuration(flagValue, envKey, defaultValue string, collect func(error)) time.Duration {
	s := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(s)
	if err != nil {
		collect(fmt.Errorf("invalid %s %q: %w", envKey, s, err))
		return 0
	}
	return d
}

func parseInt(flagValue, envKey string, defaultValue int, collect func(error)) int {
	s := getConfigValue(flagValue, envKey, "")
	if s == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		collect(fmt.Errorf("invalid %s %q: %w", envKey, s, err))
		return 0
	}
	return n
}

func parseFloat(flagValue, envKey string, defaultValue float64, collect func(error)) float64 {
	s := getConfigValue(flagValue, envKey, "")
	if s == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		collect(fmt.Errorf("invalid %s %q: %w", envKey, s, err))
		return 0
	}
	return f
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Environment variables take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
