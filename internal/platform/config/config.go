package config

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile        = ".env"
	defaultPort           = "8080"
	defaultReadTimeout    = 15 * time.Second
	defaultWriteTimeout   = 30 * time.Second
	defaultIdleTimeout    = 120 * time.Second
	defaultBackendTimeout = 10 * time.Second
	defaultSessionCookie  = "storefront_session"
	defaultSessionTTL     = 12 * time.Hour
	defaultContentDir     = "content"
	defaultCurrency       = "GBP"

	envPrefix = "STOREFRONT_"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	Session  SessionConfig
	Content  ContentConfig
	Features FeatureFlags
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// BackendConfig locates the commerce backend consumed by the storefront.
type BackendConfig struct {
	BaseURL  string
	Timeout  time.Duration
	Currency string
}

// SessionConfig controls storefront session cookies and lifetime.
type SessionConfig struct {
	CookieName    string
	TTL           time.Duration
	SweepInterval time.Duration
}

// ContentConfig points at the static content pages directory.
type ContentConfig struct {
	Dir string
}

// FeatureFlags toggle optional storefront surfaces without redeploying.
type FeatureFlags struct {
	EnableBundles    bool
	EnablePromoCodes bool
	EnableAdminPanel bool
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

type loadOptions struct {
	envFile string
	lookup  func(string) (string, bool)
}

// Option customises configuration loading.
type Option func(*loadOptions)

// WithEnvFile overrides the env file consulted before process environment variables.
func WithEnvFile(path string) Option {
	return func(o *loadOptions) {
		o.envFile = path
	}
}

// WithLookup replaces the environment lookup function, primarily for tests.
func WithLookup(fn func(string) (string, bool)) Option {
	return func(o *loadOptions) {
		o.lookup = fn
	}
}

// Load reads configuration from the env file and process environment, applies
// defaults, and validates required fields.
func Load(opts ...Option) (Config, error) {
	options := loadOptions{envFile: defaultEnvFile, lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(&options)
	}

	fileValues, err := readEnvFile(options.envFile)
	if err != nil {
		return Config{}, err
	}

	get := func(key string) string {
		full := envPrefix + key
		if value, ok := options.lookup(full); ok {
			return strings.TrimSpace(value)
		}
		if value, ok := fileValues[full]; ok {
			return strings.TrimSpace(value)
		}
		return ""
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         defaultString(get("PORT"), defaultPort),
			ReadTimeout:  parseDuration(get("READ_TIMEOUT"), defaultReadTimeout),
			WriteTimeout: parseDuration(get("WRITE_TIMEOUT"), defaultWriteTimeout),
			IdleTimeout:  parseDuration(get("IDLE_TIMEOUT"), defaultIdleTimeout),
		},
		Backend: BackendConfig{
			BaseURL:  get("BACKEND_URL"),
			Timeout:  parseDuration(get("BACKEND_TIMEOUT"), defaultBackendTimeout),
			Currency: defaultString(strings.ToUpper(get("CURRENCY")), defaultCurrency),
		},
		Session: SessionConfig{
			CookieName:    defaultString(get("SESSION_COOKIE"), defaultSessionCookie),
			TTL:           parseDuration(get("SESSION_TTL"), defaultSessionTTL),
			SweepInterval: parseDuration(get("SESSION_SWEEP_INTERVAL"), time.Hour),
		},
		Content: ContentConfig{
			Dir: defaultString(get("CONTENT_DIR"), defaultContentDir),
		},
		Features: FeatureFlags{
			EnableBundles:    parseBool(get("FEATURE_BUNDLES"), true),
			EnablePromoCodes: parseBool(get("FEATURE_PROMO_CODES"), true),
			EnableAdminPanel: parseBool(get("FEATURE_ADMIN_PANEL"), true),
		},
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validate(cfg Config) error {
	var missing []string

	if strings.TrimSpace(cfg.Backend.BaseURL) == "" {
		missing = append(missing, "Backend.BaseURL")
	}
	if cfg.Backend.Timeout <= 0 {
		missing = append(missing, "Backend.Timeout")
	}
	if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		missing = append(missing, "Server.Port")
	}
	if cfg.Session.TTL <= 0 {
		missing = append(missing, "Session.TTL")
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return &ValidationError{fields: missing}
	}
	return nil
}

func readEnvFile(path string) (map[string]string, error) {
	values := make(map[string]string)
	if strings.TrimSpace(path) == "" {
		return values, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, fmt.Errorf("open env file %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}

	return values, nil
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
		return parsed
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}

func parseBool(value string, fallback bool) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
