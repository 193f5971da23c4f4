package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"auth-gate/internal/auth"

	"github.com/joho/godotenv"
)

const (
	ProviderGoogle = "google"
	ProviderOIDC   = "oidc"

	BackendMemory = "memory"
	BackendRedis  = "redis"

	minSecretLen = 32
	devSecret    = "dev-secret-change-me-dev-secret-change-me"
)

type Config struct {
	AppPort string
	GinMode string

	IdentityProvider string

	GoogleClientID     string
	GoogleClientSecret string

	OIDCIssuer        string
	OIDCClientID      string
	OIDCClientSecret  string
	OIDCPublicBaseURL string

	BackendOrigin  string
	FrontendOrigin string

	SessionSecret string
	CookieSecure  bool

	SessionIdleTimeout     time.Duration
	SessionAbsoluteTimeout time.Duration
	LoginAttemptTTL        time.Duration
	ExchangeTimeout        time.Duration

	SessionBackend string
	RedisAddr      string
	RedisPassword  string

	// parse errors from Load, reported by Validate
	invalid []string
}

// Load reads configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables win over it.
func Load() (Config, error) {
	_ = godotenv.Load()

	var invalid []string

	backend := strings.TrimRight(getEnv("BACKEND_ORIGIN", "http://localhost:5000"), "/")

	cfg := Config{
		AppPort: getEnv("APP_PORT", getEnv("PORT", "5000")),
		GinMode: getEnv("GIN_MODE", "debug"),

		IdentityProvider: strings.ToLower(getEnv("IDP_PROVIDER", ProviderGoogle)),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),

		OIDCIssuer:        os.Getenv("OIDC_ISSUER"),
		OIDCClientID:      os.Getenv("OIDC_CLIENT_ID"),
		OIDCClientSecret:  os.Getenv("OIDC_CLIENT_SECRET"),
		OIDCPublicBaseURL: os.Getenv("OIDC_PUBLIC_BASE_URL"),

		BackendOrigin:  backend,
		FrontendOrigin: strings.TrimRight(getEnv("FRONTEND_ORIGIN", "http://localhost:3000"), "/"),

		SessionSecret: os.Getenv("SESSION_SECRET"),
		CookieSecure:  getEnvAsBool("COOKIE_SECURE", strings.HasPrefix(backend, "https://"), &invalid),

		SessionIdleTimeout:     getEnvAsDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute, &invalid),
		SessionAbsoluteTimeout: getEnvAsDuration("SESSION_ABSOLUTE_TIMEOUT", 24*time.Hour, &invalid),
		LoginAttemptTTL:        getEnvAsDuration("LOGIN_ATTEMPT_TTL", 5*time.Minute, &invalid),
		ExchangeTimeout:        getEnvAsDuration("EXCHANGE_TIMEOUT", 10*time.Second, &invalid),

		SessionBackend: strings.ToLower(getEnv("SESSION_BACKEND", BackendMemory)),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
	}
	cfg.invalid = invalid

	if cfg.SessionSecret == "" && !cfg.Release() {
		cfg.SessionSecret = devSecret
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Release reports whether gin runs in release mode.
func (c Config) Release() bool {
	return c.GinMode == "release"
}

// CallbackURL is the redirect URL registered with the provider.
func (c Config) CallbackURL() string {
	return c.BackendOrigin + "/auth/callback"
}

// Validate reports every problem that prevents the gate from serving
// traffic. All errors wrap auth.ErrConfiguration.
func (c Config) Validate() error {
	problems := append([]string(nil), c.invalid...)

	switch c.IdentityProvider {
	case ProviderGoogle:
		if c.GoogleClientID == "" || c.GoogleClientSecret == "" {
			problems = append(problems, "GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set")
		}
	case ProviderOIDC:
		if c.OIDCIssuer == "" || c.OIDCClientID == "" {
			problems = append(problems, "OIDC_ISSUER and OIDC_CLIENT_ID must be set")
		}
	default:
		problems = append(problems, fmt.Sprintf("IDP_PROVIDER %q is not supported", c.IdentityProvider))
	}

	if len(c.SessionSecret) < minSecretLen {
		problems = append(problems, fmt.Sprintf("SESSION_SECRET must be at least %d bytes", minSecretLen))
	}

	for name, origin := range map[string]string{
		"BACKEND_ORIGIN":  c.BackendOrigin,
		"FRONTEND_ORIGIN": c.FrontendOrigin,
	} {
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			problems = append(problems, name+" must be an absolute URL")
		}
	}

	if c.SessionAbsoluteTimeout <= 0 {
		problems = append(problems, "SESSION_ABSOLUTE_TIMEOUT must be positive")
	}
	if c.SessionIdleTimeout < 0 {
		problems = append(problems, "SESSION_IDLE_TIMEOUT must not be negative")
	}
	if c.LoginAttemptTTL <= 0 || c.ExchangeTimeout <= 0 {
		problems = append(problems, "LOGIN_ATTEMPT_TTL and EXCHANGE_TIMEOUT must be positive")
	}

	switch c.SessionBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisAddr == "" {
			problems = append(problems, "REDIS_ADDR must be set for the redis session backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("SESSION_BACKEND %q is not supported", c.SessionBackend))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", auth.ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsBool returns defaultValue only when key is unset. A value
// that does not parse is recorded in invalid.
func getEnvAsBool(key string, defaultValue bool, invalid *[]string) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		*invalid = append(*invalid, fmt.Sprintf("%s: invalid boolean %q", key, raw))
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration, invalid *[]string) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		*invalid = append(*invalid, fmt.Sprintf("%s: invalid duration %q", key, raw))
		return defaultValue
	}
	return value
}
