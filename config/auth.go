package config

import "time"

// TokenConfig contains signing secrets and lifetimes for the JWT pair.
// The access and refresh secrets must differ: a leaked access secret
// must not allow forging long-lived refresh tokens.
type TokenConfig struct {
	// AccessSecret signs 15-minute access tokens.
	AccessSecret string `env:"ACCESS_SECRET,required"`

	// RefreshSecret signs 30-day refresh tokens.
	RefreshSecret string `env:"REFRESH_SECRET,required"`

	// AccessTTL is the access token lifetime.
	AccessTTL time.Duration `env:"ACCESS_TTL" envDefault:"15m"`

	// RefreshTTL is the refresh token lifetime.
	RefreshTTL time.Duration `env:"REFRESH_TTL" envDefault:"720h"`
}

// GoogleOAuthConfig contains Google OIDC configuration.
type GoogleOAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL" envDefault:"http://localhost:8080/auth/google/callback"`
	Scope        string `env:"SCOPE"        envDefault:"openid profile email"`
	// IssuerURL is the OIDC issuer used for discovery. Overridable for tests.
	IssuerURL string `env:"ISSUER_URL" envDefault:"https://accounts.google.com"`
}

// RateLimitConfig controls the login/register attempt limiter.
type RateLimitConfig struct {
	// MaxAttempts is the number of attempts allowed per window per client IP.
	MaxAttempts int `env:"MAX_ATTEMPTS" envDefault:"10"`

	// Window is the sliding window size.
	Window time.Duration `env:"WINDOW" envDefault:"15m"`

	// UseRedis selects the Redis-backed limiter instead of the
	// in-process one. Required when running more than one replica.
	UseRedis bool `env:"USE_REDIS" envDefault:"false"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	Tokens TokenConfig `envPrefix:"JWT_"`

	// Google OAuth configuration. Google sign-in is disabled when
	// ClientID or ClientSecret is empty.
	Google GoogleOAuthConfig `envPrefix:"GOOGLE_"`

	RateLimit RateLimitConfig `envPrefix:"AUTH_RATE_"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.Tokens.AccessTTL <= 0 {
		a.Tokens.AccessTTL = 15 * time.Minute
	}
	if a.Tokens.RefreshTTL <= 0 {
		a.Tokens.RefreshTTL = 30 * 24 * time.Hour
	}
	if a.RateLimit.MaxAttempts <= 0 {
		a.RateLimit.MaxAttempts = 10
	}
	if a.RateLimit.Window <= 0 {
		a.RateLimit.Window = 15 * time.Minute
	}
}

// GoogleEnabled reports whether Google sign-in is fully configured.
func (a *AuthConfig) GoogleEnabled() bool {
	return a.Google.ClientID != "" && a.Google.ClientSecret != ""
}
