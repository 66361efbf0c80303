package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/openquest/questlog/config"
	"github.com/openquest/questlog/internal/adapters/devauth"
	"github.com/openquest/questlog/internal/adapters/google"
	"github.com/openquest/questlog/internal/adapters/jwtcodec"
	"github.com/openquest/questlog/internal/adapters/ratelimit"
	"github.com/openquest/questlog/internal/ports"
)

// BuildTokenCodec creates the JWT codec from token configuration.
func BuildTokenCodec(cfg config.TokenConfig) (*jwtcodec.Codec, error) {
	codec, err := jwtcodec.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("build token codec: %w", err)
	}
	return codec, nil
}

// BuildIdentityProvider selects the federated login provider.
//
// Google OIDC is used when fully configured. In development mode an
// unconfigured Google client falls back to the local dev provider so the
// whole flow stays exercisable without credentials. In production an
// unconfigured client disables Google sign-in (nil provider).
//
//nolint:ireturn // provider selection happens at runtime.
func BuildIdentityProvider(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (ports.IdentityProvider, error) {
	if cfg.Auth.GoogleEnabled() {
		prov, err := google.NewProvider(ctx, cfg.Auth.Google, nil)
		if err != nil {
			return nil, fmt.Errorf("build google provider: %w", err)
		}
		if logger != nil {
			logger.Info("google sign-in enabled", "issuer", cfg.Auth.Google.IssuerURL)
		}
		return prov, nil
	}

	if cfg.IsDev {
		prov, err := devauth.NewProvider(devauth.Config{
			Subject: "dev-sub-1",
			Email:   "dev.user@example.com",
			Name:    "Dev User",
		})
		if err != nil {
			return nil, fmt.Errorf("build dev auth provider: %w", err)
		}
		if logger != nil {
			logger.Warn("google sign-in not configured, using local dev provider")
		}
		return prov, nil
	}

	if logger != nil {
		logger.Info("google sign-in disabled: client not configured")
	}
	return nil, nil
}

// BuildRateLimiter selects the login attempt limiter. The Redis-backed
// limiter is required when running more than one replica; the in-process
// limiter suffices for a single instance.
//
//nolint:ireturn // limiter selection happens at runtime.
func BuildRateLimiter(cfg config.RateLimitConfig, redisClient redis.UniversalClient, logger *slog.Logger) ports.RateLimiter {
	if cfg.UseRedis && redisClient != nil {
		if logger != nil {
			logger.Info("using redis rate limiter",
				"max_attempts", cfg.MaxAttempts,
				"window", cfg.Window,
			)
		}
		return ratelimit.NewRedisLimiter(redisClient, cfg.MaxAttempts, cfg.Window)
	}

	if cfg.UseRedis && redisClient == nil && logger != nil {
		logger.Warn("redis rate limiter requested but redis unavailable, using in-process limiter")
	}
	return ratelimit.NewMemoryLimiter(cfg.MaxAttempts, cfg.Window)
}
