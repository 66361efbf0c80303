package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/openquest/questlog/config"
	"github.com/openquest/questlog/internal/adapters/jwtcodec"
	"github.com/openquest/questlog/internal/data"
	"github.com/openquest/questlog/internal/observability/statsd"
	"github.com/openquest/questlog/internal/ports"
	"github.com/openquest/questlog/internal/service"
)

// ServiceContainer holds the application services and the shared
// infrastructure they were built from.
type ServiceContainer struct {
	Auth        *service.AuthService
	Quests      *service.QuestService
	Profile     *service.ProfileService
	Leaderboard *service.LeaderboardService
	Stats       *service.StatsService

	Codec   *jwtcodec.Codec
	Limiter ports.RateLimiter
	Metrics *statsd.Client
}

// ServicesConfig contains dependencies for building the service container.
type ServicesConfig struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildServices wires repositories, adapters, and services together.
func BuildServices(ctx context.Context, cfg ServicesConfig) (*ServiceContainer, error) {
	if cfg.Config == nil {
		return nil, fmt.Errorf("build services: config is required")
	}
	if cfg.DB == nil {
		return nil, fmt.Errorf("build services: database is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics, err := BuildMetricsClient(cfg.Config.Observability, logger)
	if err != nil {
		return nil, err
	}

	codec, err := BuildTokenCodec(cfg.Config.Auth.Tokens)
	if err != nil {
		return nil, err
	}

	provider, err := BuildIdentityProvider(ctx, cfg.Config, logger)
	if err != nil {
		return nil, err
	}

	encryptor := CreateEncryptor(cfg.Config.BioEncryptionKey, logger)

	users := data.NewUserRepo(cfg.DB, encryptor)
	quests := data.NewQuestRepo(cfg.DB)
	badges := data.NewBadgeRepo(cfg.DB)

	limiter := BuildRateLimiter(cfg.Config.Auth.RateLimit, cfg.RedisClient, logger)

	return &ServiceContainer{
		Auth: service.NewAuthService(service.AuthServiceOptions{
			Users:    users,
			Codec:    codec,
			Provider: provider,
			Metrics:  metrics,
		}),
		Quests: service.NewQuestService(service.QuestServiceOptions{
			Quests:  quests,
			Users:   users,
			Badges:  badges,
			Metrics: metrics,
		}),
		Profile:     service.NewProfileService(users),
		Leaderboard: service.NewLeaderboardService(users, badges),
		Stats:       service.NewStatsService(users, quests),
		Codec:       codec,
		Limiter:     limiter,
		Metrics:     metrics,
	}, nil
}

// BuildMetricsClient dials the StatsD sink when metrics are enabled.
// A disabled client is still returned so callers can pass it around
// without nil checks.
func BuildMetricsClient(cfg config.ObservabilityConfig, logger *slog.Logger) (*statsd.Client, error) {
	client, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Metrics.IsEnabled(),
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  cfg.Metrics.Prefix,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build metrics client: %w", err)
	}

	if client.Enabled() && logger != nil {
		logger.Info("statsd metrics enabled",
			"address", cfg.Metrics.StatsdAddress,
			"prefix", cfg.Metrics.Prefix,
		)
	}

	return client, nil
}
