package httpx

import (
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/openquest/questlog/internal/domain/auth"
	"github.com/openquest/questlog/internal/observability/statsd"
	"github.com/openquest/questlog/internal/ports"
	"github.com/openquest/questlog/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth        AuthServiceInterface
	Resolver    UserResolver
	Codec       ports.TokenCodec
	Limiter     ports.RateLimiter
	Quests      *service.QuestService
	Profile     *service.ProfileService
	Leaderboard *service.LeaderboardService
	Stats       *service.StatsService

	CookieDomain      string
	GoogleRedirectURL string
	RefreshTTL        time.Duration

	// StaticFS serves the embedded front end when non-nil.
	StaticFS fs.FS

	Logger  *slog.Logger
	Metrics statsd.Sink
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	authHandlers := &AuthHandlers{
		Svc:               services.Auth,
		CookieDomain:      services.CookieDomain,
		GoogleRedirectURL: services.GoogleRedirectURL,
		RefreshTTL:        services.RefreshTTL,
		Logger:            logger,
	}
	questHandlers := &QuestHandlers{Svc: services.Quests}
	profileHandlers := &ProfileHandlers{Svc: services.Profile}
	publicHandlers := &PublicHandlers{Leaderboard: services.Leaderboard}

	requireAuth := RequireAuth(services.Codec, services.Resolver)
	limited := func(h http.HandlerFunc) http.Handler {
		if services.Limiter == nil {
			return h
		}
		return RateLimit(services.Limiter, logger)(h)
	}

	// Credential endpoints sit behind the rate limiter; every attempt
	// counts regardless of outcome.
	mux.Handle("POST /register", limited(authHandlers.Register))
	mux.Handle("POST /login", limited(authHandlers.Login))
	mux.Handle("GET /auth/google", http.HandlerFunc(authHandlers.GoogleBegin))
	mux.Handle("GET /auth/google/callback", http.HandlerFunc(authHandlers.GoogleCallback))
	mux.Handle("POST /refresh_token", http.HandlerFunc(authHandlers.Refresh))
	mux.Handle("POST /logout", http.HandlerFunc(authHandlers.Logout))

	mux.Handle("GET /quests", requireAuth(http.HandlerFunc(questHandlers.List)))
	mux.Handle("POST /quests/{id}/complete", requireAuth(http.HandlerFunc(questHandlers.Complete)))
	mux.Handle("GET /profile", requireAuth(http.HandlerFunc(profileHandlers.Get)))
	mux.Handle("PUT /profile", requireAuth(http.HandlerFunc(profileHandlers.Update)))

	mux.Handle("GET /leaderboard", http.HandlerFunc(publicHandlers.GetLeaderboard))
	mux.Handle("GET /badges", http.HandlerFunc(publicHandlers.GetBadges))

	if services.Stats != nil {
		statsHandlers := &StatsHandlers{Svc: services.Stats}
		mux.Handle("GET /admin/stats",
			requireAuth(RequireRole(domainauth.RoleAdmin)(http.HandlerFunc(statsHandlers.Get))))
	}

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	if services.StaticFS != nil {
		mux.Handle("GET /", http.FileServerFS(services.StaticFS))
	}

	return Recover(logger)(Logging(logger, services.Metrics)(mux))
}
