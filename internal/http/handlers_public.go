package httpx

import (
	"net/http"

	"github.com/openquest/questlog/internal/service"
)

// Public cache lifetimes in seconds. The leaderboard moves with play;
// the badge catalog is close to static.
const (
	leaderboardCacheMaxAge = "max-age=600"
	badgesCacheMaxAge      = "max-age=3600"
)

// PublicHandlers provides the unauthenticated read-only endpoints.
type PublicHandlers struct {
	Leaderboard *service.LeaderboardService
}

// GetLeaderboard returns the top players by lifetime XP.
// GET /leaderboard.
func (h *PublicHandlers) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Leaderboard.Top(r.Context())
	if err != nil {
		RenderError(w, err)
		return
	}
	w.Header().Set("Cache-Control", leaderboardCacheMaxAge)
	WriteSuccess(w, http.StatusOK, map[string]any{"leaderboard": entries})
}

// GetBadges returns the full badge catalog.
// GET /badges.
func (h *PublicHandlers) GetBadges(w http.ResponseWriter, r *http.Request) {
	badges, err := h.Leaderboard.Badges(r.Context())
	if err != nil {
		RenderError(w, err)
		return
	}
	w.Header().Set("Cache-Control", badgesCacheMaxAge)
	WriteSuccess(w, http.StatusOK, map[string]any{"badges": badges})
}

// StatsHandlers provides the admin-only stats endpoint.
type StatsHandlers struct {
	Svc *service.StatsService
}

// Get returns system counts.
// GET /admin/stats.
func (h *StatsHandlers) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Collect(r.Context())
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteSuccess(w, http.StatusOK, map[string]any{"stats": stats})
}

// healthHandler reports liveness.
// GET /healthz.
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
