package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	domainauth "github.com/openquest/questlog/internal/domain/auth"
	"github.com/openquest/questlog/internal/domain/model"
	apperrors "github.com/openquest/questlog/internal/errors"
	"github.com/openquest/questlog/internal/observability/statsd"
	"github.com/openquest/questlog/internal/ports"
)

// UserResolver loads the current user for a verified token subject.
// Implemented by service.AuthService.
type UserResolver interface {
	ResolveUser(ctx context.Context, userID string) (model.User, error)
}

// Logging returns a middleware that logs HTTP requests and responses.
// When metrics is non-nil it also emits a request timing.
func Logging(logger *slog.Logger, metrics statsd.Sink) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
			if metrics != nil {
				metrics.Timing("http.request", time.Since(start), map[string]string{"method": r.Method})
			}
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth returns a middleware that requires a valid Bearer access
// token. The user is re-resolved from the store on every request so the
// context always carries the current role, not the one minted into the
// token. Responses follow the original wire messages.
func RequireAuth(codec ports.TokenCodec, resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				RenderError(w, apperrors.Unauthenticated("No token"))
				return
			}

			parts := strings.Split(header, " ")
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				RenderError(w, apperrors.Unauthenticated("Token malformed"))
				return
			}

			claims, err := codec.VerifyAccessToken(parts[1])
			if err != nil {
				if errors.Is(err, ports.ErrTokenExpired) {
					RenderError(w, apperrors.Unauthenticated("Token expired"))
					return
				}
				RenderError(w, apperrors.Unauthenticated("Token malformed"))
				return
			}

			user, err := resolver.ResolveUser(r.Context(), claims.UserID)
			if err != nil {
				RenderError(w, err)
				return
			}

			ctx := SetUserInContext(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole returns a middleware that requires the context user to hold
// the given role. Must run after RequireAuth. Pure check, no side effects.
func RequireRole(role domainauth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUserFromContext(r.Context())
			if !ok || user.Role == "" {
				RenderError(w, apperrors.Forbidden("No role"))
				return
			}
			if user.Role != role {
				RenderError(w, apperrors.Forbidden("Requires "+roleLabel(role)+" role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func roleLabel(role domainauth.Role) string {
	s := string(role)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// RateLimit returns a middleware that bounds attempts per client IP.
// Limiter errors fail open: an unavailable limiter backend must not take
// down login.
func RateLimit(limiter ports.RateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, err := limiter.Allow(r.Context(), ClientIP(r))
			if err != nil {
				logger.Warn("rate limiter unavailable", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}
			if !decision.Allowed {
				RenderError(w, apperrors.RateLimited(
					"Too many attempts, please try again later", decision.RetryAfter))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the originating client IP, preferring the first
// X-Forwarded-For hop when present.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx != -1 {
			fwd = fwd[:idx]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
