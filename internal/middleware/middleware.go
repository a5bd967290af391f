// Package middleware provides HTTP middleware for the CivicDesk server.
package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/DeepakPatel004/CivicDesk/internal/access"
	"github.com/DeepakPatel004/CivicDesk/internal/apperr"
	"github.com/DeepakPatel004/CivicDesk/internal/auth"
	"github.com/DeepakPatel004/CivicDesk/internal/metrics"
	"github.com/DeepakPatel004/CivicDesk/internal/ratelimit"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ctxKey int

const (
	citizenKey ctxKey = iota
	actorKey
)

// StructuredLogger returns a middleware that logs HTTP requests with zap
func StructuredLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			logger.Info("HTTP Request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.statusCode),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", chimw.GetReqID(r.Context())),
				zap.String("remote_ip", clientIP(r)),
			)
		})
	}
}

// SecurityHeaders sets conservative response headers on every reply.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer")
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCitizen admits requests bearing a valid citizen token and stores
// the citizen id in the request context.
func RequireCitizen(tokens *auth.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := auth.ExtractBearer(r.Header.Get("Authorization"))
			if err != nil {
				WriteError(w, apperr.Unauthenticated("No token, authorization denied."))
				return
			}
			id, err := tokens.VerifyCitizen(raw)
			if err != nil {
				WriteError(w, apperr.Unauthenticated("Token is not valid."))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), citizenKey, id)))
		})
	}
}

// RequireEmployee admits requests bearing a valid employee token and stores
// the resulting access.Actor in the request context.
func RequireEmployee(tokens *auth.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := auth.ExtractBearer(r.Header.Get("Authorization"))
			if err != nil {
				WriteError(w, apperr.Unauthenticated("No token, authorization denied."))
				return
			}
			claims, err := tokens.VerifyEmployee(raw)
			if err != nil {
				WriteError(w, apperr.Unauthenticated("Token is not valid."))
				return
			}
			actor, err := access.FromClaims(claims)
			if err != nil {
				WriteError(w, apperr.Unauthenticated("Token is not valid."))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
		})
	}
}

// RequireSuperAdmin must run after RequireEmployee.
func RequireSuperAdmin(authz *access.Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r.Context())
			if !ok {
				WriteError(w, apperr.Unauthenticated("No token, authorization denied."))
				return
			}
			if err := authz.RequireSuperAdmin(actor); err != nil {
				WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CitizenID returns the authenticated citizen set by RequireCitizen.
func CitizenID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(citizenKey).(uuid.UUID)
	return id, ok
}

// ActorFrom returns the authenticated employee set by RequireEmployee.
func ActorFrom(ctx context.Context) (access.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(access.Actor)
	return actor, ok
}

// WithCitizen and WithActor seed the context the way the auth middleware
// does; handler tests use them.
func WithCitizen(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, citizenKey, id)
}

func WithActor(ctx context.Context, actor access.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// RateLimit rejects clients that exceed the limiter's budget. Clients are
// keyed by IP, so it must run after chimw.RealIP. Limiter errors let the
// request through.
func RateLimit(limiter ratelimit.Limiter, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				logger.Warnw("Rate limiter unavailable", "error", err)
				ok = true
			}
			if !ok {
				metrics.ObserveThrottled()
				w.Header().Set("Retry-After", strconv.Itoa(60))
				WriteError(w, apperr.RateLimited("Too many requests. Please slow down."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteError writes err as the JSON error envelope with its mapped status.
func WriteError(w http.ResponseWriter, err error) {
	appErr := apperr.As(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.HTTPStatus(appErr.Kind))
	json.NewEncoder(w).Encode(appErr.Body())
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
