package policy

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/go-repairs/internal/auth"
	"github.com/diewo77/go-repairs/internal/gate"
	"github.com/diewo77/go-repairs/internal/httpx"
	"gorm.io/gorm"
)

// AuthGate is the boundary authorization point. It resolves the caller's
// profile once per request (cached) and hands an explicit gate.Actor to the
// core.
type AuthGate struct {
	Gate          *gate.Gate[uint]
	CacheResolver *gate.CachedResolver[uint]
	Resolver      *DBProfileResolver
}

// NewAuthGate creates a gate backed by the database with a profile cache.
func NewAuthGate(db *gorm.DB, cacheTTL time.Duration) *AuthGate {
	dbResolver := NewDBProfileResolver(db)
	cachedResolver := gate.NewCachedResolver[uint](dbResolver, cacheTTL)
	return &AuthGate{
		Gate:          gate.NewGate[uint](cachedResolver),
		CacheResolver: cachedResolver,
		Resolver:      dbResolver,
	}
}

// Actor resolves the current user into an Actor. It returns
// gate.ErrUnauthorized when there is no user or no profile.
func (ag *AuthGate) Actor(ctx context.Context) (gate.Actor, error) {
	if a, ok := gate.ActorFromContext(ctx); ok {
		return a, nil
	}
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return gate.Actor{}, gate.ErrUnauthorized
	}
	profile, err := ag.CacheResolver.Resolve(ctx, userID)
	if err != nil || profile == nil {
		return gate.Actor{}, gate.ErrUnauthorized
	}
	return gate.NewActor(userID, profile), nil
}

// CanProfile checks only profile permissions.
func (ag *AuthGate) CanProfile(ctx context.Context, action gate.Action, resourceType string) bool {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return false
	}
	return ag.Gate.CanProfile(ctx, userID, action, resourceType)
}

// InvalidateUser clears the cache for a specific user.
func (ag *AuthGate) InvalidateUser(userID uint) {
	ag.CacheResolver.Invalidate(userID)
}

// InvalidateAll clears the entire profile cache.
func (ag *AuthGate) InvalidateAll() {
	ag.CacheResolver.InvalidateAll()
}

// LoadActor resolves the actor and stores it on the request context.
func (ag *AuthGate) LoadActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := ag.Actor(r.Context())
		if err != nil {
			httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(gate.WithActor(r.Context(), actor)))
	})
}

// RequirePermission returns middleware that checks a profile permission.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ag.CanProfile(r.Context(), action, resourceType) {
				httpx.JSONError(w, http.StatusForbidden, "forbidden", map[string]string{
					"required": string(gate.NewPermission(resourceType, action)),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin only lets "*:*" profiles through.
func (ag *AuthGate) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := ag.Actor(r.Context())
			if err != nil || !actor.IsSuperAdmin() {
				httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
