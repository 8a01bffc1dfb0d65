package gate

import (
	"context"
	"fmt"
)

// Actor is the authenticated caller of a core operation together with the
// capabilities it was granted when the request entered the system.
type Actor struct {
	UserID  uint
	Profile Profile
}

// NewActor builds an actor from a user id and a resolved profile.
func NewActor(userID uint, profile Profile) Actor {
	return Actor{UserID: userID, Profile: profile}
}

// Valid reports whether the actor identifies a user with a profile.
func (a Actor) Valid() bool {
	return a.UserID != 0 && a.Profile != nil
}

// Has reports whether the actor holds the permission, wildcards included.
func (a Actor) Has(p Permission) bool {
	return a.Valid() && a.Profile.HasPermission(p)
}

// Can is Has for a resource/action pair.
func (a Actor) Can(resourceType string, action Action) bool {
	return a.Has(NewPermission(resourceType, action))
}

// IsSuperAdmin reports whether the actor holds "*:*".
func (a Actor) IsSuperAdmin() bool {
	return a.Has(PermissionSuperAdmin)
}

type actorCtxKey struct{}

// WithActor stores the actor in ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey{}, a)
}

// ActorFromContext extracts the actor stored by WithActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorCtxKey{}).(Actor)
	return a, ok && a.Valid()
}

// ActorGate authorizes pre-resolved actors against profile permissions and
// registered resource policies.
type ActorGate struct {
	policies map[string]Policy[Actor]
}

// NewActorGate creates a gate with no resource policies.
func NewActorGate() *ActorGate {
	return &ActorGate{policies: make(map[string]Policy[Actor])}
}

// Register adds a resource policy, replacing any existing one.
func (g *ActorGate) Register(resourceType string, p Policy[Actor]) {
	g.policies[resourceType] = p
}

// Authorize checks the permission and, when a resource is given, the
// resource policy registered for resourceType. Refusals wrap ErrUnauthorized.
func (g *ActorGate) Authorize(ctx context.Context, actor Actor, action Action, resourceType string, resource any) error {
	if !actor.Valid() {
		return ErrUnauthorized
	}
	perm := NewPermission(resourceType, action)
	if !actor.Has(perm) {
		return fmt.Errorf("%w: missing %s", ErrUnauthorized, perm)
	}
	if resource == nil || g == nil {
		return nil
	}
	if policy, ok := g.policies[resourceType]; ok && !policy.Can(ctx, actor, action, resource) {
		return fmt.Errorf("%w: %s denied by policy", ErrUnauthorized, perm)
	}
	return nil
}
