// Package gate provides capability-based authorization primitives.
// Profiles grant "resource:action" permissions; resource policies add
// per-record rules on top. The package has no dependencies on domain
// models.
//
// Two checkpoints are provided:
//   - Gate[U] resolves the subject's profile on every call and suits the
//     HTTP boundary where only a user id is known. It checks permissions
//     only.
//   - ActorGate works on an Actor whose profile was resolved once and is
//     passed explicitly into every core operation. Resource policies are
//     registered here.
package gate

import "context"

// Gate checks profile permissions for a user id.
type Gate[U comparable] struct {
	resolver ProfileResolver[U]
}

// NewGate creates a gate with the given profile resolver.
func NewGate[U comparable](resolver ProfileResolver[U]) *Gate[U] {
	return &Gate[U]{resolver: resolver}
}

// CanProfile reports whether the user's profile holds resourceType:action.
// A zero user or a missing profile is refused.
func (g *Gate[U]) CanProfile(ctx context.Context, user U, action Action, resourceType string) bool {
	var zero U
	if user == zero {
		return false
	}
	profile, err := g.resolver.Resolve(ctx, user)
	if err != nil || profile == nil {
		return false
	}
	return profile.HasPermission(NewPermission(resourceType, action))
}
