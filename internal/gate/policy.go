package gate

import "context"

// Policy defines authorization rules for a resource type.
// U is the subject the policy judges; the core uses Actor.
type Policy[U any] interface {
	// Can returns true if user is authorized to perform action on resource.
	// For list/create, resource may be nil (context-only check).
	Can(ctx context.Context, user U, action Action, resource any) bool
}
