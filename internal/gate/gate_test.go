package gate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/diewo77/go-repairs/internal/gate"
)

// assignedJob is a resource carrying the id of the user it belongs to.
type assignedJob struct{ assignee uint }

// assigneePolicy lets super admins through and otherwise requires the job
// to belong to the actor.
type assigneePolicy struct{}

func (assigneePolicy) Can(_ context.Context, a gate.Actor, _ gate.Action, resource any) bool {
	job, ok := resource.(*assignedJob)
	return a.IsSuperAdmin() || (ok && job.assignee == a.UserID)
}

func newTestGate() *gate.Gate[uint] {
	r := gate.NewStaticResolver[uint]()
	r.Set(1, gate.NewStaticProfile(1, "technician", "repair:view", "repair:work"))
	r.Set(2, gate.NewStaticProfile(2, "admin", gate.PermissionSuperAdmin))
	return gate.NewGate[uint](r)
}

func TestGate_CanProfile(t *testing.T) {
	g := newTestGate()
	ctx := context.Background()

	tests := []struct {
		name     string
		user     uint
		action   gate.Action
		resource string
		want     bool
	}{
		{"admin wildcard", 2, gate.ActionDelete, "repair_log", true},
		{"technician holds work", 1, gate.ActionWork, "repair", true},
		{"technician lacks assign", 1, gate.ActionAssign, "repair", false},
		{"zero user", 0, gate.ActionView, "repair", false},
		{"no profile", 42, gate.ActionView, "repair", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.CanProfile(ctx, tt.user, tt.action, tt.resource); got != tt.want {
				t.Errorf("CanProfile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestActorGate_Authorize(t *testing.T) {
	g := gate.NewActorGate()
	g.Register("repair", assigneePolicy{})
	ctx := context.Background()
	tech := gate.NewActor(1, gate.NewStaticProfile(1, "technician", "repair:work"))
	admin := gate.NewActor(2, gate.NewStaticProfile(2, "admin", gate.PermissionSuperAdmin))

	if err := g.Authorize(ctx, gate.Actor{}, gate.ActionWork, "repair", nil); !errors.Is(err, gate.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for empty actor, got %v", err)
	}
	if err := g.Authorize(ctx, tech, gate.ActionWork, "repair", nil); err != nil {
		t.Errorf("expected nil without resource, got %v", err)
	}
	if err := g.Authorize(ctx, tech, gate.ActionWork, "repair", &assignedJob{assignee: 1}); err != nil {
		t.Errorf("expected assigned technician to pass, got %v", err)
	}
	if err := g.Authorize(ctx, tech, gate.ActionWork, "repair", &assignedJob{assignee: 5}); !errors.Is(err, gate.ErrUnauthorized) {
		t.Errorf("expected refusal on foreign job, got %v", err)
	}
	if err := g.Authorize(ctx, tech, gate.ActionCreate, "payment", nil); !errors.Is(err, gate.ErrUnauthorized) {
		t.Errorf("expected missing permission, got %v", err)
	}
	if err := g.Authorize(ctx, admin, gate.ActionWork, "repair", &assignedJob{assignee: 5}); err != nil {
		t.Errorf("admin should bypass assignment, got %v", err)
	}
}

func TestActorContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := gate.ActorFromContext(ctx); ok {
		t.Error("expected no actor in empty context")
	}
	a := gate.NewActor(4, gate.NewStaticProfile(1, "staff", "shop:staff"))
	got, ok := gate.ActorFromContext(gate.WithActor(ctx, a))
	if !ok || got.UserID != 4 {
		t.Errorf("expected actor 4, got %+v (ok=%v)", got, ok)
	}
}
