package policy

import (
	"context"

	"github.com/diewo77/go-repairs/internal/gate"
)

// Assignable is implemented by resources worked on by one technician.
type Assignable interface {
	AssignedTechnician() uint
}

// AssignmentPolicy allows an actor to touch a resource only when it is
// assigned to them.
type AssignmentPolicy struct{}

// NewAssignmentPolicy creates a new assignment policy.
func NewAssignmentPolicy() *AssignmentPolicy {
	return &AssignmentPolicy{}
}

// Can checks that the resource is assigned to the actor. Resources that do
// not implement Assignable are refused.
func (p *AssignmentPolicy) Can(_ context.Context, actor gate.Actor, _ gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	assignable, ok := resource.(Assignable)
	if !ok {
		return false
	}
	return assignable.AssignedTechnician() == actor.UserID
}

// StaffBypassPolicy wraps another policy and lets staff and admins through.
// Only technician-only actors are held to the inner policy.
type StaffBypassPolicy struct {
	inner gate.Policy[gate.Actor]
}

// NewStaffBypassPolicy wraps inner.
func NewStaffBypassPolicy(inner gate.Policy[gate.Actor]) *StaffBypassPolicy {
	return &StaffBypassPolicy{inner: inner}
}

func (p *StaffBypassPolicy) Can(ctx context.Context, actor gate.Actor, action gate.Action, resource any) bool {
	if !IsTechnicianOnly(actor) {
		return true
	}
	return p.inner.Can(ctx, actor, action, resource)
}

// NewRepairGate returns the gate used by the core services: repairs and
// their cost logs are restricted to the assigned technician unless the
// actor is staff.
func NewRepairGate() *gate.ActorGate {
	g := gate.NewActorGate()
	assigned := NewStaffBypassPolicy(NewAssignmentPolicy())
	g.Register(ResourceRepair, assigned)
	g.Register(ResourceRepairLog, assigned)
	return g
}
