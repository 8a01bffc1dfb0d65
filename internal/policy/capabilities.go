package policy

import "github.com/diewo77/go-repairs/internal/gate"

// Resource types used in permissions.
const (
	ResourceRepair    = "repair"
	ResourceRepairLog = "repair_log"
	ResourcePayment   = "payment"
	ResourceReceipt   = "receipt"
	ResourceGadget    = "gadget"
	ResourceShop      = "shop"
	ResourceReport    = "report"
	ResourceUser      = "user"
)

// Capability flags that are not plain CRUD.
var (
	// PermStaff marks front-desk and managing staff. Staff receive completion
	// notifications and see every notification addressed to them.
	PermStaff = gate.NewPermission(ResourceShop, "staff")
	// PermTechnician marks users who perform repairs.
	PermTechnician = gate.NewPermission(ResourceRepair, gate.ActionWork)
)

// IsStaff reports whether the actor has staff or elevated capability.
func IsStaff(a gate.Actor) bool {
	return a.Has(PermStaff)
}

// IsTechnicianOnly reports whether the actor works on repairs without any
// staff capability. Such actors are limited to repairs assigned to them.
func IsTechnicianOnly(a gate.Actor) bool {
	return a.Has(PermTechnician) && !IsStaff(a)
}
