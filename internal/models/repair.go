package models

import (
	"time"

	"github.com/diewo77/go-repairs/internal/ledger"
)

// RepairStatus is the lifecycle state of a repair transaction.
type RepairStatus string

const (
	RepairStatusPending    RepairStatus = "Pending"
	RepairStatusInProgress RepairStatus = "In Progress"
	RepairStatusCompleted  RepairStatus = "Completed"
)

// RepairStatuses lists every status in lifecycle order.
var RepairStatuses = []RepairStatus{RepairStatusPending, RepairStatusInProgress, RepairStatusCompleted}

// Valid reports whether s is a known status.
func (s RepairStatus) Valid() bool {
	for _, v := range RepairStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsOpen reports whether the repair is still Pending or In Progress.
func (s RepairStatus) IsOpen() bool {
	return s == RepairStatusPending || s == RepairStatusInProgress
}

// OpenStatuses lists the statuses for which IsOpen holds.
func OpenStatuses() []RepairStatus {
	var open []RepairStatus
	for _, s := range RepairStatuses {
		if s.IsOpen() {
			open = append(open, s)
		}
	}
	return open
}

// RepairTransaction tracks one gadget through intake, work and payment.
type RepairTransaction struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	Code          string       `gorm:"size:20;uniqueIndex;not null" json:"code"`
	Status        RepairStatus `gorm:"size:20;not null;default:'Pending';index" json:"status"`
	GadgetID      uint         `gorm:"index;not null" json:"gadget_id"`
	Gadget        *Gadget      `gorm:"foreignKey:GadgetID" json:"gadget,omitempty"`
	TechnicianID  *uint        `gorm:"index" json:"technician_id,omitempty"`
	Technician    *User        `gorm:"foreignKey:TechnicianID" json:"technician,omitempty"`
	BroughtInDate time.Time    `gorm:"not null;index" json:"brought_in_date"`
	UpdatedAt     time.Time    `gorm:"index" json:"updated_at"`

	CostLogs []CostLog `gorm:"foreignKey:RepairID" json:"cost_logs,omitempty"`
	Payments []Payment `gorm:"foreignKey:RepairID" json:"payments,omitempty"`
	Receipt  *Receipt  `gorm:"foreignKey:RepairID" json:"receipt,omitempty"`
}

// IsCompleted reports whether the repair reached its terminal state.
func (r *RepairTransaction) IsCompleted() bool {
	return r.Status == RepairStatusCompleted
}

// CanEdit returns true while cost logs, status and technician may still change.
func (r *RepairTransaction) CanEdit() bool {
	return !r.IsCompleted()
}

// AssignedTechnician returns the technician id, 0 when unassigned.
func (r *RepairTransaction) AssignedTechnician() uint {
	if r.TechnicianID == nil {
		return 0
	}
	return *r.TechnicianID
}

// Ledger computes the financial view from the loaded cost logs and payments.
// Both collections must be preloaded.
func (r *RepairTransaction) Ledger() ledger.Ledger {
	costs := make([]ledger.Amount, len(r.CostLogs))
	for i, l := range r.CostLogs {
		costs[i] = l.Cost
	}
	paid := make([]ledger.Amount, len(r.Payments))
	for i, p := range r.Payments {
		paid[i] = p.Amount
	}
	return ledger.Compute(costs, paid)
}
