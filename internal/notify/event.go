package notify

import (
	"fmt"

	"github.com/diewo77/go-repairs/internal/gate"
	"github.com/diewo77/go-repairs/internal/models"
	"github.com/shopspring/decimal"
)

// Event describes one notification to fan out. Recipients are either listed
// explicitly or resolved from Audience at delivery time.
type Event struct {
	Type       models.NotificationType
	RepairID   *uint
	Recipients []uint
	Audience   gate.Permission
	Title      string
	Message    string
}

func repairRef(r *models.RepairTransaction) *uint {
	id := r.ID
	return &id
}

// Assigned targets the technician a repair was (re)assigned to.
func Assigned(r *models.RepairTransaction, technicianID uint) Event {
	return Event{
		Type:       models.NotificationAssigned,
		RepairID:   repairRef(r),
		Recipients: []uint{technicianID},
		Title:      "New repair assigned",
		Message:    fmt.Sprintf("Repair %s has been assigned to you.", r.Code),
	}
}

// Completed targets every user holding audience.
func Completed(r *models.RepairTransaction, audience gate.Permission) Event {
	return Event{
		Type:     models.NotificationCompleted,
		RepairID: repairRef(r),
		Audience: audience,
		Title:    "Repair completed",
		Message:  fmt.Sprintf("Repair %s is completed and ready for collection.", r.Code),
	}
}

// PaymentPending targets the completion audience when nothing was paid yet.
func PaymentPending(r *models.RepairTransaction, audience gate.Permission, due decimal.Decimal) Event {
	return Event{
		Type:     models.NotificationPaymentPending,
		RepairID: repairRef(r),
		Audience: audience,
		Title:    "Payment pending",
		Message:  fmt.Sprintf("Repair %s was completed without payment. Amount due: %s.", r.Code, due.StringFixed(2)),
	}
}

// PaymentReceived targets audience after a payment was recorded.
func PaymentReceived(r *models.RepairTransaction, audience gate.Permission, amount, due decimal.Decimal) Event {
	return Event{
		Type:     models.NotificationPaymentReceived,
		RepairID: repairRef(r),
		Audience: audience,
		Title:    "Payment received",
		Message: fmt.Sprintf("Payment of %s received for repair %s. Remaining: %s.",
			amount.StringFixed(2), r.Code, due.StringFixed(2)),
	}
}
