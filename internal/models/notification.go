package models

import "time"

// NotificationType identifies the event a notification reports.
type NotificationType string

const (
	NotificationAssigned        NotificationType = "Assigned"
	NotificationCompleted       NotificationType = "Completed"
	NotificationPaymentReceived NotificationType = "PaymentReceived"
	NotificationPaymentPending  NotificationType = "PaymentPending"
)

// Notification is addressed to one user and optionally linked to a repair.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`
	RecipientID uint             `gorm:"index;not null" json:"recipient_id"`
	RepairID    *uint            `gorm:"index" json:"repair_id,omitempty"`
	Type        NotificationType `gorm:"size:30;not null" json:"type"`
	Title       string           `gorm:"size:200;not null" json:"title"`
	Message     string           `gorm:"type:text" json:"message"`
	IsRead      bool             `gorm:"not null;default:false;index" json:"is_read"`
}
