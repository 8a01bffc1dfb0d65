package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the customer paid.
type PaymentMethod string

const (
	PaymentMethodCash        PaymentMethod = "Cash"
	PaymentMethodMobileMoney PaymentMethod = "MobileMoney"
)

// PaymentMethods lists the accepted methods.
var PaymentMethods = []string{string(PaymentMethodCash), string(PaymentMethodMobileMoney)}

// Payment is an immutable payment event against a repair.
type Payment struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`
	RepairID       uint            `gorm:"index;not null" json:"repair_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method         PaymentMethod   `gorm:"size:20;not null" json:"method"`
	MobileProvider string          `gorm:"size:50" json:"mobile_provider,omitempty"`
	MobileNumber   string          `gorm:"size:30" json:"mobile_number,omitempty"`
	Notes          string          `gorm:"type:text" json:"notes,omitempty"`
	RecordedByID   uint            `gorm:"index;not null" json:"recorded_by_id"`
	RecordedBy     *User           `gorm:"foreignKey:RecordedByID" json:"recorded_by,omitempty"`
}
