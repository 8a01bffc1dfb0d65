package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Receipt is the single proof of full payment for a completed repair.
type Receipt struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	RepairID      uint            `gorm:"uniqueIndex;not null" json:"repair_id"`
	ReceiptNumber string          `gorm:"size:20;uniqueIndex;not null" json:"receipt_number"`
	Year          int             `gorm:"index;not null" json:"year"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount_paid"`
	IssuedAt      time.Time       `gorm:"not null" json:"issued_at"`
}

// ReceiptSequence holds the last receipt number handed out for a year.
type ReceiptSequence struct {
	Year      int `gorm:"primaryKey;autoIncrement:false"`
	LastValue int `gorm:"not null"`
}

// FormatReceiptNumber renders REC-YYYY-NNNN.
func FormatReceiptNumber(year, seq int) string {
	return fmt.Sprintf("REC-%d-%04d", year, seq)
}
