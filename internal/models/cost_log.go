package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the scale of every decimal(10,2) money column.
const MoneyPlaces int32 = 2

// CostLog is one diagnosis and price entry of a repair.
type CostLog struct {
	ID                    uint            `gorm:"primaryKey" json:"id"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	RepairID              uint            `gorm:"index;not null" json:"repair_id"`
	Cost                  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"cost"`
	IssueDescription      string          `gorm:"type:text;not null" json:"issue_description"`
	ResolutionDescription string          `gorm:"type:text" json:"resolution_description,omitempty"`
}
