package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer owns the gadgets brought in for repair.
type Customer struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Phone     string         `gorm:"size:30" json:"phone,omitempty"`
	Email     string         `gorm:"size:255" json:"email,omitempty"`
	Gadgets   []Gadget       `gorm:"foreignKey:CustomerID" json:"gadgets,omitempty"`
}

// Gadget is one customer device.
type Gadget struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	CustomerID   uint           `gorm:"index;not null" json:"customer_id"`
	Customer     *Customer      `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Brand        string         `gorm:"size:100" json:"brand,omitempty"`
	SerialNumber string         `gorm:"size:100" json:"serial_number,omitempty"`
	Description  string         `gorm:"type:text" json:"description,omitempty"`
}
