package models

import "time"

// SalesReturn - Müşteri iadesi. Kalemler stoğa geri eklenir, nakit iade edildiyse
// kasaya "out" kaydı atılır.
type SalesReturn struct {
	ID          uint  `gorm:"primaryKey"`
	BranchID    *uint `gorm:"index"`
	Branch      *Branch
	InvoiceID   *uint   `gorm:"index"`
	TotalRefund float64 `gorm:"not null"`
	Notes       string  `gorm:"size:500"`
	CreatedBy   uint
	IsDeleted   bool `gorm:"not null;default:false;index"`
	CreatedAt   time.Time

	Items []SalesReturnItem `gorm:"foreignKey:SalesReturnID;constraint:OnDelete:CASCADE"`
}

type SalesReturnItem struct {
	ID            uint `gorm:"primaryKey"`
	SalesReturnID uint `gorm:"index;not null"`
	ProductID     uint `gorm:"index;not null"`
	Name          string  `gorm:"size:100;not null"`
	Quantity      int     `gorm:"not null"`
	UnitPrice     float64 `gorm:"not null"`
	Subtotal      float64 `gorm:"not null"`
}
