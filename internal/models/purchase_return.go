package models

import "time"

// RefundMethod - Alım iadesinin mali karşılığı
type RefundMethod string

const (
	RefundMethodCash          RefundMethod = "cash"           // Nakit iade
	RefundMethodDebtDeduction RefundMethod = "debt_deduction" // Borçtan düşme
)

// PurchaseReturn - Tedarikçiye mal iadesi. Stok her kalem için düşülür;
// mali taraf iki yoldan TAM OLARAK BİRİNE gider:
//   - debt_deduction veya (cash + para henüz alınmadı): tedarikçi borcu azalır
//   - cash + para alındı: kasaya "in" kaydı atılır, borç değişmez
type PurchaseReturn struct {
	ID                 uint `gorm:"primaryKey"`
	BranchID           uint `gorm:"index;not null"`
	Branch             Branch
	OriginalPurchaseID uint `gorm:"index;not null"`
	SupplierID         uint `gorm:"index;not null"`
	Supplier           Supplier
	TotalRefund        float64      `gorm:"not null"`
	RefundMethod       RefundMethod `gorm:"size:20;not null"`
	IsMoneyReceived    bool         `gorm:"not null;default:false"`
	Notes              string       `gorm:"size:500"`
	CreatedBy          uint
	CreatedAt          time.Time

	Items []PurchaseReturnItem `gorm:"foreignKey:PurchaseReturnID;constraint:OnDelete:CASCADE"`
}

type PurchaseReturnItem struct {
	ID               uint `gorm:"primaryKey"`
	PurchaseReturnID uint `gorm:"index;not null"`
	ProductID        uint `gorm:"index;not null"`
	Name             string  `gorm:"size:100;not null"`
	Quantity         int     `gorm:"not null"`
	CostPrice        float64 `gorm:"not null"`
	Subtotal         float64 `gorm:"not null"`
}
