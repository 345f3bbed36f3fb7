package models

import "time"

// PurchasePaymentStatus - Alım faturasının ödeme şekli
type PurchasePaymentStatus string

const (
	PurchaseStatusCash   PurchasePaymentStatus = "cash"   // Nakit (tam ödeme)
	PurchaseStatusCredit PurchasePaymentStatus = "credit" // Veresiye
)

// PurchaseRecord - Tedarikçi alım faturası. RemainingAmount oluşturma anında
// bir kez hesaplanır (total - paid) ve sonraki ödemelerle YENİDEN YAZILMAZ;
// güncel borç tedarikçi toplamlarından okunur.
type PurchaseRecord struct {
	ID                uint `gorm:"primaryKey"`
	BranchID          uint `gorm:"index;not null"`
	Branch            Branch
	SupplierID        uint `gorm:"index;not null"`
	Supplier          Supplier
	SupplierName      string                `gorm:"size:200;not null"` // Denormalize tedarikçi adı
	SupplierInvoiceNo string                `gorm:"size:100;not null"`
	TotalAmount       float64               `gorm:"not null"`
	PaidAmount        float64               `gorm:"not null;default:0"`
	RemainingAmount   float64               `gorm:"not null;default:0"`
	PaymentStatus     PurchasePaymentStatus `gorm:"size:20;not null"`
	Notes             string                `gorm:"size:500"`
	CreatedBy         uint
	IsDeleted         bool `gorm:"not null;default:false;index"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Items []PurchaseItem `gorm:"foreignKey:PurchaseRecordID;constraint:OnDelete:CASCADE"`
}

type PurchaseItem struct {
	ID               uint `gorm:"primaryKey"`
	PurchaseRecordID uint `gorm:"index;not null"`
	ProductID        uint `gorm:"index;not null"`
	Name             string  `gorm:"size:100;not null"` // Denormalize ürün adı
	Quantity         int     `gorm:"not null"`
	CostPrice        float64 `gorm:"not null"`
	RetailPrice      float64 `gorm:"not null;default:0"`
	Subtotal         float64 `gorm:"not null"`
}
