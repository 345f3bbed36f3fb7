package models

import "time"

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// SalesInvoice - Satış faturası. Silme işlemi arşivlemedir (is_deleted + zorunlu
// gerekçe) ve kalemlerin stoğu aynı transaction içinde geri yüklenir.
type SalesInvoice struct {
	ID                  uint  `gorm:"primaryKey"`
	BranchID            *uint `gorm:"index"`
	Branch              *Branch
	TotalBeforeDiscount float64      `gorm:"not null"`
	DiscountType        DiscountType `gorm:"size:20;not null;default:percentage"`
	DiscountValue       float64      `gorm:"not null;default:0"`
	NetTotal            float64      `gorm:"not null"`
	CustomerName        string       `gorm:"size:100"`
	CustomerPhone       string       `gorm:"size:50"`
	Notes               string       `gorm:"size:500"`
	CreatedBy           uint
	CreatorUsername     string `gorm:"size:20"` // Denormalize kullanıcı adı
	IsDeleted           bool   `gorm:"not null;default:false;index"`
	DeletionReason      string `gorm:"size:255"`
	DeletionTime        *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time

	Items []SalesInvoiceItem `gorm:"foreignKey:SalesInvoiceID;constraint:OnDelete:CASCADE"`
}

type SalesInvoiceItem struct {
	ID             uint `gorm:"primaryKey"`
	SalesInvoiceID uint `gorm:"index;not null"`
	ProductID      uint `gorm:"index;not null"`
	Name           string  `gorm:"size:100;not null"`
	Quantity       int     `gorm:"not null"`
	UnitPrice      float64 `gorm:"not null"`
	Subtotal       float64 `gorm:"not null"`
}
