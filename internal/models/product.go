package models

import "time"

type Product struct {
	ID                uint    `gorm:"primaryKey"`
	BranchID          *uint   `gorm:"index"`
	Branch            *Branch
	Code              string  `gorm:"size:10;index;not null"` // 6 haneli rastgele ürün kodu
	Name              string  `gorm:"size:100;not null"`
	Description       string  `gorm:"size:500"`
	WholesalePrice    float64 `gorm:"not null;default:0"` // Toptan (maliyet) fiyatı
	RetailPrice       float64 `gorm:"not null;default:0"` // Satış fiyatı
	Stock             int     `gorm:"not null;default:0"`
	LowStockThreshold int     `gorm:"not null;default:5"`
	IsDeleted         bool    `gorm:"not null;default:false;index"`
	DeletionReason    string  `gorm:"size:255"`
	DeletionTime      *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
