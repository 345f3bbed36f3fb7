package models

import "time"

// Supplier - Tedarikçi. total_debt/total_paid/total_supplied alanları olay bazlı
// (toplu alım, ödeme, iade) değişir ve her zaman transaction içinde
// "total_x = total_x + ?" şeklinde atomik güncellenir.
type Supplier struct {
	ID                 uint    `gorm:"primaryKey"`
	Name               string  `gorm:"size:200;not null"`
	Phone              string  `gorm:"size:50"`
	TaxNumber          string  `gorm:"size:50"`
	CommercialRegister string  `gorm:"size:50"`
	TotalDebt          float64 `gorm:"not null;default:0"` // Pozitif = bizim borcumuz
	TotalPaid          float64 `gorm:"not null;default:0"`
	TotalSupplied      float64 `gorm:"not null;default:0"`
	IsDeleted          bool    `gorm:"not null;default:false;index"`
	DeletionReason     string  `gorm:"size:255"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SupplierPayment - Tedarikçiye yapılan borç ödemesi. Opsiyonel olarak tek bir
// alım faturasına bağlanabilir; fatura üzerindeki remaining_amount alanı
// güncellenmez, sadece tedarikçi toplamları değişir.
type SupplierPayment struct {
	ID               uint `gorm:"primaryKey"`
	SupplierID       uint `gorm:"index;not null"`
	Supplier         Supplier
	PurchaseRecordID *uint `gorm:"index"`
	Amount           float64 `gorm:"not null"`
	Notes            string  `gorm:"size:500"`
	CreatedBy        uint
	CreatedAt        time.Time
}
