package models

import "time"

type TreasuryLogType string

const (
	TreasuryIn  TreasuryLogType = "in"
	TreasuryOut TreasuryLogType = "out"
)

// Kasa hareketi kaynakları
const (
	TreasurySourceSale           = "sale"
	TreasurySourceExpense        = "expense"
	TreasurySourcePurchaseReturn = "purchase_return"
	TreasurySourceSalesReturn    = "sales_return"
	TreasurySourceStaffPayment   = "staff_payment"
	TreasurySourceManual         = "manual"
)

// TreasuryLog - Şube bazlı kasa defteri. Bakiye her istekte tüm kayıtlar
// üzerinden yeniden hesaplanır (in toplamı - out toplamı), ara toplam tutulmaz.
type TreasuryLog struct {
	ID          uint `gorm:"primaryKey"`
	BranchID    uint `gorm:"index;not null"`
	Branch      Branch
	Type        TreasuryLogType `gorm:"size:10;not null;index"`
	Source      string          `gorm:"size:30;not null;index"`
	ReferenceID string          `gorm:"size:64;index"` // Kaynak kaydın id'si veya manuel girişte uuid
	Amount      float64         `gorm:"not null"`
	Notes       string          `gorm:"size:500"`
	CreatedBy   uint
	CreatedAt   time.Time
}
