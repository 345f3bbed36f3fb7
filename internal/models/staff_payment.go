package models

import "time"

// StaffPaymentType - Personel ödeme tipi
type StaffPaymentType string

const (
	StaffPaymentSalary    StaffPaymentType = "salary"    // Maaş
	StaffPaymentBonus     StaffPaymentType = "bonus"     // Prim/ikramiye
	StaffPaymentAdvance   StaffPaymentType = "advance"   // Avans
	StaffPaymentDeduction StaffPaymentType = "deduction" // Kesinti (kasadan para çıkmaz)
)

type StaffPayment struct {
	ID          uint `gorm:"primaryKey"`
	UserID      uint `gorm:"index;not null"`
	User        User
	BranchID    *uint `gorm:"index"`
	PaymentType StaffPaymentType `gorm:"size:20;not null"`
	Amount      float64          `gorm:"not null"`
	PaymentDate time.Time        `gorm:"index;not null"`
	Notes       string           `gorm:"size:500"`
	CreatedBy   uint
	CreatedAt   time.Time
}
