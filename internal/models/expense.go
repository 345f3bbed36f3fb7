package models

import "time"

type Expense struct {
	ID          uint  `gorm:"primaryKey"`
	BranchID    *uint `gorm:"index"`
	Branch      *Branch
	Description string  `gorm:"size:255;not null"`
	Category    string  `gorm:"size:100;not null"`
	Amount      float64 `gorm:"not null"`
	CreatedBy   uint
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
