package models

import "time"

type UserRole string

const (
	RoleAdmin          UserRole = "admin"
	RoleGeneralManager UserRole = "general_manager"
	RoleITSupport      UserRole = "it_support"
	RoleSupervisor     UserRole = "supervisor"
	RoleEmployee       UserRole = "employee"
)

// IsHeadOffice - Merkez rolleri tüm şubeleri görür, diğerleri sadece kendi şubesini.
// Şube izolasyonunun tek kaynağı bu fonksiyondur.
func (r UserRole) IsHeadOffice() bool {
	return r == RoleAdmin || r == RoleGeneralManager || r == RoleITSupport
}

type User struct {
	ID           uint `gorm:"primaryKey"`
	BranchID     *uint
	Branch       *Branch
	Username     string   `gorm:"size:20;uniqueIndex;not null"` // Otomatik üretilir: A-/S-/E- + 6 hane
	FullName     string   `gorm:"size:100;not null"`
	PhoneNumber  string   `gorm:"size:50"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	Salary       float64  `gorm:"not null;default:0"`
	BirthDate    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
