package models

import "time"

type CorrespondenceKind string

const (
	CorrespondenceMessage      CorrespondenceKind = "message"
	CorrespondenceLeaveRequest CorrespondenceKind = "leave_request"
)

type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusRejected LeaveStatus = "rejected"
)

// Correspondence - Kurum içi yazışma: mesajlar ve izin talepleri tek tabloda.
// İzin talepleri merkez tarafından onaylanır/reddedilir.
type Correspondence struct {
	ID              uint `gorm:"primaryKey"`
	SenderID        uint `gorm:"index;not null"`
	Sender          User `gorm:"foreignKey:SenderID"`
	ReceiverID      *uint `gorm:"index"`
	ParentMessageID *uint `gorm:"index"`
	Kind            CorrespondenceKind `gorm:"size:20;not null;index"`
	Subject         string             `gorm:"size:200;not null"`
	Body            string             `gorm:"size:2000"`
	LeaveStatus     LeaveStatus        `gorm:"size:20;index"` // Sadece izin taleplerinde dolu
	LeaveStart      *time.Time
	LeaveEnd        *time.Time
	IsArchived      bool `gorm:"not null;default:false"`
	IsDeleted       bool `gorm:"not null;default:false"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
