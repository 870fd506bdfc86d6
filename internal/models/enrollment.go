package models

import "time"

// EnrollmentRecord is an append-only ledger row for a completed purchase.
type EnrollmentRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ClassID      uint      `gorm:"not null;uniqueIndex:idx_enrollment_class_student" json:"class_id"`
	StudentEmail string    `gorm:"not null;uniqueIndex:idx_enrollment_class_student;index" json:"student_email"`
	PaymentRef   string    `gorm:"not null;index" json:"payment_ref"`
	AmountCents  int64     `gorm:"not null;default:0" json:"amount_cents"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}
