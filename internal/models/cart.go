package models

import "time"

// CartEntry is a pending, unpaid selection. At most one per (class, student).
type CartEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ClassID      uint      `gorm:"not null;uniqueIndex:idx_cart_class_student" json:"class_id"`
	StudentEmail string    `gorm:"not null;uniqueIndex:idx_cart_class_student;index" json:"student_email"`
	CreatedAt    time.Time `json:"created_at"`
}
