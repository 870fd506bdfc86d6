package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ListingStatus string

const (
	StatusPending  ListingStatus = "pending"
	StatusApproved ListingStatus = "approved"
	StatusRejected ListingStatus = "rejected"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type ClassListing struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Name            string          `gorm:"not null" json:"name"`
	Description     string          `json:"description"`
	ImageURL        string          `json:"image_url"`
	VideoLink       string          `json:"video_link"`
	InstructorEmail string          `gorm:"not null;index" json:"instructor_email"`
	InstructorName  string          `json:"instructor_name"`
	Price           decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	AvailableSeats  int             `gorm:"not null;default:0" json:"available_seats"`
	Status          ListingStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Reason          string          `json:"reason,omitempty"`
	TotalEnrolled   int64           `gorm:"not null;default:0" json:"total_enrolled"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
