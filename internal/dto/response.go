package dto

import (
	"time"

	"github.com/learnify/marketplace-service/internal/models"
	"github.com/learnify/marketplace-service/internal/repository"
	"github.com/learnify/marketplace-service/internal/service"
)

type ClientSecretResponse struct {
	ClientSecret string `json:"clientSecret"`
	IntentID     string `json:"intentId"`
	AmountCents  int64  `json:"amountCents"`
	Currency     string `json:"currency"`
}

type InstructorResponse struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl"`
}

type EnrolledClassResponse struct {
	EnrollmentID uint                 `json:"enrollmentId"`
	EnrolledAt   time.Time            `json:"enrolledAt"`
	PaymentRef   string               `json:"paymentRef"`
	Class        *models.ClassListing `json:"classes"`
	Instructor   *InstructorResponse  `json:"instructor"`
}

type CartItemResponse struct {
	ClassID uint `json:"classId"`
}

type RecountResponse struct {
	Updated int `json:"updated"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToEnrolledClassResponse(e service.EnrolledClass) EnrolledClassResponse {
	resp := EnrolledClassResponse{
		EnrollmentID: e.EnrollmentID,
		EnrolledAt:   e.EnrolledAt,
		PaymentRef:   e.PaymentRef,
		Class:        e.Class,
	}
	if e.Instructor != nil {
		resp.Instructor = &InstructorResponse{
			Email:    e.Instructor.Email,
			Name:     e.Instructor.Name,
			PhotoURL: e.Instructor.PhotoURL,
		}
	}
	return resp
}

// ToLeaderboard renders instructor totals as {email: total}.
func ToLeaderboard(rows []repository.InstructorTotal) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.InstructorEmail] = r.Total
	}
	return out
}
