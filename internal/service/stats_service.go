package service

import (
	"context"
	"time"

	"github.com/jinzhu/now"
	"github.com/learnify/marketplace-service/internal/models"
	"github.com/learnify/marketplace-service/internal/repository"
)

const PopularClassesLimit = 6

type AdminStats struct {
	Users            int64                          `json:"users"`
	Classes          map[models.ListingStatus]int64 `json:"classes"`
	Enrollments      int64                          `json:"enrollments"`
	EnrollmentsToday int64                          `json:"enrollments_today"`
}

type StatsService interface {
	TopClassesByEnrollment(ctx context.Context, limit int) ([]models.ClassListing, error)
	InstructorLeaderboard(ctx context.Context) ([]repository.InstructorTotal, error)
	AdminStats(ctx context.Context) (*AdminStats, error)
}

type statsService struct {
	listings repository.ListingRepository
	ledger   repository.EnrollmentRepository
	users    repository.UserRepository
	now      func() time.Time
}

func NewStatsService(listings repository.ListingRepository, ledger repository.EnrollmentRepository, users repository.UserRepository) StatsService {
	return &statsService{listings: listings, ledger: ledger, users: users, now: time.Now}
}

func (s *statsService) TopClassesByEnrollment(ctx context.Context, limit int) ([]models.ClassListing, error) {
	if limit <= 0 {
		limit = PopularClassesLimit
	}
	return s.listings.TopByEnrollment(ctx, limit)
}

// InstructorLeaderboard sums total_enrolled per instructor, ordered by email.
func (s *statsService) InstructorLeaderboard(ctx context.Context) ([]repository.InstructorTotal, error) {
	return s.listings.SumEnrolledByInstructor(ctx)
}

func (s *statsService) AdminStats(ctx context.Context) (*AdminStats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	classes, err := s.listings.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.ledger.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	today, err := s.ledger.CountSince(ctx, now.With(s.now()).BeginningOfDay())
	if err != nil {
		return nil, err
	}

	return &AdminStats{
		Users:            users,
		Classes:          classes,
		Enrollments:      enrollments,
		EnrollmentsToday: today,
	}, nil
}
