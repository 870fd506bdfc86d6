package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/learnify/marketplace-service/internal/models"
	"github.com/learnify/marketplace-service/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CatalogService interface {
	CreateClass(ctx context.Context, listing *models.ClassListing) error
	GetClass(ctx context.Context, id uint) (*models.ClassListing, error)
	ListClasses(ctx context.Context) ([]models.ClassListing, error)
	ListByInstructor(ctx context.Context, email string) ([]models.ClassListing, error)
	ListApproved(ctx context.Context) ([]models.ClassListing, error)
	UpdateClass(ctx context.Context, actorEmail string, actorRole models.Role, listing *models.ClassListing) (*models.ClassListing, error)
	ChangeStatus(ctx context.Context, id uint, status models.ListingStatus, reason string) (*models.ClassListing, error)
}

type catalogService struct {
	repo      repository.ListingRepository
	publisher EventPublisher
}

func NewCatalogService(repo repository.ListingRepository, publisher EventPublisher) CatalogService {
	return &catalogService{repo: repo, publisher: publisher}
}

// CreateClass always starts a listing in review with no enrollments.
func (s *catalogService) CreateClass(ctx context.Context, listing *models.ClassListing) error {
	if err := validateListing(listing); err != nil {
		return err
	}
	listing.Status = models.StatusPending
	listing.Reason = ""
	listing.TotalEnrolled = 0

	if err := s.repo.Create(ctx, listing); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	s.publish("class.created", listing)
	return nil
}

func (s *catalogService) GetClass(ctx context.Context, id uint) (*models.ClassListing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrListingNotFound
	}
	return listing, err
}

func (s *catalogService) ListClasses(ctx context.Context) ([]models.ClassListing, error) {
	return s.repo.FindAll(ctx)
}

func (s *catalogService) ListByInstructor(ctx context.Context, email string) ([]models.ClassListing, error) {
	return s.repo.FindByInstructor(ctx, email)
}

func (s *catalogService) ListApproved(ctx context.Context) ([]models.ClassListing, error) {
	return s.repo.FindByStatus(ctx, models.StatusApproved)
}

func (s *catalogService) UpdateClass(ctx context.Context, actorEmail string, actorRole models.Role, listing *models.ClassListing) (*models.ClassListing, error) {
	if err := validateListing(listing); err != nil {
		return nil, err
	}

	current, err := s.GetClass(ctx, listing.ID)
	if err != nil {
		return nil, err
	}
	if actorRole != models.RoleAdmin && current.InstructorEmail != actorEmail {
		return nil, ErrForbiddenOwner
	}

	if err := s.repo.UpdateDetails(ctx, listing); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("update class: %w", err)
	}

	updated, err := s.GetClass(ctx, listing.ID)
	if err != nil {
		return nil, err
	}
	s.publish("class.updated", updated)
	return updated, nil
}

func (s *catalogService) ChangeStatus(ctx context.Context, id uint, status models.ListingStatus, reason string) (*models.ClassListing, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	if err := s.repo.UpdateStatus(ctx, id, status, strings.TrimSpace(reason)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, fmt.Errorf("change status: %w", err)
	}

	updated, err := s.GetClass(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish("class.status_changed", updated)
	return updated, nil
}

func (s *catalogService) publish(routingKey string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, payload); err != nil {
		log.Printf("[Catalog] publish %s failed: %v", routingKey, err)
	}
}

func validateListing(l *models.ClassListing) error {
	switch {
	case strings.TrimSpace(l.Name) == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case strings.TrimSpace(l.InstructorEmail) == "":
		return fmt.Errorf("%w: instructor email is required", ErrValidation)
	case l.Price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	case l.Price.Shift(2).GreaterThan(decimal.NewFromInt(MaxChargeCents)):
		return fmt.Errorf("%w: price exceeds the maximum charge", ErrValidation)
	case l.AvailableSeats < 0:
		return fmt.Errorf("%w: available seats must not be negative", ErrValidation)
	}
	return nil
}
