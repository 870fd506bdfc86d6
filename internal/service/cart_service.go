package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/learnify/marketplace-service/internal/models"
	"github.com/learnify/marketplace-service/internal/repository"
	"gorm.io/gorm"
)

type CartService interface {
	Add(ctx context.Context, classID uint, studentEmail string) (*models.CartEntry, error)
	List(ctx context.Context, studentEmail string) ([]models.ClassListing, error)
	Contains(ctx context.Context, classID uint, studentEmail string) (bool, error)
	Remove(ctx context.Context, classID uint, studentEmail string) error
}

type cartService struct {
	carts    repository.CartRepository
	ledger   repository.EnrollmentRepository
	listings repository.ListingRepository
}

func NewCartService(carts repository.CartRepository, ledger repository.EnrollmentRepository, listings repository.ListingRepository) CartService {
	return &cartService{carts: carts, ledger: ledger, listings: listings}
}

func (s *cartService) Add(ctx context.Context, classID uint, studentEmail string) (*models.CartEntry, error) {
	email := strings.TrimSpace(studentEmail)
	if email == "" || classID == 0 {
		return nil, fmt.Errorf("%w: class id and student email are required", ErrValidation)
	}

	listing, err := s.listings.FindByID(ctx, classID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	if listing.Status != models.StatusApproved {
		return nil, fmt.Errorf("%w: class %d is not open for enrollment", ErrValidation, classID)
	}

	enrolled, err := s.ledger.ExistsFor(ctx, s.ledger.GetDB(), classID, email)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, ErrAlreadyEnrolled
	}

	entry := &models.CartEntry{ClassID: classID, StudentEmail: email}
	if err := s.carts.AddEntry(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyInCart
		}
		return nil, fmt.Errorf("add cart entry: %w", err)
	}
	return entry, nil
}

// List returns the listings in the student's cart in the order they were
// added. Entries whose listing has gone away are skipped.
func (s *cartService) List(ctx context.Context, studentEmail string) ([]models.ClassListing, error) {
	entries, err := s.carts.ListByStudent(ctx, studentEmail)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(entries))
	for i, e := range entries {
		ids[i] = e.ClassID
	}
	listings, err := s.listings.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.ClassListing, len(listings))
	for _, l := range listings {
		byID[l.ID] = l
	}

	out := make([]models.ClassListing, 0, len(entries))
	for _, e := range entries {
		if l, ok := byID[e.ClassID]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *cartService) Contains(ctx context.Context, classID uint, studentEmail string) (bool, error) {
	return s.carts.Exists(ctx, s.carts.GetDB(), classID, studentEmail)
}

func (s *cartService) Remove(ctx context.Context, classID uint, studentEmail string) error {
	removed, err := s.carts.RemoveEntry(ctx, s.carts.GetDB(), classID, studentEmail)
	if err != nil {
		return fmt.Errorf("remove cart entry: %w", err)
	}
	if !removed {
		return ErrCartEntryNotFound
	}
	return nil
}
