package repository

import (
	"context"

	"github.com/learnify/marketplace-service/internal/models"
	"gorm.io/gorm"
)

type InstructorTotal struct {
	InstructorEmail string `json:"instructor_email"`
	Total           int64  `json:"total"`
}

type ListingRepository interface {
	Create(ctx context.Context, listing *models.ClassListing) error
	FindByID(ctx context.Context, id uint) (*models.ClassListing, error)
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uint) (*models.ClassListing, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.ClassListing, error)
	FindAll(ctx context.Context) ([]models.ClassListing, error)
	FindByInstructor(ctx context.Context, email string) ([]models.ClassListing, error)
	FindByStatus(ctx context.Context, status models.ListingStatus) ([]models.ClassListing, error)
	UpdateDetails(ctx context.Context, listing *models.ClassListing) error
	UpdateStatus(ctx context.Context, id uint, status models.ListingStatus, reason string) error
	IncrementEnrolled(ctx context.Context, tx *gorm.DB, id uint) error
	RecountEnrolled(ctx context.Context) (int64, error)
	TopByEnrollment(ctx context.Context, limit int) ([]models.ClassListing, error)
	SumEnrolledByInstructor(ctx context.Context) ([]InstructorTotal, error)
	CountByStatus(ctx context.Context) (map[models.ListingStatus]int64, error)
	GetDB() *gorm.DB
}

type listingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *listingRepository) Create(ctx context.Context, listing *models.ClassListing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *listingRepository) FindByID(ctx context.Context, id uint) (*models.ClassListing, error) {
	return r.FindByIDTx(ctx, r.db, id)
}

func (r *listingRepository) FindByIDTx(ctx context.Context, tx *gorm.DB, id uint) (*models.ClassListing, error) {
	var listing models.ClassListing
	if err := tx.WithContext(ctx).First(&listing, id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.ClassListing, error) {
	var listings []models.ClassListing
	if len(ids) == 0 {
		return listings, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *listingRepository) FindAll(ctx context.Context) ([]models.ClassListing, error) {
	var listings []models.ClassListing
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *listingRepository) FindByInstructor(ctx context.Context, email string) ([]models.ClassListing, error) {
	var listings []models.ClassListing
	err := r.db.WithContext(ctx).
		Where("instructor_email = ?", email).
		Order("id ASC").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *listingRepository) FindByStatus(ctx context.Context, status models.ListingStatus) ([]models.ClassListing, error) {
	var listings []models.ClassListing
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("id ASC").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// UpdateDetails rewrites the instructor-editable fields and puts the listing
// back into review.
func (r *listingRepository) UpdateDetails(ctx context.Context, listing *models.ClassListing) error {
	res := r.db.WithContext(ctx).
		Model(&models.ClassListing{}).
		Where("id = ?", listing.ID).
		Updates(map[string]any{
			"name":            listing.Name,
			"description":     listing.Description,
			"image_url":       listing.ImageURL,
			"video_link":      listing.VideoLink,
			"price":           listing.Price,
			"available_seats": listing.AvailableSeats,
			"status":          models.StatusPending,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *listingRepository) UpdateStatus(ctx context.Context, id uint, status models.ListingStatus, reason string) error {
	res := r.db.WithContext(ctx).
		Model(&models.ClassListing{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "reason": reason})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *listingRepository) IncrementEnrolled(ctx context.Context, tx *gorm.DB, id uint) error {
	res := tx.WithContext(ctx).
		Model(&models.ClassListing{}).
		Where("id = ?", id).
		UpdateColumn("total_enrolled", gorm.Expr("total_enrolled + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RecountEnrolled rewrites total_enrolled from the ledger in one statement and
// returns how many listings changed.
func (r *listingRepository) RecountEnrolled(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE class_listings
		SET total_enrolled = (
			SELECT COUNT(*) FROM enrollment_records WHERE enrollment_records.class_id = class_listings.id
		)
		WHERE total_enrolled <> (
			SELECT COUNT(*) FROM enrollment_records WHERE enrollment_records.class_id = class_listings.id
		)`)
	return res.RowsAffected, res.Error
}

// TopByEnrollment breaks ties on id so the ranking is deterministic.
func (r *listingRepository) TopByEnrollment(ctx context.Context, limit int) ([]models.ClassListing, error) {
	var listings []models.ClassListing
	err := r.db.WithContext(ctx).
		Order("total_enrolled DESC, id ASC").
		Limit(limit).
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *listingRepository) SumEnrolledByInstructor(ctx context.Context) ([]InstructorTotal, error) {
	var totals []InstructorTotal
	err := r.db.WithContext(ctx).
		Model(&models.ClassListing{}).
		Select("instructor_email, SUM(total_enrolled) AS total").
		Group("instructor_email").
		Order("instructor_email ASC").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}

func (r *listingRepository) CountByStatus(ctx context.Context) (map[models.ListingStatus]int64, error) {
	var rows []struct {
		Status models.ListingStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.ClassListing{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := map[models.ListingStatus]int64{
		models.StatusPending:  0,
		models.StatusApproved: 0,
		models.StatusRejected: 0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
