package repository

import (
	"context"
	"errors"

	"github.com/learnify/marketplace-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	AddEntry(ctx context.Context, entry *models.CartEntry) error
	ListByStudent(ctx context.Context, studentEmail string) ([]models.CartEntry, error)
	Exists(ctx context.Context, tx *gorm.DB, classID uint, studentEmail string) (bool, error)
	RemoveEntry(ctx context.Context, tx *gorm.DB, classID uint, studentEmail string) (bool, error)
	GetDB() *gorm.DB
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) GetDB() *gorm.DB {
	return r.db
}

// AddEntry inserts the entry unless the (class, student) pair is already in
// the cart, in which case ErrDuplicate is returned.
func (r *cartRepository) AddEntry(ctx context.Context, entry *models.CartEntry) error {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "class_id"}, {Name: "student_email"}},
			DoNothing: true,
		}).
		Create(entry)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *cartRepository) ListByStudent(ctx context.Context, studentEmail string) ([]models.CartEntry, error) {
	var entries []models.CartEntry
	err := r.db.WithContext(ctx).
		Where("student_email = ?", studentEmail).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *cartRepository) Exists(ctx context.Context, tx *gorm.DB, classID uint, studentEmail string) (bool, error) {
	var entry models.CartEntry
	err := tx.WithContext(ctx).
		Where("class_id = ? AND student_email = ?", classID, studentEmail).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *cartRepository) RemoveEntry(ctx context.Context, tx *gorm.DB, classID uint, studentEmail string) (bool, error) {
	res := tx.WithContext(ctx).
		Where("class_id = ? AND student_email = ?", classID, studentEmail).
		Delete(&models.CartEntry{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
