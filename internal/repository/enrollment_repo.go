package repository

import (
	"context"
	"errors"
	"time"

	"github.com/learnify/marketplace-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnrollmentRepository is the append-only ledger: records are never updated
// or deleted.
type EnrollmentRepository interface {
	Append(ctx context.Context, tx *gorm.DB, record *models.EnrollmentRecord) error
	AppendIfAbsent(ctx context.Context, tx *gorm.DB, record *models.EnrollmentRecord) (bool, error)
	ExistsFor(ctx context.Context, tx *gorm.DB, classID uint, studentEmail string) (bool, error)
	FindByStudent(ctx context.Context, studentEmail string) ([]models.EnrollmentRecord, error)
	CountByClass(ctx context.Context, classID uint) (int64, error)
	FindByPaymentRef(ctx context.Context, paymentRef string) ([]models.EnrollmentRecord, error)
	CountAll(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	GetDB() *gorm.DB
}

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *enrollmentRepository) Append(ctx context.Context, tx *gorm.DB, record *models.EnrollmentRecord) error {
	inserted, err := r.AppendIfAbsent(ctx, tx, record)
	if err != nil {
		return err
	}
	if !inserted {
		return ErrDuplicate
	}
	return nil
}

// AppendIfAbsent is a single conditional insert keyed on the composite unique
// index, so two concurrent purchases of the same pair cannot both insert.
func (r *enrollmentRepository) AppendIfAbsent(ctx context.Context, tx *gorm.DB, record *models.EnrollmentRecord) (bool, error) {
	res := tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "class_id"}, {Name: "student_email"}},
			DoNothing: true,
		}).
		Create(record)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *enrollmentRepository) ExistsFor(ctx context.Context, tx *gorm.DB, classID uint, studentEmail string) (bool, error) {
	var record models.EnrollmentRecord
	err := tx.WithContext(ctx).
		Where("class_id = ? AND student_email = ?", classID, studentEmail).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *enrollmentRepository) FindByStudent(ctx context.Context, studentEmail string) ([]models.EnrollmentRecord, error) {
	var records []models.EnrollmentRecord
	err := r.db.WithContext(ctx).
		Where("student_email = ?", studentEmail).
		Order("created_at ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *enrollmentRepository) CountByClass(ctx context.Context, classID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.EnrollmentRecord{}).
		Where("class_id = ?", classID).
		Count(&count).Error
	return count, err
}

// FindByPaymentRef lists the records already paid for by one gateway intent.
func (r *enrollmentRepository) FindByPaymentRef(ctx context.Context, paymentRef string) ([]models.EnrollmentRecord, error) {
	var records []models.EnrollmentRecord
	err := r.db.WithContext(ctx).
		Where("payment_ref = ?", paymentRef).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *enrollmentRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.EnrollmentRecord{}).Count(&count).Error
	return count, err
}

func (r *enrollmentRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.EnrollmentRecord{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}
