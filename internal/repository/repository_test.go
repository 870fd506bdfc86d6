package repository

import (
	"context"
	"testing"
	"time"

	"github.com/learnify/marketplace-service/internal/models"
	"github.com/learnify/marketplace-service/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createListing(t *testing.T, repo ListingRepository, name, instructor string, total int64) *models.ClassListing {
	t.Helper()
	listing := &models.ClassListing{
		Name:            name,
		InstructorEmail: instructor,
		Price:           decimal.RequireFromString("20.00"),
		AvailableSeats:  30,
		Status:          models.StatusApproved,
		TotalEnrolled:   total,
	}
	require.NoError(t, repo.Create(context.Background(), listing))
	return listing
}

func TestCartRepository_AddEntryRejectsDuplicatePair(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.AddEntry(ctx, &models.CartEntry{ClassID: 1, StudentEmail: "a@x.com"}))
	err := repo.AddEntry(ctx, &models.CartEntry{ClassID: 1, StudentEmail: "a@x.com"})
	assert.ErrorIs(t, err, ErrDuplicate)

	// same class, other student is fine
	require.NoError(t, repo.AddEntry(ctx, &models.CartEntry{ClassID: 1, StudentEmail: "b@x.com"}))

	entries, err := repo.ListByStudent(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCartRepository_RemoveEntry(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCartRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.AddEntry(ctx, &models.CartEntry{ClassID: 7, StudentEmail: "a@x.com"}))

	exists, err := repo.Exists(ctx, db, 7, "a@x.com")
	require.NoError(t, err)
	assert.True(t, exists)

	removed, err := repo.RemoveEntry(ctx, db, 7, "a@x.com")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.RemoveEntry(ctx, db, 7, "a@x.com")
	require.NoError(t, err)
	assert.False(t, removed)

	exists, err = repo.Exists(ctx, db, 7, "a@x.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestEnrollmentRepository_AppendIsConditional(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()

	inserted, err := repo.AppendIfAbsent(ctx, db, &models.EnrollmentRecord{ClassID: 1, StudentEmail: "a@x.com", PaymentRef: "pi_1"})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.AppendIfAbsent(ctx, db, &models.EnrollmentRecord{ClassID: 1, StudentEmail: "a@x.com", PaymentRef: "pi_2"})
	require.NoError(t, err)
	assert.False(t, inserted)

	err = repo.Append(ctx, db, &models.EnrollmentRecord{ClassID: 1, StudentEmail: "a@x.com", PaymentRef: "pi_3"})
	assert.ErrorIs(t, err, ErrDuplicate)

	count, err := repo.CountByClass(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	exists, err := repo.ExistsFor(ctx, db, 1, "a@x.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsFor(ctx, db, 1, "b@x.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestEnrollmentRepository_FindByStudentOrdersByCreation(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	// inserted out of order on purpose
	for _, r := range []models.EnrollmentRecord{
		{ClassID: 3, StudentEmail: "s@x.com", PaymentRef: "pi", CreatedAt: base.Add(3 * time.Minute)},
		{ClassID: 1, StudentEmail: "s@x.com", PaymentRef: "pi", CreatedAt: base.Add(1 * time.Minute)},
		{ClassID: 2, StudentEmail: "s@x.com", PaymentRef: "pi", CreatedAt: base.Add(2 * time.Minute)},
		{ClassID: 1, StudentEmail: "other@x.com", PaymentRef: "pi", CreatedAt: base},
	} {
		rec := r
		require.NoError(t, repo.Append(ctx, db, &rec))
	}

	records, err := repo.FindByStudent(ctx, "s@x.com")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, uint(1), records[0].ClassID)
	assert.Equal(t, uint(2), records[1].ClassID)
	assert.Equal(t, uint(3), records[2].ClassID)

	since, err := repo.CountSince(ctx, base.Add(90*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(2), since)

	paid, err := repo.FindByPaymentRef(ctx, "pi")
	require.NoError(t, err)
	assert.Len(t, paid, 4)

	none, err := repo.FindByPaymentRef(ctx, "pi_other")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListingRepository_IncrementEnrolled(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewListingRepository(db)
	ctx := context.Background()

	listing := createListing(t, repo, "Go Basics", "i@x.com", 0)

	require.NoError(t, repo.IncrementEnrolled(ctx, db, listing.ID))
	require.NoError(t, repo.IncrementEnrolled(ctx, db, listing.ID))

	got, err := repo.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.TotalEnrolled)

	err = repo.IncrementEnrolled(ctx, db, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListingRepository_TopByEnrollmentBreaksTiesByID(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewListingRepository(db)
	ctx := context.Background()

	a := createListing(t, repo, "A", "i@x.com", 5)
	b := createListing(t, repo, "B", "i@x.com", 9)
	c := createListing(t, repo, "C", "j@x.com", 5)
	createListing(t, repo, "D", "j@x.com", 1)

	top, err := repo.TopByEnrollment(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, b.ID, top[0].ID)
	assert.Equal(t, a.ID, top[1].ID)
	assert.Equal(t, c.ID, top[2].ID)
}

func TestListingRepository_SumEnrolledByInstructor(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewListingRepository(db)
	ctx := context.Background()

	createListing(t, repo, "A", "zed@x.com", 2)
	createListing(t, repo, "B", "amy@x.com", 4)
	createListing(t, repo, "C", "zed@x.com", 3)

	totals, err := repo.SumEnrolledByInstructor(ctx)
	require.NoError(t, err)
	assert.Equal(t, []InstructorTotal{
		{InstructorEmail: "amy@x.com", Total: 4},
		{InstructorEmail: "zed@x.com", Total: 5},
	}, totals)
}

func TestListingRepository_UpdateDetailsResetsStatus(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewListingRepository(db)
	ctx := context.Background()

	listing := createListing(t, repo, "Old", "i@x.com", 0)
	listing.Name = "New"
	listing.Price = decimal.RequireFromString("35.50")
	require.NoError(t, repo.UpdateDetails(ctx, listing))

	got, err := repo.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("35.5")))

	require.NoError(t, repo.UpdateStatus(ctx, listing.ID, models.StatusRejected, "needs video"))
	got, err = repo.FindByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, got.Status)
	assert.Equal(t, "needs video", got.Reason)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.StatusRejected])
	assert.Equal(t, int64(0), counts[models.StatusApproved])

	assert.ErrorIs(t, repo.UpdateStatus(ctx, 4242, models.StatusApproved, ""), gorm.ErrRecordNotFound)
}

func TestUserRepository_UpsertAndFind(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &models.User{Email: "i@x.com", Name: "Ines", Role: models.RoleInstructor}))
	require.NoError(t, repo.Upsert(ctx, &models.User{Email: "i@x.com", Name: "Ines R.", Role: models.RoleInstructor}))
	require.NoError(t, repo.Upsert(ctx, &models.User{Email: "s@x.com", Name: "Sam", Role: models.RoleStudent}))

	user, err := repo.FindByEmail(ctx, "i@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ines R.", user.Name)

	users, err := repo.FindByEmails(ctx, []string{"i@x.com", "s@x.com", "ghost@x.com"})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestListingRepository_RecountEnrolled(t *testing.T) {
	db := testutil.NewDB(t)
	listings := NewListingRepository(db)
	ledger := NewEnrollmentRepository(db)
	ctx := context.Background()

	drifted := createListing(t, listings, "Drifted", "i@x.com", 7)
	correct := createListing(t, listings, "Correct", "i@x.com", 1)
	empty := createListing(t, listings, "Empty", "i@x.com", 2)
	for _, r := range []models.EnrollmentRecord{
		{ClassID: drifted.ID, StudentEmail: "a@x.com", PaymentRef: "pi_1"},
		{ClassID: drifted.ID, StudentEmail: "b@x.com", PaymentRef: "pi_2"},
		{ClassID: correct.ID, StudentEmail: "a@x.com", PaymentRef: "pi_1"},
	} {
		rec := r
		require.NoError(t, ledger.Append(ctx, db, &rec))
	}

	changed, err := listings.RecountEnrolled(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	for id, want := range map[uint]int64{drifted.ID: 2, correct.ID: 1, empty.ID: 0} {
		got, err := listings.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got.TotalEnrolled)
	}

	changed, err = listings.RecountEnrolled(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), changed)
}
