package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/learnify/marketplace-service/internal/models"
	"github.com/learnify/marketplace-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsService_PopularityAndLeaderboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewStatsService(f.listings, f.ledger, f.users)

	a := f.listing(t, "A", "zed@x.com", "10.00")
	b := f.listing(t, "B", "amy@x.com", "10.00")
	c := f.listing(t, "C", "zed@x.com", "10.00")

	purchases := map[uint][]string{
		a.ID: {"s1@x.com"},
		b.ID: {"s1@x.com", "s2@x.com", "s3@x.com"},
		c.ID: {"s2@x.com"},
	}
	n := 0
	for classID, students := range purchases {
		for _, s := range students {
			n++
			handle := fmt.Sprintf("pi_%d", n)
			f.paid(t, handle, s, 1000)
			_, err := f.svc.ConfirmPurchase(ctx, PurchaseRequest{StudentEmail: s, ClassIDs: []uint{classID}, Handle: handle})
			require.NoError(t, err)
		}
	}

	top, err := svc.TopClassesByEnrollment(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, b.ID, top[0].ID)
	assert.Equal(t, a.ID, top[1].ID, "tie on 1 enrollment is broken by lower id")

	all, err := svc.TopClassesByEnrollment(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	board, err := svc.InstructorLeaderboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, []repository.InstructorTotal{
		{InstructorEmail: "amy@x.com", Total: 3},
		{InstructorEmail: "zed@x.com", Total: 2},
	}, board)
}

func TestStatsService_AdminStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.users.Upsert(ctx, &models.User{Email: "a@x.com", Role: models.RoleStudent}))
	c1 := f.listing(t, "A", "i@x.com", "10.00")
	require.NoError(t, f.listings.Create(ctx, &models.ClassListing{Name: "Draft", InstructorEmail: "i@x.com", Status: models.StatusPending}))

	day := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	require.NoError(t, f.ledger.Append(ctx, f.db, &models.EnrollmentRecord{ClassID: c1.ID, StudentEmail: "old@x.com", PaymentRef: "pi", CreatedAt: day.Add(-24 * time.Hour)}))
	require.NoError(t, f.ledger.Append(ctx, f.db, &models.EnrollmentRecord{ClassID: c1.ID, StudentEmail: "new@x.com", PaymentRef: "pi", CreatedAt: day.Add(-time.Hour)}))

	svc := NewStatsService(f.listings, f.ledger, f.users).(*statsService)
	svc.now = func() time.Time { return day }

	stats, err := svc.AdminStats(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Users)
	assert.Equal(t, int64(1), stats.Classes[models.StatusApproved])
	assert.Equal(t, int64(1), stats.Classes[models.StatusPending])
	assert.Equal(t, int64(2), stats.Enrollments)
	assert.Equal(t, int64(1), stats.EnrollmentsToday)
}
