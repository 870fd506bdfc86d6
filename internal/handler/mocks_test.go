package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/learnify/marketplace-service/internal/middleware"
	"github.com/learnify/marketplace-service/internal/models"
	"github.com/learnify/marketplace-service/internal/repository"
	"github.com/learnify/marketplace-service/internal/service"
)

// --- Mock ReconciliationService ---

type mockReconciliationService struct {
	authorizeFn func(ctx context.Context, req service.ChargeRequest) (*service.ChargeAuthorization, error)
	confirmFn   func(ctx context.Context, req service.PurchaseRequest) (*service.PurchaseResult, error)
	enrolledFn  func(ctx context.Context, email string) ([]service.EnrolledClass, error)
	recountFn   func(ctx context.Context) (int, error)
}

func (m *mockReconciliationService) AuthorizeCharge(ctx context.Context, req service.ChargeRequest) (*service.ChargeAuthorization, error) {
	return m.authorizeFn(ctx, req)
}
func (m *mockReconciliationService) ConfirmPurchase(ctx context.Context, req service.PurchaseRequest) (*service.PurchaseResult, error) {
	return m.confirmFn(ctx, req)
}
func (m *mockReconciliationService) GetEnrolledClasses(ctx context.Context, email string) ([]service.EnrolledClass, error) {
	return m.enrolledFn(ctx, email)
}
func (m *mockReconciliationService) Recount(ctx context.Context) (int, error) {
	return m.recountFn(ctx)
}

// --- Mock CartService ---

type mockCartService struct {
	addFn      func(ctx context.Context, classID uint, email string) (*models.CartEntry, error)
	listFn     func(ctx context.Context, email string) ([]models.ClassListing, error)
	containsFn func(ctx context.Context, classID uint, email string) (bool, error)
	removeFn   func(ctx context.Context, classID uint, email string) error
}

func (m *mockCartService) Add(ctx context.Context, classID uint, email string) (*models.CartEntry, error) {
	return m.addFn(ctx, classID, email)
}
func (m *mockCartService) List(ctx context.Context, email string) ([]models.ClassListing, error) {
	return m.listFn(ctx, email)
}
func (m *mockCartService) Contains(ctx context.Context, classID uint, email string) (bool, error) {
	return m.containsFn(ctx, classID, email)
}
func (m *mockCartService) Remove(ctx context.Context, classID uint, email string) error {
	return m.removeFn(ctx, classID, email)
}

// --- Mock CatalogService ---

type mockCatalogService struct {
	service.CatalogService
	createFn       func(ctx context.Context, l *models.ClassListing) error
	getFn          func(ctx context.Context, id uint) (*models.ClassListing, error)
	updateFn       func(ctx context.Context, email string, role models.Role, l *models.ClassListing) (*models.ClassListing, error)
	changeStatusFn func(ctx context.Context, id uint, status models.ListingStatus, reason string) (*models.ClassListing, error)
}

func (m *mockCatalogService) CreateClass(ctx context.Context, l *models.ClassListing) error {
	return m.createFn(ctx, l)
}
func (m *mockCatalogService) GetClass(ctx context.Context, id uint) (*models.ClassListing, error) {
	return m.getFn(ctx, id)
}
func (m *mockCatalogService) UpdateClass(ctx context.Context, email string, role models.Role, l *models.ClassListing) (*models.ClassListing, error) {
	return m.updateFn(ctx, email, role, l)
}
func (m *mockCatalogService) ChangeStatus(ctx context.Context, id uint, status models.ListingStatus, reason string) (*models.ClassListing, error) {
	return m.changeStatusFn(ctx, id, status, reason)
}

// --- Mock StatsService ---

type mockStatsService struct {
	topFn   func(ctx context.Context, limit int) ([]models.ClassListing, error)
	boardFn func(ctx context.Context) ([]repository.InstructorTotal, error)
	adminFn func(ctx context.Context) (*service.AdminStats, error)
}

func (m *mockStatsService) TopClassesByEnrollment(ctx context.Context, limit int) ([]models.ClassListing, error) {
	return m.topFn(ctx, limit)
}
func (m *mockStatsService) InstructorLeaderboard(ctx context.Context) ([]repository.InstructorTotal, error) {
	return m.boardFn(ctx)
}
func (m *mockStatsService) AdminStats(ctx context.Context) (*service.AdminStats, error) {
	return m.adminFn(ctx)
}

// --- Mock UserService ---

type mockUserService struct {
	registerFn func(ctx context.Context, u *models.User) error
}

func (m *mockUserService) Register(ctx context.Context, u *models.User) error {
	return m.registerFn(ctx, u)
}
func (m *mockUserService) GetUser(ctx context.Context, email string) (*models.User, error) {
	return nil, service.ErrUserNotFound
}

// --- helpers ---

func newContext(method, target, body string, p *middleware.Principal) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req = httptest.NewRequest(method, target, nil)
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if p != nil {
		middleware.WithPrincipal(c, p)
	}
	return c, rec
}

func student(email string) *middleware.Principal {
	return &middleware.Principal{Email: email, Role: models.RoleStudent}
}
