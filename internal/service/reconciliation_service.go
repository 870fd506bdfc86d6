package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/learnify/marketplace-service/internal/models"
	"github.com/learnify/marketplace-service/internal/payment"
	"github.com/learnify/marketplace-service/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PurchaseOutcome string

const (
	OutcomeEnrolled        PurchaseOutcome = "enrolled"
	OutcomeAlreadyEnrolled PurchaseOutcome = "already_enrolled"
	OutcomeListingNotFound PurchaseOutcome = "listing_not_found"
)

type ChargeRequest struct {
	StudentEmail string
	// ClassIDs selects a batch checkout priced from the catalog. When empty,
	// Price is charged as given.
	ClassIDs []uint
	Price    decimal.Decimal
}

type ChargeAuthorization struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
	AmountCents  int64  `json:"amount_cents"`
	Currency     string `json:"currency"`
}

type PurchaseRequest struct {
	StudentEmail string
	ClassIDs     []uint
	Handle       string
}

type PurchaseItem struct {
	ClassID  uint            `json:"class_id"`
	Outcome  PurchaseOutcome `json:"outcome"`
	FromCart bool            `json:"from_cart"`
}

type PurchaseResult struct {
	EnrolledCount int            `json:"enrolledCount"`
	Items         []PurchaseItem `json:"items"`
}

type EnrolledClass struct {
	EnrollmentID uint                 `json:"enrollment_id"`
	EnrolledAt   time.Time            `json:"enrolled_at"`
	PaymentRef   string               `json:"payment_ref"`
	Class        *models.ClassListing `json:"class"`
	Instructor   *models.User         `json:"instructor"`
}

type ReconciliationService interface {
	AuthorizeCharge(ctx context.Context, req ChargeRequest) (*ChargeAuthorization, error)
	ConfirmPurchase(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error)
	GetEnrolledClasses(ctx context.Context, studentEmail string) ([]EnrolledClass, error)
	Recount(ctx context.Context) (int, error)
}

// ReconciliationDeps is the explicit set of collaborators the service works
// against.
type ReconciliationDeps struct {
	Ledger    repository.EnrollmentRepository
	Carts     repository.CartRepository
	Listings  repository.ListingRepository
	Users     repository.UserRepository
	Gateway   payment.Gateway
	Publisher EventPublisher
	Currency  string
	Now       func() time.Time
}

type reconciliationService struct {
	ledger    repository.EnrollmentRepository
	carts     repository.CartRepository
	listings  repository.ListingRepository
	users     repository.UserRepository
	gateway   payment.Gateway
	publisher EventPublisher
	currency  string
	now       func() time.Time
}

func NewReconciliationService(deps ReconciliationDeps) ReconciliationService {
	s := &reconciliationService{
		ledger:    deps.Ledger,
		carts:     deps.Carts,
		listings:  deps.Listings,
		users:     deps.Users,
		gateway:   deps.Gateway,
		publisher: deps.Publisher,
		currency:  deps.Currency,
		now:       deps.Now,
	}
	if s.currency == "" {
		s.currency = "usd"
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *reconciliationService) AuthorizeCharge(ctx context.Context, req ChargeRequest) (*ChargeAuthorization, error) {
	email := strings.TrimSpace(req.StudentEmail)
	if email == "" {
		return nil, fmt.Errorf("%w: student email is required", ErrValidation)
	}

	price := req.Price
	ids := uniqueIDs(req.ClassIDs)
	if len(ids) > 0 {
		listings, err := s.listings.FindByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("%w: load classes: %v", ErrStoreUnavailable, err)
		}
		if len(listings) != len(ids) {
			return nil, fmt.Errorf("%w: %s", ErrListingNotFound, missingIDs(ids, listings))
		}
		price = decimal.Zero
		for _, l := range listings {
			price = price.Add(l.Price)
		}
	}

	amount, err := chargeableCents(price)
	if err != nil {
		return nil, err
	}

	metadata := map[string]string{"student_email": email}
	if len(ids) > 0 {
		metadata["class_ids"] = joinIDs(ids)
	}

	intent, err := s.gateway.CreateIntent(ctx, payment.IntentRequest{
		AmountCents: amount,
		Currency:    s.currency,
		Metadata:    metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPaymentAuthorizationFailed, gatewayReason(err))
	}

	return &ChargeAuthorization{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		AmountCents:  amount,
		Currency:     s.currency,
	}, nil
}

func (s *reconciliationService) ConfirmPurchase(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error) {
	email := strings.TrimSpace(req.StudentEmail)
	if email == "" {
		return nil, fmt.Errorf("%w: student email is required", ErrValidation)
	}
	ids := uniqueIDs(req.ClassIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: at least one class id is required", ErrValidation)
	}
	intentID := payment.IntentIDFromHandle(req.Handle)
	if intentID == "" {
		return nil, fmt.Errorf("%w: payment confirmation handle is required", ErrValidation)
	}

	// The gateway must confirm the charge before anything reaches the ledger.
	intent, err := s.gateway.GetIntent(ctx, intentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPaymentAuthorizationFailed, gatewayReason(err))
	}
	if intent.Status != payment.StatusSucceeded {
		return nil, fmt.Errorf("%w: payment %s is %s", ErrPaymentAuthorizationFailed, intent.ID, intent.Status)
	}
	if err := s.checkIntentCovers(ctx, intent, email, ids); err != nil {
		return nil, err
	}

	result := &PurchaseResult{Items: make([]PurchaseItem, 0, len(ids))}
	for _, classID := range ids {
		item, record, err := s.enrollOne(ctx, classID, email, intent.ID)
		if err != nil {
			log.Printf("[Reconciliation] class %d for %s failed after %d enrolled: %v", classID, email, result.EnrolledCount, err)
			return result, fmt.Errorf("%w: class %d: %v", ErrStoreUnavailable, classID, err)
		}

		result.Items = append(result.Items, item)
		if record != nil {
			result.EnrolledCount++
			s.publish("enrollment.created", record)
		}
	}

	log.Printf("[Reconciliation] %s paid with %s: %d new enrollment(s) of %d", email, intent.ID, result.EnrolledCount, len(ids))
	return result, nil
}

// checkIntentCovers rejects an intent paid by someone else, in another
// currency, or for less than the classes this call would newly enroll. Amounts
// already redeemed from the same intent are deducted first.
func (s *reconciliationService) checkIntentCovers(ctx context.Context, intent *payment.Intent, email string, ids []uint) error {
	owner := strings.TrimSpace(intent.Metadata["student_email"])
	if !strings.EqualFold(owner, email) {
		return fmt.Errorf("%w: payment %s was not made by %s", ErrPaymentAuthorizationFailed, intent.ID, email)
	}
	if !strings.EqualFold(intent.Currency, s.currency) {
		return fmt.Errorf("%w: payment %s is in %q, expected %q", ErrPaymentAuthorizationFailed, intent.ID, intent.Currency, s.currency)
	}

	redeemed, err := s.ledger.FindByPaymentRef(ctx, intent.ID)
	if err != nil {
		return fmt.Errorf("%w: load payment history: %v", ErrStoreUnavailable, err)
	}
	var spent int64
	for _, r := range redeemed {
		if !strings.EqualFold(r.StudentEmail, email) {
			return fmt.Errorf("%w: payment %s was already redeemed by another student", ErrPaymentAuthorizationFailed, intent.ID)
		}
		spent += r.AmountCents
	}

	listings, err := s.listings.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("%w: load classes: %v", ErrStoreUnavailable, err)
	}
	var due int64
	for _, l := range listings {
		enrolled, err := s.ledger.ExistsFor(ctx, s.ledger.GetDB(), l.ID, email)
		if err != nil {
			return fmt.Errorf("%w: check enrollment: %v", ErrStoreUnavailable, err)
		}
		if !enrolled {
			due += ToMinorUnits(l.Price)
		}
	}

	if left := intent.AmountCents - spent; left < due {
		return fmt.Errorf("%w: payment %s covers %d cents, classes cost %d", ErrPaymentAuthorizationFailed, intent.ID, left, due)
	}
	return nil
}

// enrollOne applies ledger append, counter increment and cart removal for a
// single class in one transaction. The ledger row is always written before the
// cart row is deleted. A class bought outside the cart is enrolled all the same.
func (s *reconciliationService) enrollOne(ctx context.Context, classID uint, email, paymentRef string) (PurchaseItem, *models.EnrollmentRecord, error) {
	item := PurchaseItem{ClassID: classID}
	var created *models.EnrollmentRecord

	err := s.ledger.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listing, err := s.listings.FindByIDTx(ctx, tx, classID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			item.Outcome = OutcomeListingNotFound
			return nil
		}
		if err != nil {
			return err
		}

		inCart, err := s.carts.Exists(ctx, tx, classID, email)
		if err != nil {
			return err
		}
		item.FromCart = inCart

		record := &models.EnrollmentRecord{
			ClassID:      classID,
			StudentEmail: email,
			PaymentRef:   paymentRef,
			AmountCents:  ToMinorUnits(listing.Price),
			CreatedAt:    s.now(),
		}
		inserted, err := s.ledger.AppendIfAbsent(ctx, tx, record)
		if err != nil {
			return err
		}

		if inserted {
			if err := s.listings.IncrementEnrolled(ctx, tx, classID); err != nil {
				return err
			}
			item.Outcome = OutcomeEnrolled
			created = record
		} else {
			item.Outcome = OutcomeAlreadyEnrolled
		}

		if inCart {
			if _, err := s.carts.RemoveEntry(ctx, tx, classID, email); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return item, nil, err
	}
	return item, created, nil
}

// GetEnrolledClasses joins ledger -> catalog -> user directory by key sets.
// Rows follow ledger creation order; a missing listing or instructor leaves
// the corresponding field nil.
func (s *reconciliationService) GetEnrolledClasses(ctx context.Context, studentEmail string) ([]EnrolledClass, error) {
	email := strings.TrimSpace(studentEmail)
	if email == "" {
		return nil, fmt.Errorf("%w: student email is required", ErrValidation)
	}

	records, err := s.ledger.FindByStudent(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: load enrollments: %v", ErrStoreUnavailable, err)
	}
	if len(records) == 0 {
		return []EnrolledClass{}, nil
	}

	classIDs := make([]uint, 0, len(records))
	for _, r := range records {
		classIDs = append(classIDs, r.ClassID)
	}
	listings, err := s.listings.FindByIDs(ctx, uniqueIDs(classIDs))
	if err != nil {
		return nil, fmt.Errorf("%w: load classes: %v", ErrStoreUnavailable, err)
	}
	listingByID := make(map[uint]*models.ClassListing, len(listings))
	var instructorEmails []string
	seen := make(map[string]bool)
	for i := range listings {
		l := &listings[i]
		listingByID[l.ID] = l
		if !seen[l.InstructorEmail] {
			seen[l.InstructorEmail] = true
			instructorEmails = append(instructorEmails, l.InstructorEmail)
		}
	}

	users, err := s.users.FindByEmails(ctx, instructorEmails)
	if err != nil {
		return nil, fmt.Errorf("%w: load instructors: %v", ErrStoreUnavailable, err)
	}
	userByEmail := make(map[string]*models.User, len(users))
	for i := range users {
		userByEmail[users[i].Email] = &users[i]
	}

	rows := make([]EnrolledClass, 0, len(records))
	for _, r := range records {
		row := EnrolledClass{
			EnrollmentID: r.ID,
			EnrolledAt:   r.CreatedAt,
			PaymentRef:   r.PaymentRef,
		}
		if l, ok := listingByID[r.ClassID]; ok {
			row.Class = l
			row.Instructor = userByEmail[l.InstructorEmail]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Recount rewrites every listing's total from the ledger and returns how many
// listings were off.
func (s *reconciliationService) Recount(ctx context.Context) (int, error) {
	fixed, err := s.listings.RecountEnrolled(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: recount: %v", ErrStoreUnavailable, err)
	}
	if fixed > 0 {
		log.Printf("[Reconciliation] recount corrected total_enrolled on %d class(es)", fixed)
	}
	return int(fixed), nil
}

func (s *reconciliationService) publish(routingKey string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(routingKey, payload); err != nil {
		log.Printf("[Reconciliation] publish %s failed: %v", routingKey, err)
	}
}

func gatewayReason(err error) string {
	var gwErr *payment.GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Message
	}
	return err.Error()
}

// uniqueIDs drops zero and repeated ids, keeping first-seen order.
func uniqueIDs(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func joinIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}

func missingIDs(ids []uint, found []models.ClassListing) string {
	have := make(map[uint]bool, len(found))
	for _, l := range found {
		have[l.ID] = true
	}
	var missing []uint
	for _, id := range ids {
		if !have[id] {
			missing = append(missing, id)
		}
	}
	return "missing class ids " + joinIDs(missing)
}
