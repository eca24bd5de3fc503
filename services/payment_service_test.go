package services_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/yashrajoria/food-ordering-backend/models"
	"github.com/yashrajoria/food-ordering-backend/repository"
	"github.com/yashrajoria/food-ordering-backend/services"
)

// ---- fakes ----

type fakePaymentRepo struct {
	attempts []models.PaymentAttempt
}

func (f *fakePaymentRepo) Create(ctx context.Context, attempt *models.PaymentAttempt) error {
	attempt.ID = uuid.New()
	f.attempts = append(f.attempts, *attempt)
	return nil
}

func (f *fakePaymentRepo) FindByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.PaymentAttempt, error) {
	var out []models.PaymentAttempt
	for _, a := range f.attempts {
		if a.OrderID == orderID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeGateway struct {
	secret      string
	err         error
	gotAmount   int64
	gotCurrency string
	gotOrderID  string
}

func (f *fakeGateway) CreateIntent(ctx context.Context, amount int64, currency, orderID string) (string, error) {
	f.gotAmount = amount
	f.gotCurrency = currency
	f.gotOrderID = orderID
	if f.err != nil {
		return "", f.err
	}
	return f.secret, nil
}

// ---- helpers ----

type paymentFixture struct {
	svc         services.PaymentService
	orderRepo   *fakeOrderRepo
	paymentRepo *fakePaymentRepo
	gateway     *fakeGateway
	notifier    *fakeNotifier
	renderer    *fakeRenderer
	publisher   *fakePublisher
}

func newPaymentFixture(user *models.User, orders ...*models.Order) *paymentFixture {
	logger, _ := zap.NewDevelopment()
	f := &paymentFixture{
		orderRepo:   newFakeOrderRepo(orders...),
		paymentRepo: &fakePaymentRepo{},
		gateway:     &fakeGateway{secret: "pi_secret_123"},
		notifier:    &fakeNotifier{},
		renderer:    &fakeRenderer{},
		publisher:   &fakePublisher{},
	}
	f.orderRepo.payments = f.paymentRepo
	users := map[uuid.UUID]*models.User{}
	if user != nil {
		users[user.ID] = user
	}
	f.svc = services.NewPaymentService(
		f.orderRepo, f.paymentRepo, &fakeUserRepo{users: users},
		f.gateway, f.notifier, f.renderer, f.publisher,
		"usd", logger,
	)
	return f
}

func pendingOrder(userID uuid.UUID, total int64) *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		UserID:        userID,
		TotalAmount:   total,
		OrderStatus:   models.OrderInitialized,
		PaymentStatus: models.PaymentPending,
	}
}

func amount(v int64) *int64 { return &v }

func str(v string) *string { return &v }

// ---- InitializePayment ----

func TestInitializePayment_CreatesIntentForOrderTotal(t *testing.T) {
	user := testUser()
	order := pendingOrder(user.ID, 2900)
	f := newPaymentFixture(user, order)

	secret, appErr := f.svc.InitializePayment(context.Background(), services.PaymentInitRequest{
		OrderID: order.ID,
		Amount:  amount(2900),
	})

	assert.Nil(t, appErr)
	assert.Equal(t, "pi_secret_123", secret)
	assert.Equal(t, int64(2900), f.gateway.gotAmount)
	assert.Equal(t, "usd", f.gateway.gotCurrency)
	assert.Equal(t, order.ID.String(), f.gateway.gotOrderID)
}

func TestInitializePayment_UnknownOrder(t *testing.T) {
	f := newPaymentFixture(nil)

	_, appErr := f.svc.InitializePayment(context.Background(), services.PaymentInitRequest{
		OrderID: uuid.New(),
		Amount:  amount(100),
	})

	assert.NotNil(t, appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
	assert.Equal(t, "Order not found", appErr.Message)
}

func TestInitializePayment_AlreadyCompleted(t *testing.T) {
	order := pendingOrder(uuid.New(), 2900)
	order.PaymentStatus = models.PaymentCompleted
	f := newPaymentFixture(nil, order)

	_, appErr := f.svc.InitializePayment(context.Background(), services.PaymentInitRequest{
		OrderID: order.ID,
		Amount:  amount(2900),
	})

	assert.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Equal(t, "Payment already completed for this order", appErr.Message)
	assert.Empty(t, f.gateway.gotOrderID)
}

func TestInitializePayment_AmountMismatch(t *testing.T) {
	order := pendingOrder(uuid.New(), 2900)
	f := newPaymentFixture(nil, order)

	_, appErr := f.svc.InitializePayment(context.Background(), services.PaymentInitRequest{
		OrderID: order.ID,
		Amount:  amount(100),
	})

	assert.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Equal(t, "Payment amount does not tally with the order total", appErr.Message)
	assert.Empty(t, f.gateway.gotOrderID)
}

func TestInitializePayment_InvalidOrderTotal(t *testing.T) {
	order := pendingOrder(uuid.New(), 0)
	f := newPaymentFixture(nil, order)

	_, appErr := f.svc.InitializePayment(context.Background(), services.PaymentInitRequest{
		OrderID: order.ID,
		Amount:  amount(0),
	})

	assert.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
}

func TestInitializePayment_GatewayFailure(t *testing.T) {
	order := pendingOrder(uuid.New(), 2900)
	f := newPaymentFixture(nil, order)
	f.gateway.err = errors.New("stripe: api unreachable")

	_, appErr := f.svc.InitializePayment(context.Background(), services.PaymentInitRequest{
		OrderID: order.ID,
		Amount:  amount(2900),
	})

	assert.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadGateway, appErr.Code)
}

// ---- UpdatePaymentForOrder ----

func TestSettlement_SuccessConfirmsOrder(t *testing.T) {
	user := testUser()
	order := pendingOrder(user.ID, 2900)
	f := newPaymentFixture(user, order)

	appErr := f.svc.UpdatePaymentForOrder(context.Background(), services.Settlement{
		OrderID:       order.ID,
		Success:       true,
		TransactionID: str("pi_123"),
		Amount:        amount(2900),
	})

	assert.Nil(t, appErr)
	assert.Equal(t, models.PaymentCompleted, order.PaymentStatus)
	assert.Equal(t, models.OrderConfirmed, order.OrderStatus)

	assert.Len(t, f.paymentRepo.attempts, 1)
	attempt := f.paymentRepo.attempts[0]
	assert.True(t, attempt.Success)
	assert.Equal(t, int64(2900), attempt.Amount)
	assert.Equal(t, "pi_123", *attempt.GatewayTransactionID)

	assert.Equal(t, []string{services.TemplatePaymentSuccess}, f.renderer.rendered)
	assert.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "Payment received", f.notifier.sent[0].Subject)

	assert.Len(t, f.publisher.events, 1)
	assert.Equal(t, models.EventPaymentSettled, f.publisher.events[0].Type)
}

func TestSettlement_FailureCancelsOrder(t *testing.T) {
	user := testUser()
	order := pendingOrder(user.ID, 2900)
	f := newPaymentFixture(user, order)

	appErr := f.svc.UpdatePaymentForOrder(context.Background(), services.Settlement{
		OrderID:       order.ID,
		Success:       false,
		TransactionID: str("pi_456"),
		FailureReason: str("card_declined"),
	})

	assert.Nil(t, appErr)
	assert.Equal(t, models.PaymentFailed, order.PaymentStatus)
	assert.Equal(t, models.OrderCancelled, order.OrderStatus)

	assert.Len(t, f.paymentRepo.attempts, 1)
	assert.False(t, f.paymentRepo.attempts[0].Success)
	assert.Equal(t, "card_declined", *f.paymentRepo.attempts[0].FailureReason)

	assert.Equal(t, []string{services.TemplatePaymentFailed}, f.renderer.rendered)
	assert.Equal(t, "Payment failed", f.notifier.sent[0].Subject)
	data, ok := f.renderer.lastData.(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "card_declined", data["Reason"])
}

func TestSettlement_RedeliveryIsNoOp(t *testing.T) {
	user := testUser()
	order := pendingOrder(user.ID, 2900)
	f := newPaymentFixture(user, order)

	settlement := services.Settlement{
		OrderID:       order.ID,
		Success:       true,
		TransactionID: str("pi_123"),
		Amount:        amount(2900),
	}

	assert.Nil(t, f.svc.UpdatePaymentForOrder(context.Background(), settlement))
	assert.Nil(t, f.svc.UpdatePaymentForOrder(context.Background(), settlement))

	// One attempt row, one email, one event, no matter how often the
	// gateway redelivers.
	assert.Len(t, f.paymentRepo.attempts, 1)
	assert.Len(t, f.notifier.sent, 1)
	assert.Len(t, f.publisher.events, 1)
	assert.Equal(t, models.PaymentCompleted, order.PaymentStatus)
}

// rollbackOrderRepo gives the transaction callback real rollback semantics:
// FindByIDForUpdate reads a copy, a failed callback restores the attempt
// rows, and only Save publishes the mutated order back to the store.
type rollbackOrderRepo struct {
	*fakeOrderRepo
	attemptStore *fakePaymentRepo
	saveFailures int
}

func (f *rollbackOrderRepo) Transaction(ctx context.Context, fn func(repository.OrderRepository, repository.PaymentRepository) error) error {
	snapshot := append([]models.PaymentAttempt(nil), f.attemptStore.attempts...)
	if err := fn(f, f.attemptStore); err != nil {
		f.attemptStore.attempts = snapshot
		return err
	}
	return nil
}

func (f *rollbackOrderRepo) FindByIDForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := f.fakeOrderRepo.FindByIDForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	cp := *order
	return &cp, nil
}

func (f *rollbackOrderRepo) Save(ctx context.Context, order *models.Order) error {
	if f.saveFailures > 0 {
		f.saveFailures--
		return errors.New("connection reset during commit")
	}
	return f.fakeOrderRepo.Save(ctx, order)
}

func TestSettlement_RetryAfterFailedTransitionStartsClean(t *testing.T) {
	user := testUser()
	order := pendingOrder(user.ID, 2900)

	logger, _ := zap.NewDevelopment()
	paymentRepo := &fakePaymentRepo{}
	orderRepo := &rollbackOrderRepo{
		fakeOrderRepo: newFakeOrderRepo(order),
		attemptStore:  paymentRepo,
		saveFailures:  1,
	}
	notifier := &fakeNotifier{}
	svc := services.NewPaymentService(
		orderRepo, paymentRepo, &fakeUserRepo{users: map[uuid.UUID]*models.User{user.ID: user}},
		&fakeGateway{}, notifier, &fakeRenderer{}, &fakePublisher{},
		"usd", logger,
	)

	settlement := services.Settlement{
		OrderID:       order.ID,
		Success:       true,
		TransactionID: str("pi_123"),
		Amount:        amount(2900),
	}

	// First delivery dies persisting the transition. The attempt row must
	// roll back with it: nothing stored, nothing sent, order untouched.
	appErr := svc.UpdatePaymentForOrder(context.Background(), settlement)
	assert.NotNil(t, appErr)
	assert.Empty(t, paymentRepo.attempts)
	assert.Empty(t, notifier.sent)
	assert.Equal(t, models.PaymentPending, orderRepo.orders[order.ID].PaymentStatus)

	// Redelivery starts clean and lands the settlement.
	assert.Nil(t, svc.UpdatePaymentForOrder(context.Background(), settlement))
	assert.Len(t, paymentRepo.attempts, 1)
	assert.Len(t, notifier.sent, 1)
	assert.Equal(t, models.PaymentCompleted, orderRepo.orders[order.ID].PaymentStatus)
	assert.Equal(t, models.OrderConfirmed, orderRepo.orders[order.ID].OrderStatus)
}

func TestSettlement_FailureThenSuccessIgnored(t *testing.T) {
	user := testUser()
	order := pendingOrder(user.ID, 2900)
	f := newPaymentFixture(user, order)

	assert.Nil(t, f.svc.UpdatePaymentForOrder(context.Background(), services.Settlement{
		OrderID: order.ID, Success: false, TransactionID: str("pi_1"),
	}))

	// The payment status is terminal; a late success must not flip it.
	assert.Nil(t, f.svc.UpdatePaymentForOrder(context.Background(), services.Settlement{
		OrderID: order.ID, Success: true, TransactionID: str("pi_2"),
	}))

	assert.Equal(t, models.PaymentFailed, order.PaymentStatus)
	assert.Equal(t, models.OrderCancelled, order.OrderStatus)
	assert.Len(t, f.paymentRepo.attempts, 1)
}

func TestSettlement_UnknownOrder(t *testing.T) {
	f := newPaymentFixture(nil)

	appErr := f.svc.UpdatePaymentForOrder(context.Background(), services.Settlement{
		OrderID: uuid.New(),
		Success: true,
	})

	assert.NotNil(t, appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
}

func TestSettlement_DefaultsAmountToOrderTotal(t *testing.T) {
	user := testUser()
	order := pendingOrder(user.ID, 1500)
	f := newPaymentFixture(user, order)

	appErr := f.svc.UpdatePaymentForOrder(context.Background(), services.Settlement{
		OrderID: order.ID,
		Success: true,
	})

	assert.Nil(t, appErr)
	assert.Equal(t, int64(1500), f.paymentRepo.attempts[0].Amount)
}

// ---- GetAttemptsForOrder ----

func TestGetAttempts_ReturnsHistory(t *testing.T) {
	user := testUser()
	order := pendingOrder(user.ID, 2900)
	f := newPaymentFixture(user, order)

	assert.Nil(t, f.svc.UpdatePaymentForOrder(context.Background(), services.Settlement{
		OrderID: order.ID, Success: true, TransactionID: str("pi_123"),
	}))

	attempts, appErr := f.svc.GetAttemptsForOrder(context.Background(), order.ID)

	assert.Nil(t, appErr)
	assert.Len(t, attempts, 1)
	assert.True(t, attempts[0].Success)
}

func TestGetAttempts_UnknownOrder(t *testing.T) {
	f := newPaymentFixture(nil)

	_, appErr := f.svc.GetAttemptsForOrder(context.Background(), uuid.New())

	assert.NotNil(t, appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
}
