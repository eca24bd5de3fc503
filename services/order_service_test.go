package services_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yashrajoria/food-ordering-backend/models"
	"github.com/yashrajoria/food-ordering-backend/repository"
	"github.com/yashrajoria/food-ordering-backend/services"
)

// ---- fakes ----

type fakeOrderRepo struct {
	orders   map[uuid.UUID]*models.Order
	created  []*models.Order
	payments repository.PaymentRepository
}

func newFakeOrderRepo(orders ...*models.Order) *fakeOrderRepo {
	m := make(map[uuid.UUID]*models.Order)
	for _, o := range orders {
		m[o.ID] = o
	}
	return &fakeOrderRepo{orders: m}
}

func (f *fakeOrderRepo) Transaction(ctx context.Context, fn func(repository.OrderRepository, repository.PaymentRepository) error) error {
	return fn(f, f.payments)
}

func (f *fakeOrderRepo) CreateWithItems(ctx context.Context, order *models.Order) error {
	order.ID = uuid.New()
	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
	}
	f.orders[order.ID] = order
	f.created = append(f.created, order)
	return nil
}

func (f *fakeOrderRepo) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (f *fakeOrderRepo) FindByIDForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return f.FindByID(ctx, orderID)
}

func (f *fakeOrderRepo) FindByIDAndUserID(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	order, ok := f.orders[orderID]
	if !ok || order.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (f *fakeOrderRepo) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepo) FindAll(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	var out []models.Order
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrderRepo) Save(ctx context.Context, order *models.Order) error {
	f.orders[order.ID] = order
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*models.User
}

func (f *fakeUserRepo) FindByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

type fakeNotifier struct {
	sent []services.NotificationRequest
	err  error
}

func (f *fakeNotifier) Send(ctx context.Context, req services.NotificationRequest) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, req)
	return nil
}

type fakeRenderer struct {
	rendered []string
	lastData any
	err      error
}

func (f *fakeRenderer) Render(name string, data any) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.rendered = append(f.rendered, name)
	f.lastData = data
	return "<html>" + name + "</html>", nil
}

type fakePublisher struct {
	events []models.OrderEvent
	err    error
}

func (f *fakePublisher) PublishOrderEvent(ctx context.Context, event models.OrderEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

// ---- helpers ----

type orderFixture struct {
	svc       services.OrderService
	orderRepo *fakeOrderRepo
	cartRepo  *fakeCartRepo
	cache     *fakeCartCache
	notifier  *fakeNotifier
	renderer  *fakeRenderer
	publisher *fakePublisher
}

func newOrderFixture(user *models.User, cart *models.Cart, orders ...*models.Order) *orderFixture {
	logger, _ := zap.NewDevelopment()
	f := &orderFixture{
		orderRepo: newFakeOrderRepo(orders...),
		cartRepo:  &fakeCartRepo{cart: cart},
		cache:     &fakeCartCache{},
		notifier:  &fakeNotifier{},
		renderer:  &fakeRenderer{},
		publisher: &fakePublisher{},
	}
	users := map[uuid.UUID]*models.User{}
	if user != nil {
		users[user.ID] = user
	}
	f.svc = services.NewOrderService(
		f.orderRepo, f.cartRepo, &fakeUserRepo{users: users}, f.cache,
		f.notifier, f.renderer, f.publisher,
		"http://localhost:3000/pay", logger,
	)
	return f
}

func testUser() *models.User {
	return &models.User{
		ID:      uuid.New(),
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Address: "456 Elm St, New York",
	}
}

func filledCart(userID uuid.UUID) *models.Cart {
	return cartWith(userID,
		models.CartItem{
			ID: uuid.New(), MenuItemID: uuid.New(),
			Name: "Burger", Quantity: 2, UnitPrice: 1250, Subtotal: 2500,
		},
		models.CartItem{
			ID: uuid.New(), MenuItemID: uuid.New(),
			Name: "Fries", Quantity: 1, UnitPrice: 400, Subtotal: 400,
		},
	)
}

// ---- PlaceOrderFromCart ----

func TestPlaceOrder_SnapshotsCartAndClearsIt(t *testing.T) {
	user := testUser()
	cart := filledCart(user.ID)
	f := newOrderFixture(user, cart)

	resp, appErr := f.svc.PlaceOrderFromCart(context.Background(), user.ID)

	assert.Nil(t, appErr)
	assert.Len(t, f.orderRepo.created, 1)

	order := f.orderRepo.created[0]
	assert.Equal(t, int64(2900), order.TotalAmount)
	assert.Equal(t, models.OrderInitialized, order.OrderStatus)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.Len(t, order.Items, 2)
	assert.Equal(t, "Burger", order.Items[0].Name)
	assert.Equal(t, int64(1250), order.Items[0].UnitPrice)

	// The ordered lines are gone and the cache no longer serves the stale
	// cart.
	assert.ElementsMatch(t, []uuid.UUID{cart.Items[0].ID, cart.Items[1].ID}, f.cartRepo.deletedIDs)
	assert.Equal(t, 1, f.cache.invalidated)

	assert.Equal(t, fmt.Sprintf("http://localhost:3000/pay/%s", order.ID), resp.PaymentLink)
	assert.Equal(t, int64(2900), resp.Order.TotalAmount)
}

func TestPlaceOrder_LineAddedDuringCheckoutSurvives(t *testing.T) {
	user := testUser()
	cart := filledCart(user.ID)
	f := newOrderFixture(user, cart)

	// Another request lands a new line between the snapshot read and the
	// cart clear. It must not be ordered, and it must not be deleted.
	lateLine := models.CartItem{
		ID: uuid.New(), MenuItemID: uuid.New(),
		Name: "Soda", Quantity: 1, UnitPrice: 250, Subtotal: 250,
	}
	f.cartRepo.afterFind = func() {
		f.cartRepo.cart.Items = append(f.cartRepo.cart.Items, lateLine)
		f.cartRepo.afterFind = nil
	}

	resp, appErr := f.svc.PlaceOrderFromCart(context.Background(), user.ID)

	assert.Nil(t, appErr)
	assert.Len(t, resp.Order.Items, 2)
	assert.Equal(t, int64(2900), resp.Order.TotalAmount)
	assert.NotContains(t, f.cartRepo.deletedIDs, lateLine.ID)
	assert.ElementsMatch(t, []uuid.UUID{cart.Items[0].ID, cart.Items[1].ID}, f.cartRepo.deletedIDs)
}

func TestPlaceOrder_SendsConfirmationAndPublishesEvent(t *testing.T) {
	user := testUser()
	f := newOrderFixture(user, filledCart(user.ID))

	_, appErr := f.svc.PlaceOrderFromCart(context.Background(), user.ID)

	assert.Nil(t, appErr)
	assert.Equal(t, []string{services.TemplateOrderConfirmation}, f.renderer.rendered)
	assert.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "jane@example.com", f.notifier.sent[0].Recipient)
	assert.Equal(t, "Your order has been placed", f.notifier.sent[0].Subject)

	assert.Len(t, f.publisher.events, 1)
	assert.Equal(t, models.EventOrderPlaced, f.publisher.events[0].Type)
	assert.Equal(t, string(models.PaymentPending), f.publisher.events[0].PaymentStatus)
}

func TestPlaceOrder_UserWithoutAddress(t *testing.T) {
	user := testUser()
	user.Address = ""
	f := newOrderFixture(user, filledCart(user.ID))

	_, appErr := f.svc.PlaceOrderFromCart(context.Background(), user.ID)

	assert.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Empty(t, f.orderRepo.created)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	user := testUser()
	f := newOrderFixture(user, cartWith(user.ID))

	_, appErr := f.svc.PlaceOrderFromCart(context.Background(), user.ID)

	assert.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Equal(t, "Cart is empty", appErr.Message)
}

func TestPlaceOrder_MissingUser(t *testing.T) {
	f := newOrderFixture(nil, nil)

	_, appErr := f.svc.PlaceOrderFromCart(context.Background(), uuid.New())

	assert.NotNil(t, appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
	assert.Equal(t, "User not found", appErr.Message)
}

func TestPlaceOrder_MissingCart(t *testing.T) {
	user := testUser()
	f := newOrderFixture(user, nil)

	_, appErr := f.svc.PlaceOrderFromCart(context.Background(), user.ID)

	assert.NotNil(t, appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
	assert.Equal(t, "Cart not found", appErr.Message)
}

func TestPlaceOrder_EmailFailureSurfaces(t *testing.T) {
	user := testUser()
	f := newOrderFixture(user, filledCart(user.ID))
	f.notifier.err = errors.New("smtp: connection refused")

	_, appErr := f.svc.PlaceOrderFromCart(context.Background(), user.ID)

	assert.NotNil(t, appErr)
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	// The order was still persisted; only the confirmation failed.
	assert.Len(t, f.orderRepo.created, 1)
}

func TestPlaceOrder_PublishFailureDoesNotFailCheckout(t *testing.T) {
	user := testUser()
	f := newOrderFixture(user, filledCart(user.ID))
	f.publisher.err = errors.New("kafka: broker unreachable")

	resp, appErr := f.svc.PlaceOrderFromCart(context.Background(), user.ID)

	assert.Nil(t, appErr)
	assert.NotNil(t, resp)
	assert.Len(t, f.notifier.sent, 1)
}

// ---- reads ----

func TestGetOrderByID_ScopedToOwner(t *testing.T) {
	user := testUser()
	order := &models.Order{
		ID: uuid.New(), UserID: user.ID,
		TotalAmount:   2900,
		OrderStatus:   models.OrderInitialized,
		PaymentStatus: models.PaymentPending,
	}
	f := newOrderFixture(user, nil, order)

	resp, appErr := f.svc.GetOrderByID(context.Background(), user.ID, order.ID)
	assert.Nil(t, appErr)
	assert.Equal(t, order.ID, resp.ID)

	_, appErr = f.svc.GetOrderByID(context.Background(), uuid.New(), order.ID)
	assert.NotNil(t, appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
}

func TestGetUserOrders_PagingMeta(t *testing.T) {
	user := testUser()
	order := &models.Order{ID: uuid.New(), UserID: user.ID, TotalAmount: 500}
	f := newOrderFixture(user, nil, order)

	resp, appErr := f.svc.GetUserOrders(context.Background(), user.ID, 0, 0)

	assert.Nil(t, appErr)
	assert.Len(t, resp.Orders, 1)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 10, resp.Meta.Limit)
	assert.Equal(t, int64(1), resp.Meta.TotalOrders)
	assert.False(t, resp.Meta.HasMore)
}

// ---- UpdateOrderStatus ----

func TestUpdateOrderStatus_AllowedTransition(t *testing.T) {
	order := &models.Order{
		ID: uuid.New(), UserID: uuid.New(),
		OrderStatus:   models.OrderConfirmed,
		PaymentStatus: models.PaymentCompleted,
	}
	f := newOrderFixture(nil, nil, order)

	resp, appErr := f.svc.UpdateOrderStatus(context.Background(), order.ID, models.OrderOnTheWay)

	assert.Nil(t, appErr)
	assert.Equal(t, models.OrderOnTheWay, resp.OrderStatus)
}

func TestUpdateOrderStatus_RejectedTransition(t *testing.T) {
	order := &models.Order{
		ID: uuid.New(), UserID: uuid.New(),
		OrderStatus:   models.OrderDelivered,
		PaymentStatus: models.PaymentCompleted,
	}
	f := newOrderFixture(nil, nil, order)

	_, appErr := f.svc.UpdateOrderStatus(context.Background(), order.ID, models.OrderConfirmed)

	assert.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Equal(t, models.OrderDelivered, f.orderRepo.orders[order.ID].OrderStatus)
}

func TestUpdateOrderStatus_UnknownOrder(t *testing.T) {
	f := newOrderFixture(nil, nil)

	_, appErr := f.svc.UpdateOrderStatus(context.Background(), uuid.New(), models.OrderConfirmed)

	assert.NotNil(t, appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
}
