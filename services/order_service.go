package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yashrajoria/food-ordering-backend/models"
	"github.com/yashrajoria/food-ordering-backend/repository"
	"github.com/yashrajoria/food-ordering-backend/response"
)

// EventPublisher publishes domain events after commit. Failures are logged,
// never surfaced: the order is already durable.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event models.OrderEvent) error
}

type OrderService interface {
	PlaceOrderFromCart(ctx context.Context, userID uuid.UUID) (*PlacedOrderResponse, *response.Error)
	GetOrderByID(ctx context.Context, userID, orderID uuid.UUID) (*OrderResponse, *response.Error)
	GetUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) (*OrderListResponse, *response.Error)
	GetAllOrders(ctx context.Context, page, limit int) (*OrderListResponse, *response.Error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*OrderResponse, *response.Error)
}

type orderService struct {
	orderRepo      repository.OrderRepository
	cartRepo       repository.CartRepository
	userRepo       repository.UserRepository
	cartCache      repository.CartCache
	notifier       Notifier
	templates      TemplateRenderer
	events         EventPublisher
	paymentBaseURL string
	logger         *zap.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	userRepo repository.UserRepository,
	cartCache repository.CartCache,
	notifier Notifier,
	templates TemplateRenderer,
	events EventPublisher,
	paymentBaseURL string,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		orderRepo:      orderRepo,
		cartRepo:       cartRepo,
		userRepo:       userRepo,
		cartCache:      cartCache,
		notifier:       notifier,
		templates:      templates,
		events:         events,
		paymentBaseURL: paymentBaseURL,
		logger:         logger,
	}
}

// PlaceOrderFromCart converts the user's cart into an immutable order.
// The order and its items commit in one transaction; clearing the cart and
// sending the confirmation email happen after commit and fail the whole
// call if they fail, so callers retry placement.
func (s *orderService) PlaceOrderFromCart(ctx context.Context, userID uuid.UUID) (*PlacedOrderResponse, *response.Error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFound("User not found")
		}
		return nil, response.Persistence("Failed to resolve user", err)
	}
	if user.Address == "" {
		return nil, response.BadRequest("Delivery address required before placing an order")
	}

	cart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFound("Cart not found")
		}
		return nil, response.Persistence("Failed to fetch cart", err)
	}
	if len(cart.Items) == 0 {
		return nil, response.BadRequest("Cart is empty")
	}

	// Snapshot every cart line verbatim. The catalog is not re-read; the
	// captured price is the contract with the user.
	orderItems := make([]models.OrderItem, 0, len(cart.Items))
	lineIDs := make([]uuid.UUID, 0, len(cart.Items))
	var total int64
	for _, line := range cart.Items {
		orderItems = append(orderItems, models.OrderItem{
			MenuItemID: line.MenuItemID,
			Name:       line.Name,
			UnitPrice:  line.UnitPrice,
			Quantity:   line.Quantity,
			Subtotal:   line.Subtotal,
		})
		lineIDs = append(lineIDs, line.ID)
		total += line.Subtotal
	}

	order := &models.Order{
		UserID:        userID,
		OrderedAt:     time.Now(),
		TotalAmount:   total,
		OrderStatus:   models.OrderInitialized,
		PaymentStatus: models.PaymentPending,
		Items:         orderItems,
	}

	if err := s.orderRepo.CreateWithItems(ctx, order); err != nil {
		return nil, response.Persistence("Failed to place order", err)
	}

	// Point of no return before payment: the order is only considered
	// placed once the ordered lines are gone. Only the snapshotted lines
	// are removed; a line added concurrently stays in the cart.
	if err := s.cartRepo.DeleteItemsByID(ctx, lineIDs); err != nil {
		return nil, response.Persistence("Failed to clear cart after checkout", err)
	}
	if s.cartCache != nil {
		if err := s.cartCache.Invalidate(ctx, userID); err != nil {
			s.logger.Warn("cart cache invalidation failed after checkout", zap.Error(err))
		}
	}

	paymentLink := fmt.Sprintf("%s/%s", s.paymentBaseURL, order.ID)

	body, err := s.templates.Render(TemplateOrderConfirmation, map[string]any{
		"Name":        user.Name,
		"OrderID":     order.ID.String(),
		"TotalAmount": formatAmount(order.TotalAmount),
		"PaymentLink": paymentLink,
		"Items":       newOrderResponse(order).Items,
	})
	if err != nil {
		return nil, response.Notification("Failed to render order confirmation", err)
	}
	if err := s.notifier.Send(ctx, NotificationRequest{
		UserID:    userID,
		Recipient: user.Email,
		Subject:   "Your order has been placed",
		Body:      body,
	}); err != nil {
		return nil, response.Notification("Failed to send order confirmation", err)
	}

	s.publishEvent(ctx, models.OrderEvent{
		Type:          models.EventOrderPlaced,
		OrderID:       order.ID,
		UserID:        userID,
		TotalAmount:   order.TotalAmount,
		PaymentStatus: string(order.PaymentStatus),
		Timestamp:     time.Now().UTC(),
	})

	s.logger.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Int64("total_amount", order.TotalAmount),
	)

	return &PlacedOrderResponse{
		Order:       newOrderResponse(order),
		PaymentLink: paymentLink,
	}, nil
}

func (s *orderService) GetOrderByID(ctx context.Context, userID, orderID uuid.UUID) (*OrderResponse, *response.Error) {
	order, err := s.orderRepo.FindByIDAndUserID(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFound("Order not found")
		}
		return nil, response.Persistence("Failed to fetch order", err)
	}
	return newOrderResponse(order), nil
}

func (s *orderService) GetUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) (*OrderListResponse, *response.Error) {
	page, limit = normalizePaging(page, limit)

	orders, total, err := s.orderRepo.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, response.Persistence("Failed to fetch orders", err)
	}
	return newOrderListResponse(orders, page, limit, total), nil
}

func (s *orderService) GetAllOrders(ctx context.Context, page, limit int) (*OrderListResponse, *response.Error) {
	page, limit = normalizePaging(page, limit)

	orders, total, err := s.orderRepo.FindAll(ctx, page, limit)
	if err != nil {
		return nil, response.Persistence("Failed to fetch orders", err)
	}
	return newOrderListResponse(orders, page, limit, total), nil
}

// UpdateOrderStatus moves an order along the fulfillment path. Payment
// driven transitions never come through here; they belong to settlement.
func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*OrderResponse, *response.Error) {
	var updated *models.Order
	var appErr *response.Error

	txErr := s.orderRepo.Transaction(ctx, func(r repository.OrderRepository, _ repository.PaymentRepository) error {
		order, err := r.FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			appErr = response.NotFound("Order not found")
			return nil
		}
		if err != nil {
			return err
		}

		if !order.OrderStatus.CanTransitionTo(status) {
			appErr = response.BadRequest(fmt.Sprintf("Cannot transition order from %s to %s", order.OrderStatus, status))
			return nil
		}

		order.OrderStatus = status
		if err := r.Save(ctx, order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if txErr != nil {
		return nil, response.Persistence("Failed to update order status", txErr)
	}
	if appErr != nil {
		return nil, appErr
	}

	return newOrderResponse(updated), nil
}

func (s *orderService) publishEvent(ctx context.Context, event models.OrderEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderEvent(ctx, event); err != nil {
		s.logger.Warn("order event publish failed",
			zap.String("type", event.Type),
			zap.String("order_id", event.OrderID.String()),
			zap.Error(err),
		)
	}
}

func newOrderListResponse(orders []models.Order, page, limit int, total int64) *OrderListResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, *newOrderResponse(&orders[i]))
	}
	return &OrderListResponse{
		Orders: out,
		Meta:   newMetaData(page, limit, total),
	}
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func formatAmount(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
