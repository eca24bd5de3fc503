package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/yashrajoria/food-ordering-backend/models"
)

// Response projections. Read paths return these narrow shapes instead of
// trimming a loaded object graph: no nested user objects, no menu review
// lists inside item payloads.

type CartItemResponse struct {
	ID         uuid.UUID `json:"id"`
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	UnitPrice  int64     `json:"unit_price"`
	Subtotal   int64     `json:"subtotal"`
}

type CartResponse struct {
	ID     uuid.UUID          `json:"id"`
	UserID uuid.UUID          `json:"user_id"`
	Items  []CartItemResponse `json:"items"`
	Total  int64              `json:"total"`
}

func newCartResponse(cart *models.Cart) *CartResponse {
	items := make([]CartItemResponse, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, CartItemResponse{
			ID:         item.ID,
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			Subtotal:   item.Subtotal,
		})
	}
	return &CartResponse{
		ID:     cart.ID,
		UserID: cart.UserID,
		Items:  items,
		Total:  cart.Total(),
	}
}

type OrderItemResponse struct {
	ID         uuid.UUID `json:"id"`
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	UnitPrice  int64     `json:"unit_price"`
	Quantity   int       `json:"quantity"`
	Subtotal   int64     `json:"subtotal"`
}

type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	UserID        uuid.UUID           `json:"user_id"`
	OrderedAt     time.Time           `json:"ordered_at"`
	TotalAmount   int64               `json:"total_amount"`
	OrderStatus   models.OrderStatus  `json:"order_status"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	Items         []OrderItemResponse `json:"items"`
}

func newOrderResponse(order *models.Order) *OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:         item.ID,
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
			Subtotal:   item.Subtotal,
		})
	}
	return &OrderResponse{
		ID:            order.ID,
		UserID:        order.UserID,
		OrderedAt:     order.OrderedAt,
		TotalAmount:   order.TotalAmount,
		OrderStatus:   order.OrderStatus,
		PaymentStatus: order.PaymentStatus,
		Items:         items,
	}
}

// PlacedOrderResponse is returned from checkout: the persisted order plus
// the link the client follows to pay for it.
type PlacedOrderResponse struct {
	Order       *OrderResponse `json:"order"`
	PaymentLink string         `json:"payment_link"`
}

type MetaData struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalOrders int64 `json:"total_orders"`
	TotalPages  int64 `json:"total_pages"`
	HasMore     bool  `json:"has_more"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Meta   MetaData        `json:"meta"`
}

func newMetaData(page, limit int, total int64) MetaData {
	return MetaData{
		Page:        page,
		Limit:       limit,
		TotalOrders: total,
		TotalPages:  calculateTotalPages(total, limit),
		HasMore:     total > int64(page*limit),
	}
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
