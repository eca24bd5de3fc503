package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yashrajoria/food-ordering-backend/models"
	"github.com/yashrajoria/food-ordering-backend/repository"
	"github.com/yashrajoria/food-ordering-backend/response"
)

// PaymentInitRequest asks for a payment intent. Amount is the client's
// claim and must tally exactly with the persisted order total; the order
// is the only trusted source.
type PaymentInitRequest struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
	Amount  *int64    `json:"amount" binding:"required"`
}

// Settlement is the gateway's report of a payment outcome, delivered via
// webhook. Redelivery of the same settlement must be harmless.
type Settlement struct {
	OrderID       uuid.UUID `json:"order_id"`
	Success       bool      `json:"success"`
	TransactionID *string   `json:"transaction_id,omitempty"`
	Amount        *int64    `json:"amount,omitempty"`
	FailureReason *string   `json:"failure_reason,omitempty"`
}

type PaymentService interface {
	InitializePayment(ctx context.Context, req PaymentInitRequest) (clientSecret string, appErr *response.Error)
	UpdatePaymentForOrder(ctx context.Context, settlement Settlement) *response.Error
	GetAttemptsForOrder(ctx context.Context, orderID uuid.UUID) ([]models.PaymentAttempt, *response.Error)
}

type paymentService struct {
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	userRepo    repository.UserRepository
	gateway     PaymentGateway
	notifier    Notifier
	templates   TemplateRenderer
	events      EventPublisher
	currency    string
	logger      *zap.Logger
}

func NewPaymentService(
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	gateway PaymentGateway,
	notifier Notifier,
	templates TemplateRenderer,
	events EventPublisher,
	currency string,
	logger *zap.Logger,
) PaymentService {
	return &paymentService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		notifier:    notifier,
		templates:   templates,
		events:      events,
		currency:    currency,
		logger:      logger,
	}
}

// InitializePayment validates the claimed amount against the order and
// creates a gateway payment intent for the order total. No gateway call is
// made unless every check passes.
func (s *paymentService) InitializePayment(ctx context.Context, req PaymentInitRequest) (string, *response.Error) {
	order, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", response.NotFound("Order not found")
		}
		return "", response.Persistence("Failed to fetch order", err)
	}

	if order.PaymentStatus == models.PaymentCompleted {
		return "", response.BadRequest("Payment already completed for this order")
	}
	if req.Amount == nil {
		return "", response.BadRequest("Payment amount is required")
	}
	if order.TotalAmount <= 0 {
		return "", response.BadRequest("Order total is invalid")
	}
	if *req.Amount != order.TotalAmount {
		return "", response.BadRequest("Payment amount does not tally with the order total")
	}

	clientSecret, err := s.gateway.CreateIntent(ctx, order.TotalAmount, s.currency, order.ID.String())
	if err != nil {
		return "", response.Gateway("Failed to create payment intent", err)
	}

	s.logger.Info("payment intent created",
		zap.String("order_id", order.ID.String()),
		zap.Int64("amount", order.TotalAmount),
	)

	return clientSecret, nil
}

// UpdatePaymentForOrder applies a settlement: appends a PaymentAttempt,
// transitions order and payment status, and emails the user. The order row
// is locked for the transition so a concurrent initialization cannot race
// it, and the attempt row commits in the same transaction as the
// transition, so a failed delivery leaves nothing behind and a retry starts
// clean. Redelivery after a successful transition finds a terminal payment
// status and is a no-op: no second attempt row, no second email.
func (s *paymentService) UpdatePaymentForOrder(ctx context.Context, settlement Settlement) *response.Error {
	var order *models.Order
	var duplicate bool
	var appErr *response.Error

	txErr := s.orderRepo.Transaction(ctx, func(r repository.OrderRepository, attempts repository.PaymentRepository) error {
		var err error
		order, err = r.FindByIDForUpdate(ctx, settlement.OrderID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			appErr = response.NotFound("Order not found")
			return nil
		}
		if err != nil {
			return err
		}

		if order.PaymentStatus.Terminal() {
			duplicate = true
			return nil
		}

		amount := order.TotalAmount
		if settlement.Amount != nil {
			amount = *settlement.Amount
		}
		attempt := &models.PaymentAttempt{
			OrderID:              order.ID,
			Amount:               amount,
			GatewayTransactionID: settlement.TransactionID,
			Success:              settlement.Success,
			FailureReason:        settlement.FailureReason,
			SettledAt:            time.Now(),
		}
		if err := attempts.Create(ctx, attempt); err != nil {
			return err
		}

		if settlement.Success {
			order.PaymentStatus = models.PaymentCompleted
			order.OrderStatus = models.OrderConfirmed
		} else {
			order.PaymentStatus = models.PaymentFailed
			order.OrderStatus = models.OrderCancelled
		}
		return r.Save(ctx, order)
	})
	if txErr != nil {
		return response.Persistence("Failed to apply settlement", txErr)
	}
	if appErr != nil {
		return appErr
	}
	if duplicate {
		s.logger.Info("settlement ignored, payment already settled",
			zap.String("order_id", settlement.OrderID.String()),
		)
		return nil
	}

	if err := s.notifySettlement(ctx, order, settlement); err != nil {
		return err
	}

	s.publishEvent(ctx, models.OrderEvent{
		Type:          models.EventPaymentSettled,
		OrderID:       order.ID,
		UserID:        order.UserID,
		TotalAmount:   order.TotalAmount,
		PaymentStatus: string(order.PaymentStatus),
		Timestamp:     time.Now().UTC(),
	})

	s.logger.Info("settlement applied",
		zap.String("order_id", order.ID.String()),
		zap.Bool("success", settlement.Success),
		zap.String("payment_status", string(order.PaymentStatus)),
	)

	return nil
}

func (s *paymentService) notifySettlement(ctx context.Context, order *models.Order, settlement Settlement) *response.Error {
	user, err := s.userRepo.FindByID(ctx, order.UserID)
	if err != nil {
		return response.Persistence("Failed to resolve order owner", err)
	}

	var templateName, subject string
	data := map[string]any{
		"Name":        user.Name,
		"OrderID":     order.ID.String(),
		"TotalAmount": formatAmount(order.TotalAmount),
	}

	if settlement.Success {
		templateName = TemplatePaymentSuccess
		subject = "Payment received"
	} else {
		templateName = TemplatePaymentFailed
		subject = "Payment failed"
		reason := "Your payment could not be processed."
		if settlement.FailureReason != nil && *settlement.FailureReason != "" {
			reason = *settlement.FailureReason
		}
		data["Reason"] = reason
	}

	body, err := s.templates.Render(templateName, data)
	if err != nil {
		return response.Notification("Failed to render payment notification", err)
	}
	if err := s.notifier.Send(ctx, NotificationRequest{
		UserID:    order.UserID,
		Recipient: user.Email,
		Subject:   subject,
		Body:      body,
	}); err != nil {
		return response.Notification("Failed to send payment notification", err)
	}
	return nil
}

func (s *paymentService) GetAttemptsForOrder(ctx context.Context, orderID uuid.UUID) ([]models.PaymentAttempt, *response.Error) {
	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFound("Order not found")
		}
		return nil, response.Persistence("Failed to fetch order", err)
	}

	attempts, err := s.paymentRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, response.Persistence("Failed to fetch payment attempts", err)
	}
	return attempts, nil
}

func (s *paymentService) publishEvent(ctx context.Context, event models.OrderEvent) {
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
