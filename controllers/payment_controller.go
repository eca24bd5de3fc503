package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	"github.com/yashrajoria/food-ordering-backend/response"
	"github.com/yashrajoria/food-ordering-backend/services"
)

type PaymentController struct {
	Service services.PaymentService
	Stripe  *services.StripeService
	Logger  *zap.Logger
}

func NewPaymentController(service services.PaymentService, stripeSvc *services.StripeService, logger *zap.Logger) *PaymentController {
	return &PaymentController{Service: service, Stripe: stripeSvc, Logger: logger}
}

// InitiatePayment creates a payment intent for an order and returns the
// client secret the frontend uses to complete the charge.
func (pc *PaymentController) InitiatePayment(c *gin.Context) {
	var req services.PaymentInitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.BadRequest("order_id and amount are required"))
		return
	}

	clientSecret, appErr := pc.Service.InitializePayment(c, req)
	if appErr != nil {
		response.Fail(c, appErr)
		return
	}
	response.OK(c, "Payment initialized", clientSecret)
}

// UpdatePayment applies a settlement delivered as a direct callback body.
func (pc *PaymentController) UpdatePayment(c *gin.Context) {
	var settlement services.Settlement
	if err := c.ShouldBindJSON(&settlement); err != nil {
		response.Fail(c, response.BadRequest("invalid settlement payload"))
		return
	}
	if settlement.OrderID == uuid.Nil {
		response.Fail(c, response.BadRequest("order_id is required"))
		return
	}

	if appErr := pc.Service.UpdatePaymentForOrder(c, settlement); appErr != nil {
		response.Fail(c, appErr)
		return
	}
	response.OK(c, "Payment updated", nil)
}

// GetAttempts lists the settlement audit trail for an order.
func (pc *PaymentController) GetAttempts(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		response.Fail(c, response.BadRequest("order id is required"))
		return
	}

	attempts, appErr := pc.Service.GetAttemptsForOrder(c, orderID)
	if appErr != nil {
		response.Fail(c, appErr)
		return
	}
	response.OK(c, "Payment attempts retrieved", attempts)
}

// StripeWebhook verifies and applies gateway settlement events. Any
// processing failure returns 5xx so Stripe redelivers; redelivery after a
// successful transition is a no-op in the service.
func (pc *PaymentController) StripeWebhook(c *gin.Context) {
	event, err := pc.Stripe.ParseWebhook(c.Request)
	if err != nil {
		response.Fail(c, response.BadRequest("Invalid webhook"))
		return
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	settlement, err := settlementFromEvent(event)
	if err != nil {
		pc.Logger.Warn("unusable stripe event", zap.String("type", string(event.Type)), zap.Error(err))
		response.Fail(c, response.BadRequest("Invalid webhook payload"))
		return
	}

	if appErr := pc.Service.UpdatePaymentForOrder(c, settlement); appErr != nil {
		// Not-found here means a payment intent we never issued; ack it so
		// Stripe stops redelivering.
		if appErr.IsNotFound() {
			pc.Logger.Warn("settlement for unknown order",
				zap.String("order_id", settlement.OrderID.String()),
			)
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}
		response.Fail(c, appErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

func settlementFromEvent(event stripe.Event) (services.Settlement, error) {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return services.Settlement{}, err
	}

	orderID, err := uuid.Parse(pi.Metadata["order_id"])
	if err != nil {
		return services.Settlement{}, err
	}

	settlement := services.Settlement{
		OrderID:       orderID,
		Success:       event.Type == "payment_intent.succeeded",
		TransactionID: &pi.ID,
		Amount:        &pi.Amount,
	}
	if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
		settlement.FailureReason = &pi.LastPaymentError.Msg
	}
	return settlement, nil
}
