package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yashrajoria/food-ordering-backend/middleware"
	"github.com/yashrajoria/food-ordering-backend/models"
	"github.com/yashrajoria/food-ordering-backend/response"
	"github.com/yashrajoria/food-ordering-backend/services"
)

type OrderController struct {
	Service services.OrderService
}

func NewOrderController(service services.OrderService) *OrderController {
	return &OrderController{Service: service}
}

// Checkout places an order from the caller's cart.
func (oc *OrderController) Checkout(c *gin.Context) {
	placed, appErr := oc.Service.PlaceOrderFromCart(c, middleware.GetUserID(c))
	if appErr != nil {
		response.Fail(c, appErr)
		return
	}
	response.OK(c, "Order placed", placed)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, response.BadRequest("order id is required"))
		return
	}

	order, appErr := oc.Service.GetOrderByID(c, middleware.GetUserID(c), orderID)
	if appErr != nil {
		response.Fail(c, appErr)
		return
	}
	response.OK(c, "Order retrieved", order)
}

func (oc *OrderController) GetMyOrders(c *gin.Context) {
	page, limit := paging(c)
	orders, appErr := oc.Service.GetUserOrders(c, middleware.GetUserID(c), page, limit)
	if appErr != nil {
		response.Fail(c, appErr)
		return
	}
	response.OK(c, "Orders retrieved", orders)
}

// GetAllOrders lists every order; admin only.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	page, limit := paging(c)
	orders, appErr := oc.Service.GetAllOrders(c, page, limit)
	if appErr != nil {
		response.Fail(c, appErr)
		return
	}
	response.OK(c, "Orders retrieved", orders)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus moves an order along the fulfillment path; admin only.
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, response.BadRequest("order id is required"))
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.BadRequest("status is required"))
		return
	}
	status, ok := models.ParseOrderStatus(req.Status)
	if !ok {
		response.Fail(c, response.BadRequest("unknown order status"))
		return
	}

	order, appErr := oc.Service.UpdateOrderStatus(c, orderID, status)
	if appErr != nil {
		response.Fail(c, appErr)
		return
	}
	response.OK(c, "Order status updated", order)
}

func paging(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	return page, limit
}
