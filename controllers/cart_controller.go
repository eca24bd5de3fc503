package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yashrajoria/food-ordering-backend/middleware"
	"github.com/yashrajoria/food-ordering-backend/response"
	"github.com/yashrajoria/food-ordering-backend/services"
)

type CartController struct {
	Service services.CartService
}

func NewCartController(service services.CartService) *CartController {
	return &CartController{Service: service}
}

type addItemRequest struct {
	MenuItemID uuid.UUID `json:"menu_item_id" binding:"required"`
	Quantity   int       `json:"quantity" binding:"required,min=1"`
}

// AddItem adds a menu item to the cart, merging with an existing line.
func (cc *CartController) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.BadRequest("menu_item_id and a positive quantity are required"))
		return
	}

	userID := middleware.GetUserID(c)
	cart, appErr := cc.Service.AddItem(c, userID, req.MenuItemID, req.Quantity)
	if appErr != nil {
		response.Fail(c, appErr)
		return
	}
	response.OK(c, "Item added to cart", cart)
}

func (cc *CartController) IncrementItem(c *gin.Context) {
	menuItemID, err := uuid.Parse(c.Param("menuItemId"))
	if err != nil {
		response.Fail(c, response.BadRequest("menuItemId is required"))
		return
	}

	cart, appErr := cc.Service.IncrementItem(c, middleware.GetUserID(c), menuItemID)
	if appErr != nil {
		response.Fail(c, appErr)
		return
	}
	response.OK(c, "Item incremented", cart)
}

func (cc *CartController) DecrementItem(c *gin.Context) {
	menuItemID, err := uuid.Parse(c.Param("menuItemId"))
	if err != nil {
		response.Fail(c, response.BadRequest("menuItemId is required"))
		return
	}

	cart, appErr := cc.Service.DecrementItem(c, middleware.GetUserID(c), menuItemID)
	if appErr != nil {
		response.Fail(c, appErr)
		return
	}
	response.OK(c, "Item decremented", cart)
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	cartItemID, err := uuid.Parse(c.Param("cartItemId"))
	if err != nil {
		response.Fail(c, response.BadRequest("cartItemId is required"))
		return
	}

	cart, appErr := cc.Service.RemoveItem(c, middleware.GetUserID(c), cartItemID)
	if appErr != nil {
		response.Fail(c, appErr)
		return
	}
	response.OK(c, "Item removed from cart", cart)
}

func (cc *CartController) GetCart(c *gin.Context) {
	cart, appErr := cc.Service.GetCart(c, middleware.GetUserID(c))
	if appErr != nil {
		response.Fail(c, appErr)
		return
	}
	response.OK(c, "Cart retrieved", cart)
}

func (cc *CartController) ClearCart(c *gin.Context) {
	if appErr := cc.Service.ClearCart(c, middleware.GetUserID(c)); appErr != nil {
		response.Fail(c, appErr)
		return
	}
	response.OK(c, "Cart cleared", nil)
}
