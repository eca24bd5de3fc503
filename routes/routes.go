package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/food-ordering-backend/controllers"
	"github.com/yashrajoria/food-ordering-backend/middleware"
)

// RegisterRoutes wires all HTTP endpoints. The Stripe webhook is the only
// unauthenticated write path; it is verified by signature instead of the
// gateway identity headers.
func RegisterRoutes(
	router *gin.Engine,
	cartCtrl *controllers.CartController,
	orderCtrl *controllers.OrderController,
	paymentCtrl *controllers.PaymentController,
	menuCtrl *controllers.MenuController,
	notificationCtrl *controllers.NotificationController,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})

	api := router.Group("/api")

	menus := api.Group("/menus")
	{
		menus.GET("", menuCtrl.List)
		menus.GET("/:id", menuCtrl.GetByID)
	}

	cart := api.Group("/cart", middleware.AuthMiddleware())
	{
		cart.GET("", cartCtrl.GetCart)
		cart.POST("/items", cartCtrl.AddItem)
		cart.PATCH("/items/:menuItemId/increment", cartCtrl.IncrementItem)
		cart.PATCH("/items/:menuItemId/decrement", cartCtrl.DecrementItem)
		cart.DELETE("/items/:cartItemId", cartCtrl.RemoveItem)
		cart.DELETE("", cartCtrl.ClearCart)
	}

	orders := api.Group("/orders", middleware.AuthMiddleware())
	{
		orders.POST("/checkout", orderCtrl.Checkout)
		orders.GET("", orderCtrl.GetMyOrders)
		orders.GET("/:id", orderCtrl.GetOrderByID)
	}

	payments := api.Group("/payments")
	{
		payments.POST("/webhook", paymentCtrl.StripeWebhook)

		authed := payments.Group("", middleware.AuthMiddleware())
		authed.POST("/initiate", paymentCtrl.InitiatePayment)
		authed.GET("/attempts/:orderId", paymentCtrl.GetAttempts)

		// Direct settlement bypasses gateway signature verification, so
		// only operators may call it; everyone else settles via webhook.
		authed.POST("/update", middleware.AdminMiddleware(), paymentCtrl.UpdatePayment)
	}

	api.GET("/notifications", middleware.AuthMiddleware(), notificationCtrl.History)

	admin := api.Group("/admin", middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/orders", orderCtrl.GetAllOrders)
		admin.PATCH("/orders/:id/status", orderCtrl.UpdateStatus)
	}
}
