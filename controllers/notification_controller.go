package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/food-ordering-backend/middleware"
	"github.com/yashrajoria/food-ordering-backend/repository"
	"github.com/yashrajoria/food-ordering-backend/response"
)

// NotificationController exposes the caller's notification history. Every
// outbound email is logged, sent or failed, so this doubles as a delivery
// audit for support.
type NotificationController struct {
	Repo repository.NotificationRepository
}

func NewNotificationController(repo repository.NotificationRepository) *NotificationController {
	return &NotificationController{Repo: repo}
}

func (nc *NotificationController) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	logs, total, err := nc.Repo.FindByUserID(c, middleware.GetUserID(c), page, limit)
	if err != nil {
		response.Fail(c, response.Persistence("Failed to fetch notifications", err))
		return
	}
	response.OK(c, "Notifications retrieved", gin.H{"notifications": logs, "total": total})
}
