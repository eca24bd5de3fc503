package controllers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yashrajoria/food-ordering-backend/repository"
	"github.com/yashrajoria/food-ordering-backend/response"
)

// MenuController exposes read-only catalog browsing. Catalog management
// lives in a separate service.
type MenuController struct {
	Repo repository.MenuRepository
}

func NewMenuController(repo repository.MenuRepository) *MenuController {
	return &MenuController{Repo: repo}
}

func (mc *MenuController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	items, total, err := mc.Repo.FindAll(c, page, limit)
	if err != nil {
		response.Fail(c, response.Persistence("Failed to fetch menu", err))
		return
	}
	response.OK(c, "Menu retrieved", gin.H{"items": items, "total": total})
}

func (mc *MenuController) GetByID(c *gin.Context) {
	menuItemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, response.BadRequest("menu item id is required"))
		return
	}

	item, err := mc.Repo.FindByID(c, menuItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, response.NotFound("Menu item not found"))
			return
		}
		response.Fail(c, response.Persistence("Failed to fetch menu item", err))
		return
	}
	response.OK(c, "Menu item retrieved", item)
}
