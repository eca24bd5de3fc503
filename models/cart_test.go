package models_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/yashrajoria/food-ordering-backend/models"
)

func TestCart_Total(t *testing.T) {
	cart := models.Cart{
		Items: []models.CartItem{
			{Subtotal: 2500},
			{Subtotal: 400},
		},
	}
	assert.Equal(t, int64(2900), cart.Total())

	empty := models.Cart{}
	assert.Equal(t, int64(0), empty.Total())
}

func TestCart_FindItem(t *testing.T) {
	menuItemID := uuid.New()
	cart := models.Cart{
		Items: []models.CartItem{
			{MenuItemID: uuid.New(), Quantity: 1},
			{MenuItemID: menuItemID, Quantity: 2},
		},
	}

	found := cart.FindItem(menuItemID)
	assert.NotNil(t, found)
	assert.Equal(t, 2, found.Quantity)

	// Returned pointer aliases the slice element, so callers can mutate
	// the line in place.
	found.Quantity = 5
	assert.Equal(t, 5, cart.Items[1].Quantity)

	assert.Nil(t, cart.FindItem(uuid.New()))
}

func TestCartItem_Recalculate(t *testing.T) {
	item := models.CartItem{Quantity: 3, UnitPrice: 1250}
	item.Recalculate()
	assert.Equal(t, int64(3750), item.Subtotal)
}
