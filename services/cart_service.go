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

// CartService owns the per-user shopping cart. All mutations run inside a
// transaction holding the cart row lock, so concurrent calls for one user
// serialize; different users never contend.
type CartService interface {
	AddItem(ctx context.Context, userID, menuItemID uuid.UUID, quantity int) (*CartResponse, *response.Error)
	IncrementItem(ctx context.Context, userID, menuItemID uuid.UUID) (*CartResponse, *response.Error)
	DecrementItem(ctx context.Context, userID, menuItemID uuid.UUID) (*CartResponse, *response.Error)
	RemoveItem(ctx context.Context, userID, cartItemID uuid.UUID) (*CartResponse, *response.Error)
	GetCart(ctx context.Context, userID uuid.UUID) (*CartResponse, *response.Error)
	ClearCart(ctx context.Context, userID uuid.UUID) *response.Error
}

type cartService struct {
	cartRepo repository.CartRepository
	menuRepo repository.MenuRepository
	cache    repository.CartCache
	logger   *zap.Logger
}

func NewCartService(cartRepo repository.CartRepository, menuRepo repository.MenuRepository, cache repository.CartCache, logger *zap.Logger) CartService {
	return &cartService{
		cartRepo: cartRepo,
		menuRepo: menuRepo,
		cache:    cache,
		logger:   logger,
	}
}

// AddItem resolves the menu item and adds it to the user's cart, creating
// the cart lazily. If a line for the menu item already exists its quantity
// is incremented and the subtotal recomputed from the captured unit price;
// the catalog price is only read for brand-new lines.
func (s *cartService) AddItem(ctx context.Context, userID, menuItemID uuid.UUID, quantity int) (*CartResponse, *response.Error) {
	if quantity <= 0 {
		return nil, response.BadRequest("quantity must be greater than zero")
	}

	menuItem, err := s.menuRepo.FindByID(ctx, menuItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFound("Menu item not found")
		}
		return nil, response.Persistence("Failed to resolve menu item", err)
	}

	var cart *models.Cart
	txErr := s.cartRepo.Transaction(ctx, func(r repository.CartRepository) error {
		var err error
		cart, err = r.FindByUserIDForUpdate(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cart = &models.Cart{UserID: userID, CreatedAt: time.Now()}
			if err := r.Create(ctx, cart); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if existing := cart.FindItem(menuItemID); existing != nil {
			existing.Quantity += quantity
			existing.Recalculate()
			return r.SaveItem(ctx, existing)
		}

		item := models.CartItem{
			CartID:     cart.ID,
			MenuItemID: menuItemID,
			Name:       menuItem.Name,
			Quantity:   quantity,
			UnitPrice:  menuItem.Price,
		}
		item.Recalculate()
		if err := r.SaveItem(ctx, &item); err != nil {
			return err
		}
		cart.Items = append(cart.Items, item)
		return nil
	})
	if txErr != nil {
		return nil, response.Persistence("Failed to update cart", txErr)
	}

	s.invalidateCache(ctx, userID)
	return newCartResponse(cart), nil
}

func (s *cartService) IncrementItem(ctx context.Context, userID, menuItemID uuid.UUID) (*CartResponse, *response.Error) {
	return s.adjustQuantity(ctx, userID, menuItemID, 1)
}

func (s *cartService) DecrementItem(ctx context.Context, userID, menuItemID uuid.UUID) (*CartResponse, *response.Error) {
	return s.adjustQuantity(ctx, userID, menuItemID, -1)
}

// adjustQuantity changes an existing line by delta. A line reaching zero is
// removed from the cart entirely, never retained at quantity zero.
func (s *cartService) adjustQuantity(ctx context.Context, userID, menuItemID uuid.UUID, delta int) (*CartResponse, *response.Error) {
	var cart *models.Cart
	var appErr *response.Error

	txErr := s.cartRepo.Transaction(ctx, func(r repository.CartRepository) error {
		var err error
		cart, err = r.FindByUserIDForUpdate(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			appErr = response.NotFound("Cart not found")
			return nil
		}
		if err != nil {
			return err
		}

		item := cart.FindItem(menuItemID)
		if item == nil {
			appErr = response.NotFound("Menu item not found in cart")
			return nil
		}

		item.Quantity += delta
		if item.Quantity <= 0 {
			if err := r.DeleteItem(ctx, item.ID); err != nil {
				return err
			}
			cart.Items = removeItemByID(cart.Items, item.ID)
			return nil
		}

		item.Recalculate()
		return r.SaveItem(ctx, item)
	})
	if txErr != nil {
		return nil, response.Persistence("Failed to update cart", txErr)
	}
	if appErr != nil {
		return nil, appErr
	}

	s.invalidateCache(ctx, userID)
	return newCartResponse(cart), nil
}

// RemoveItem deletes one line by its id. The line must belong to this
// user's cart; a line that exists in another user's cart is reported as
// not found, indistinguishably from a missing line.
func (s *cartService) RemoveItem(ctx context.Context, userID, cartItemID uuid.UUID) (*CartResponse, *response.Error) {
	var cart *models.Cart
	var appErr *response.Error

	txErr := s.cartRepo.Transaction(ctx, func(r repository.CartRepository) error {
		var err error
		cart, err = r.FindByUserIDForUpdate(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			appErr = response.NotFound("Cart not found")
			return nil
		}
		if err != nil {
			return err
		}

		var member bool
		for _, item := range cart.Items {
			if item.ID == cartItemID {
				member = true
				break
			}
		}
		if !member {
			appErr = response.NotFound("Cart item not found")
			return nil
		}

		if err := r.DeleteItem(ctx, cartItemID); err != nil {
			return err
		}
		cart.Items = removeItemByID(cart.Items, cartItemID)
		return nil
	})
	if txErr != nil {
		return nil, response.Persistence("Failed to update cart", txErr)
	}
	if appErr != nil {
		return nil, appErr
	}

	s.invalidateCache(ctx, userID)
	return newCartResponse(cart), nil
}

// GetCart returns the user's cart, reading through the cache. A user who
// never added anything has no cart row and gets NotFound; an existing but
// empty cart is a valid response.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartResponse, *response.Error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, userID); err != nil {
			s.logger.Warn("cart cache read failed", zap.Error(err))
		} else if cached != nil {
			return newCartResponse(cached), nil
		}
	}

	cart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFound("Cart not found")
		}
		return nil, response.Persistence("Failed to fetch cart", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cart); err != nil {
			s.logger.Warn("cart cache write failed", zap.Error(err))
		}
	}

	return newCartResponse(cart), nil
}

// ClearCart removes every line. Clearing an already-empty cart succeeds.
func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) *response.Error {
	var appErr *response.Error

	txErr := s.cartRepo.Transaction(ctx, func(r repository.CartRepository) error {
		cart, err := r.FindByUserIDForUpdate(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			appErr = response.NotFound("Cart not found")
			return nil
		}
		if err != nil {
			return err
		}
		return r.DeleteItemsByCartID(ctx, cart.ID)
	})
	if txErr != nil {
		return response.Persistence("Failed to clear cart", txErr)
	}
	if appErr != nil {
		return appErr
	}

	s.invalidateCache(ctx, userID)
	return nil
}

func (s *cartService) invalidateCache(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("cart cache invalidation failed",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
}

func removeItemByID(items []models.CartItem, id uuid.UUID) []models.CartItem {
	out := items[:0]
	for _, item := range items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}
