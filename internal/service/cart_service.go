package service

import (
	"context"
	"errors"

	"github.com/Ahnabu/evo-tech-sub001/internal/model"
	"github.com/Ahnabu/evo-tech-sub001/pkg/e"
	"gorm.io/gorm"
)

type CartService struct {
	carts    CartStore
	products ProductStore
}

func NewCartService(carts CartStore, products ProductStore) *CartService {
	return &CartService{carts: carts, products: products}
}

// GetCart returns the caller's cart (empty when none stored)
func (s *CartService) GetCart(ctx context.Context, userID int64) (*model.Cart, error) {
	return s.carts.GetCart(ctx, userID)
}

// SaveCart replaces the caller's cart after checking every line references an
// existing product. Stock is NOT reserved here; availability is only decided
// at placement.
func (s *CartService) SaveCart(ctx context.Context, userID int64, lines []model.CartLine) (*model.Cart, error) {
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, e.Newf(e.INVALID_PARAMS, "quantity must be positive for product %d", l.ProductID)
		}
		if _, err := s.products.GetProductByID(ctx, l.ProductID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, e.Newf(e.ERROR_PRODUCT_NOT_EXISTS, "product %d does not exist", l.ProductID)
			}
			return nil, err
		}
	}
	cart := &model.Cart{Lines: lines}
	if err := s.carts.SaveCart(ctx, userID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// ClearCart drops the caller's cart
func (s *CartService) ClearCart(ctx context.Context, userID int64) error {
	return s.carts.ClearCart(ctx, userID)
}
