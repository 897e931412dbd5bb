package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Ahnabu/evo-tech-sub001/internal/model"
	"github.com/redis/go-redis/v9"
)

// CartDao stores carts as JSON blobs in Redis with a TTL. Carts are
// storefront state only; an abandoned cart simply expires.
type CartDao struct {
	redis redis.UniversalClient
	ttl   time.Duration
}

func NewCartDao(redis redis.UniversalClient, ttl time.Duration) *CartDao {
	return &CartDao{redis: redis, ttl: ttl}
}

func cartKey(userID int64) string {
	return fmt.Sprintf("cart:%d", userID)
}

// GetCart returns the stored cart, or an empty cart when none exists
func (d *CartDao) GetCart(ctx context.Context, userID int64) (*model.Cart, error) {
	raw, err := d.redis.Get(ctx, cartKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &model.Cart{Lines: []model.CartLine{}}, nil
		}
		return nil, err
	}
	var cart model.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// SaveCart replaces the stored cart and refreshes its TTL
func (d *CartDao) SaveCart(ctx context.Context, userID int64, cart *model.Cart) error {
	cart.UpdatedAt = time.Now()
	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return d.redis.Set(ctx, cartKey(userID), raw, d.ttl).Err()
}

// ClearCart deletes the stored cart
func (d *CartDao) ClearCart(ctx context.Context, userID int64) error {
	return d.redis.Del(ctx, cartKey(userID)).Err()
}
