package service

import (
	"context"

	"github.com/Ahnabu/evo-tech-sub001/internal/model"
)

// Store interfaces sit between services and the gorm/redis DAOs so the
// workflows can be exercised against in-memory implementations in tests.
// The dao package provides the production implementations.

type OrderStore interface {
	PlaceOrder(ctx context.Context, order *model.Order, items []*model.OrderItem) error
	GetOrderByID(ctx context.Context, orderID int64) (*model.Order, error)
	GetOrderWithItems(ctx context.Context, orderID int64) (*model.Order, error)
	ListUserOrders(ctx context.Context, userID int64, orderStatus, paymentStatus string, page, pageSize int32) ([]*model.Order, int64, error)
	CountItemsByOrder(ctx context.Context, orderIDs []int64) (map[int64]int64, error)
	UpdateOrderFields(ctx context.Context, orderID int64, updates map[string]interface{}) error
	LinkGuestOrders(ctx context.Context, email string, userID int64) (int64, error)
	CancelOrder(ctx context.Context, orderID int64) error
	DeleteOrder(ctx context.Context, orderID int64) error
}

type ProductStore interface {
	GetProductByID(ctx context.Context, productID int64) (*model.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) ([]*model.Product, error)
	ListProducts(ctx context.Context, page, pageSize int32) ([]*model.Product, int64, error)
	CreateProduct(ctx context.Context, product *model.Product) (int64, error)
	UpdateProduct(ctx context.Context, productID int64, updates map[string]interface{}) error
	DeleteProductByID(ctx context.Context, productID int64) error
	InvalidateCache(ctx context.Context, productID int64)
}

type CartStore interface {
	GetCart(ctx context.Context, userID int64) (*model.Cart, error)
	SaveCart(ctx context.Context, userID int64, cart *model.Cart) error
	ClearCart(ctx context.Context, userID int64) error
}

type UserStore interface {
	UserExists(ctx context.Context, username string) (bool, error)
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
}

// EventPublisher is the slice of the MQ pool the services need
type EventPublisher interface {
	PublishAsyncWithID(exchange, key string, body []byte, messageID string) error
}
