package service

import (
	"context"
	"sync"
	"time"

	"github.com/Ahnabu/evo-tech-sub001/internal/dao"
	"github.com/Ahnabu/evo-tech-sub001/internal/model"
	"gorm.io/gorm"
)

// memStore is an in-memory stand-in for the gorm DAOs. Orders and products
// share one mutex so PlaceOrder and CancelOrder behave like the real
// single-transaction implementations under concurrency.
type memStore struct {
	mu sync.Mutex

	products map[int64]*model.Product
	orders   map[int64]*model.Order
	items    map[int64][]*model.OrderItem

	nextOrderID   int64
	nextItemID    int64
	nextProductID int64
	clock         int64

	invalidated []int64
}

func newMemStore() *memStore {
	return &memStore{
		products:      make(map[int64]*model.Product),
		orders:        make(map[int64]*model.Order),
		items:         make(map[int64][]*model.OrderItem),
		nextOrderID:   1,
		nextItemID:    1,
		nextProductID: 1,
	}
}

func (m *memStore) seedProduct(p *model.Product) *model.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == 0 {
		p.ID = m.nextProductID
	}
	if p.ID >= m.nextProductID {
		m.nextProductID = p.ID + 1
	}
	m.products[p.ID] = p
	return p
}

// tick returns strictly increasing timestamps so created_at ordering is
// deterministic even when orders are seeded within the same nanosecond
func (m *memStore) tick() time.Time {
	m.clock++
	return time.Unix(1700000000, m.clock)
}

func copyOrder(o *model.Order) *model.Order {
	cp := *o
	if o.UserID != nil {
		uid := *o.UserID
		cp.UserID = &uid
	}
	if o.DeliveredAt != nil {
		ts := *o.DeliveredAt
		cp.DeliveredAt = &ts
	}
	cp.Items = nil
	return &cp
}

func copyProduct(p *model.Product) *model.Product {
	cp := *p
	return &cp
}

// --- OrderStore ---

func (m *memStore) PlaceOrder(_ context.Context, order *model.Order, items []*model.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// all-or-nothing, same as the transactional implementation
	for _, it := range items {
		p, ok := m.products[it.ProductID]
		if !ok || p.Stock < it.Quantity {
			return &dao.InsufficientStockError{ProductID: it.ProductID}
		}
	}
	for _, it := range items {
		p := m.products[it.ProductID]
		p.Stock -= it.Quantity
		if p.Stock == 0 {
			p.InStock = false
		}
	}

	order.ID = m.nextOrderID
	m.nextOrderID++
	order.CreatedAt = m.tick()
	m.orders[order.ID] = copyOrder(order)

	stored := make([]*model.OrderItem, 0, len(items))
	for _, it := range items {
		it.OrderID = order.ID
		it.ID = m.nextItemID
		m.nextItemID++
		cp := *it
		stored = append(stored, &cp)
	}
	m.items[order.ID] = stored
	return nil
}

func (m *memStore) GetOrderByID(_ context.Context, orderID int64) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyOrder(o), nil
}

func (m *memStore) GetOrderWithItems(_ context.Context, orderID int64) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := copyOrder(o)
	for _, it := range m.items[orderID] {
		cp.Items = append(cp.Items, *it)
	}
	return cp, nil
}

func (m *memStore) ListUserOrders(_ context.Context, userID int64, orderStatus, paymentStatus string, page, pageSize int32) ([]*model.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*model.Order
	for _, o := range m.orders {
		if o.UserID == nil || *o.UserID != userID {
			continue
		}
		if orderStatus != "" && o.OrderStatus != orderStatus {
			continue
		}
		if paymentStatus != "" && o.PaymentStatus != paymentStatus {
			continue
		}
		matched = append(matched, copyOrder(o))
	}
	// newest first
	for i := 0; i < len(matched); i++ {
		for j := i + 1; j < len(matched); j++ {
			if matched[j].CreatedAt.After(matched[i].CreatedAt) {
				matched[i], matched[j] = matched[j], matched[i]
			}
		}
	}
	total := int64(len(matched))
	start := int((page - 1) * pageSize)
	if start > len(matched) {
		start = len(matched)
	}
	end := start + int(pageSize)
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *memStore) CountItemsByOrder(_ context.Context, orderIDs []int64) (map[int64]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[int64]int64, len(orderIDs))
	for _, id := range orderIDs {
		if n := len(m.items[id]); n > 0 {
			counts[id] = int64(n)
		}
	}
	return counts, nil
}

func (m *memStore) UpdateOrderFields(_ context.Context, orderID int64, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for col, val := range updates {
		switch col {
		case "order_status":
			o.OrderStatus = val.(string)
		case "payment_status":
			o.PaymentStatus = val.(string)
		case "tracking_code":
			o.TrackingCode = val.(string)
		case "bkash_transaction_id":
			o.BkashTransactionID = val.(string)
		case "delivered_at":
			ts := val.(time.Time)
			o.DeliveredAt = &ts
		}
	}
	return nil
}

func (m *memStore) LinkGuestOrders(_ context.Context, email string, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var linked int64
	for _, o := range m.orders {
		if o.IsGuest && o.GuestEmail == email {
			uid := userID
			o.UserID = &uid
			o.IsGuest = false
			linked++
		}
	}
	return linked, nil
}

func (m *memStore) CancelOrder(_ context.Context, orderID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if o.OrderStatus != model.OrderStatusPending && o.OrderStatus != model.OrderStatusProcessing {
		return dao.ErrOrderStatusChanged
	}
	o.OrderStatus = model.OrderStatusCancelled
	for _, it := range m.items[orderID] {
		if p, ok := m.products[it.ProductID]; ok {
			p.Stock += it.Quantity
			p.InStock = true
		}
	}
	return nil
}

func (m *memStore) DeleteOrder(_ context.Context, orderID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[orderID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.orders, orderID)
	delete(m.items, orderID)
	return nil
}

// --- ProductStore ---

func (m *memStore) GetProductByID(_ context.Context, productID int64) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyProduct(p), nil
}

func (m *memStore) GetProductsByIDs(_ context.Context, ids []int64) ([]*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, copyProduct(p))
		}
	}
	return out, nil
}

func (m *memStore) ListProducts(_ context.Context, page, pageSize int32) ([]*model.Product, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Product
	for _, p := range m.products {
		out = append(out, copyProduct(p))
	}
	return out, int64(len(out)), nil
}

func (m *memStore) CreateProduct(_ context.Context, product *model.Product) (int64, error) {
	m.seedProduct(product)
	return product.ID, nil
}

func (m *memStore) UpdateProduct(_ context.Context, productID int64, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for col, val := range updates {
		switch col {
		case "name":
			p.Name = val.(string)
		case "stock":
			p.Stock = val.(int32)
		case "in_stock":
			p.InStock = val.(bool)
		}
	}
	return nil
}

func (m *memStore) DeleteProductByID(_ context.Context, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[productID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.products, productID)
	return nil
}

func (m *memStore) InvalidateCache(_ context.Context, productID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated = append(m.invalidated, productID)
}

func (m *memStore) productStock(productID int64) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.products[productID]; ok {
		return p.Stock
	}
	return -1
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

// --- CartStore ---

type memCartStore struct {
	mu      sync.Mutex
	carts   map[int64]*model.Cart
	cleared []int64
}

func newMemCartStore() *memCartStore {
	return &memCartStore{carts: make(map[int64]*model.Cart)}
}

func (c *memCartStore) GetCart(_ context.Context, userID int64) (*model.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cart, ok := c.carts[userID]; ok {
		return cart, nil
	}
	return &model.Cart{Lines: []model.CartLine{}}, nil
}

func (c *memCartStore) SaveCart(_ context.Context, userID int64, cart *model.Cart) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.carts[userID] = cart
	return nil
}

func (c *memCartStore) ClearCart(_ context.Context, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.carts, userID)
	c.cleared = append(c.cleared, userID)
	return nil
}

// --- UserStore ---

type memUserStore struct {
	mu     sync.Mutex
	users  map[string]*model.User
	nextID int64
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*model.User), nextID: 1}
}

func (u *memUserStore) UserExists(_ context.Context, username string) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	_, ok := u.users[username]
	return ok, nil
}

func (u *memUserStore) CreateUser(_ context.Context, user *model.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	user.ID = u.nextID
	u.nextID++
	u.users[user.Username] = user
	return nil
}

func (u *memUserStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if user, ok := u.users[username]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (u *memUserStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, user := range u.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// --- EventPublisher ---

type publishedEvent struct {
	exchange  string
	key       string
	body      []byte
	messageID string
}

type memPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *memPublisher) PublishAsyncWithID(exchange, key string, body []byte, messageID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{exchange: exchange, key: key, body: body, messageID: messageID})
	return nil
}

func (p *memPublisher) byKey(key string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.key == key {
			out = append(out, e)
		}
	}
	return out
}
