package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Ahnabu/evo-tech-sub001/api/middleware"
	"github.com/Ahnabu/evo-tech-sub001/config"
	"github.com/Ahnabu/evo-tech-sub001/internal/dao"
	"github.com/Ahnabu/evo-tech-sub001/internal/model"
	"github.com/Ahnabu/evo-tech-sub001/internal/service"
	"github.com/Ahnabu/evo-tech-sub001/pkg/e"
	"github.com/Ahnabu/evo-tech-sub001/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubStore backs the handlers with just enough in-memory state for
// placement round trips
type stubStore struct {
	mu       sync.Mutex
	products map[int64]*model.Product
	orders   map[int64]*model.Order
	items    map[int64][]model.OrderItem
	nextID   int64
}

func newStubStore(products ...*model.Product) *stubStore {
	s := &stubStore{
		products: make(map[int64]*model.Product),
		orders:   make(map[int64]*model.Order),
		items:    make(map[int64][]model.OrderItem),
		nextID:   1,
	}
	for i, p := range products {
		p.ID = int64(i + 1)
		s.products[p.ID] = p
	}
	return s
}

func (s *stubStore) PlaceOrder(_ context.Context, order *model.Order, items []*model.OrderItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		p, ok := s.products[it.ProductID]
		if !ok || p.Stock < it.Quantity {
			return &dao.InsufficientStockError{ProductID: it.ProductID}
		}
	}
	for _, it := range items {
		s.products[it.ProductID].Stock -= it.Quantity
	}
	order.ID = s.nextID
	s.nextID++
	stored := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		it.OrderID = order.ID
		stored = append(stored, *it)
	}
	cp := *order
	s.orders[order.ID] = &cp
	s.items[order.ID] = stored
	return nil
}

func (s *stubStore) GetOrderByID(_ context.Context, orderID int64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[orderID]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubStore) GetOrderWithItems(ctx context.Context, orderID int64) (*model.Order, error) {
	o, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	o.Items = append(o.Items, s.items[orderID]...)
	s.mu.Unlock()
	return o, nil
}

func (s *stubStore) ListUserOrders(_ context.Context, userID int64, _, _ string, _, _ int32) ([]*model.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Order
	for _, o := range s.orders {
		if o.UserID != nil && *o.UserID == userID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (s *stubStore) CountItemsByOrder(_ context.Context, orderIDs []int64) (map[int64]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[int64]int64)
	for _, id := range orderIDs {
		counts[id] = int64(len(s.items[id]))
	}
	return counts, nil
}

func (s *stubStore) UpdateOrderFields(_ context.Context, orderID int64, _ map[string]interface{}) error {
	return nil
}

func (s *stubStore) LinkGuestOrders(_ context.Context, email string, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var linked int64
	for _, o := range s.orders {
		if o.IsGuest && o.GuestEmail == email {
			uid := userID
			o.UserID = &uid
			o.IsGuest = false
			linked++
		}
	}
	return linked, nil
}

func (s *stubStore) CancelOrder(_ context.Context, orderID int64) error { return nil }
func (s *stubStore) DeleteOrder(_ context.Context, orderID int64) error { return nil }

func (s *stubStore) GetProductByID(_ context.Context, productID int64) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[productID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubStore) GetProductsByIDs(_ context.Context, ids []int64) ([]*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *stubStore) ListProducts(_ context.Context, _, _ int32) ([]*model.Product, int64, error) {
	return nil, 0, nil
}
func (s *stubStore) CreateProduct(_ context.Context, p *model.Product) (int64, error) { return 0, nil }
func (s *stubStore) UpdateProduct(_ context.Context, _ int64, _ map[string]interface{}) error {
	return nil
}
func (s *stubStore) DeleteProductByID(_ context.Context, _ int64) error { return nil }
func (s *stubStore) InvalidateCache(_ context.Context, _ int64)         {}

func newTestRouter(store *stubStore) (*gin.Engine, *utils.JWTUtil) {
	checkout := &config.CheckoutConfig{
		DeliveryCharges:       map[string]string{"inside_dhaka": "60"},
		DefaultDeliveryCharge: "120",
	}
	orderService := service.NewOrderService(store, store, nil, nil, checkout)
	handler := NewOrderHandler(orderService)
	jwtUtil := utils.NewJWTUtil("test-secret", 1)

	r := gin.New()
	api := r.Group("/api/v1")
	handler.RegisterPublicRoutes(api.Group("/orders"))
	authed := api.Group("/orders", middleware.JWTAuthMiddleware(jwtUtil))
	handler.RegisterRoutes(authed)
	return r, jwtUtil
}

func guestPayload(productID int64, quantity int32) map[string]interface{} {
	return map[string]interface{}{
		"items": []map[string]interface{}{
			{"productId": productID, "quantity": quantity, "color": "black"},
		},
		"firstname":     "Rahim",
		"lastname":      "Uddin",
		"phone":         "+8801712345678",
		"email":         "guest@example.com",
		"houseStreet":   "12 Green Road",
		"city":          "Dhaka",
		"country":       "Bangladesh",
		"shippingType":  "inside_dhaka",
		"paymentMethod": "cod",
		"terms":         true,
	}
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGuestPlacementEndpoint(t *testing.T) {
	store := newStubStore(&model.Product{Name: "Headphone", Price: decimal.NewFromInt(100), Stock: 5, InStock: true})
	r, _ := newTestRouter(store)

	w := postJSON(t, r, "/api/v1/orders/guest", guestPayload(1, 2), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Code int `json:"code"`
		Data struct {
			Order model.Order `json:"order"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, e.SUCCESS, resp.Code)
	assert.Regexp(t, `^ORD-\d{13}-\d{4}$`, resp.Data.Order.OrderNo)
	assert.True(t, resp.Data.Order.IsGuest)
	assert.Equal(t, "01712345678", resp.Data.Order.Phone)
	assert.Equal(t, int32(3), store.products[1].Stock)
}

func TestGuestPlacementMissingFields(t *testing.T) {
	store := newStubStore(&model.Product{Name: "Headphone", Price: decimal.NewFromInt(100), Stock: 5, InStock: true})
	r, _ := newTestRouter(store)

	payload := guestPayload(1, 1)
	delete(payload, "firstname")
	w := postJSON(t, r, "/api/v1/orders/guest", payload, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGuestPlacementTotalMismatch(t *testing.T) {
	store := newStubStore(&model.Product{Name: "Headphone", Price: decimal.NewFromInt(100), Stock: 5, InStock: true})
	r, _ := newTestRouter(store)

	payload := guestPayload(1, 1)
	payload["subtotal"] = "100"
	payload["deliveryCharge"] = "60"
	payload["totalPayable"] = "9999"
	w := postJSON(t, r, "/api/v1/orders/guest", payload, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "totalPayable")
}

func TestGuestPlacementEmptyCart(t *testing.T) {
	store := newStubStore(&model.Product{Name: "Headphone", Price: decimal.NewFromInt(100), Stock: 5, InStock: true})
	r, _ := newTestRouter(store)

	payload := guestPayload(1, 1)
	payload["items"] = []map[string]interface{}{}
	w := postJSON(t, r, "/api/v1/orders/guest", payload, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, e.ERROR_CART_EMPTY, resp.Code)
	assert.Equal(t, "cart is empty", resp.Message)
}

func TestGuestPlacementOutOfStock(t *testing.T) {
	store := newStubStore(&model.Product{Name: "Headphone", Price: decimal.NewFromInt(100), Stock: 0, InStock: false})
	r, _ := newTestRouter(store)

	w := postJSON(t, r, "/api/v1/orders/guest", guestPayload(1, 1), nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Len(t, store.orders, 0)
}

func TestAuthedPlacementRequiresToken(t *testing.T) {
	store := newStubStore(&model.Product{Name: "Headphone", Price: decimal.NewFromInt(100), Stock: 5, InStock: true})
	r, jwtUtil := newTestRouter(store)

	w := postJSON(t, r, "/api/v1/orders", guestPayload(1, 1), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := jwtUtil.GenerateToken(7, "rahim", model.RoleCustomer)
	require.NoError(t, err)
	w = postJSON(t, r, "/api/v1/orders", guestPayload(1, 1),
		map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Order model.Order `json:"order"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data.Order.UserID)
	assert.Equal(t, int64(7), *resp.Data.Order.UserID)
	assert.False(t, resp.Data.Order.IsGuest)
}

func TestLinkGuestOrdersEndpoint(t *testing.T) {
	store := newStubStore(&model.Product{Name: "Headphone", Price: decimal.NewFromInt(100), Stock: 5, InStock: true})
	r, jwtUtil := newTestRouter(store)

	w := postJSON(t, r, "/api/v1/orders/guest", guestPayload(1, 1), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	token, err := jwtUtil.GenerateToken(7, "rahim", model.RoleCustomer)
	require.NoError(t, err)
	headers := map[string]string{"Authorization": "Bearer " + token}

	w = postJSON(t, r, "/api/v1/orders/link-guest",
		map[string]string{"email": "guest@example.com"}, headers)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Data struct {
			Linked int64 `json:"linked"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Data.Linked)

	// idempotent
	w = postJSON(t, r, "/api/v1/orders/link-guest",
		map[string]string{"email": "guest@example.com"}, headers)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(0), resp.Data.Linked)
}
