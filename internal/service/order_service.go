// Package service implements the storefront workflows over the store
// interfaces. The order placement workflow is the heart of it: stock
// validation, server-side pricing, transactional persistence and post-commit
// event publishing.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Ahnabu/evo-tech-sub001/config"
	"github.com/Ahnabu/evo-tech-sub001/internal/dao"
	"github.com/Ahnabu/evo-tech-sub001/internal/model"
	"github.com/Ahnabu/evo-tech-sub001/internal/mq"
	"github.com/Ahnabu/evo-tech-sub001/pkg/e"
	"github.com/Ahnabu/evo-tech-sub001/pkg/logger"
	"github.com/Ahnabu/evo-tech-sub001/pkg/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PlaceOrderItem is one requested line of a checkout
type PlaceOrderItem struct {
	ProductID int64
	Quantity  int32
	Color     string
}

// PlaceOrderInput carries the checkout payload. ClientSubtotal and
// ClientTotalPayable are what the frontend computed; they are never
// persisted, only compared against the server-side numbers.
type PlaceOrderInput struct {
	Items []PlaceOrderItem

	Firstname   string
	Lastname    string
	Phone       string
	Email       string
	HouseStreet string
	City        string
	Postcode    string
	Country     string

	ShippingType  string
	PaymentMethod string

	AdditionalCharge decimal.Decimal
	Discount         decimal.Decimal

	ClientSubtotal     decimal.Decimal
	ClientTotalPayable decimal.Decimal

	Notes string
}

// Identity names the caller of a placement: an authenticated user or a guest
type Identity struct {
	UserID     int64
	IsGuest    bool
	GuestEmail string
}

// UpdateOrderStatusInput is the admin patch; empty fields are left untouched
type UpdateOrderStatusInput struct {
	OrderStatus        string
	PaymentStatus      string
	TrackingCode       string
	BkashTransactionID string
}

type OrderService struct {
	orders   OrderStore
	products ProductStore
	carts    CartStore
	mqPool   EventPublisher

	deliveryCharges map[string]decimal.Decimal
	defaultDelivery decimal.Decimal
}

// NewOrderService wires the order workflows. carts and mqPool may be nil;
// cart clearing and event publishing are then skipped.
func NewOrderService(orders OrderStore, products ProductStore, carts CartStore, mqPool EventPublisher, checkout *config.CheckoutConfig) *OrderService {
	s := &OrderService{
		orders:          orders,
		products:        products,
		carts:           carts,
		mqPool:          mqPool,
		deliveryCharges: make(map[string]decimal.Decimal),
		defaultDelivery: decimal.Zero,
	}
	if checkout != nil {
		for shippingType, raw := range checkout.DeliveryCharges {
			if d, err := decimal.NewFromString(raw); err == nil {
				s.deliveryCharges[shippingType] = d
			} else {
				logger.Warn("invalid delivery charge in config", "shipping_type", shippingType, "value", raw)
			}
		}
		if d, err := decimal.NewFromString(checkout.DefaultDeliveryCharge); err == nil {
			s.defaultDelivery = d
		}
	}
	return s
}

func (s *OrderService) deliveryCharge(shippingType string) decimal.Decimal {
	if charge, ok := s.deliveryCharges[shippingType]; ok {
		return charge
	}
	return s.defaultDelivery
}

// PlaceOrder runs the placement workflow:
//  1. reject empty carts and guests without an email
//  2. load every requested product, reject unknown ones
//  3. pre-check stock for a friendly error before touching the database
//  4. snapshot name/price per line and recompute all totals server-side
//  5. persist order + items + conditional stock decrements in one
//     transaction (the transaction, not the pre-check, is what guarantees
//     stock never goes negative)
//  6. after commit: publish order.placed, clear the caller's cart,
//     invalidate product cache entries
func (s *OrderService) PlaceOrder(ctx context.Context, in *PlaceOrderInput, ident Identity) (*model.Order, error) {
	if len(in.Items) == 0 {
		return nil, e.Newf(e.ERROR_CART_EMPTY, "cart is empty")
	}
	if ident.IsGuest && ident.GuestEmail == "" {
		return nil, e.New(e.ERROR_GUEST_EMAIL_REQUIRED)
	}

	productIDs := make([]int64, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, e.Newf(e.INVALID_PARAMS, "quantity must be positive for product %d", it.ProductID)
		}
		productIDs = append(productIDs, it.ProductID)
	}

	loaded, err := s.products.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*model.Product, len(loaded))
	for _, p := range loaded {
		byID[p.ID] = p
	}

	for _, it := range in.Items {
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, e.Newf(e.ERROR_PRODUCT_NOT_EXISTS, "product %d does not exist", it.ProductID)
		}
		if !p.InStock || p.Stock < it.Quantity {
			return nil, e.Newf(e.ERROR_STOCK_NOT_ENOUGH, "%s is out of stock or has insufficient quantity", p.Name)
		}
	}

	// per-line snapshots with server-side prices
	items := make([]*model.OrderItem, 0, len(in.Items))
	subtotal := decimal.Zero
	for _, it := range in.Items {
		p := byID[it.ProductID]
		lineSubtotal := p.Price.Mul(decimal.NewFromInt32(it.Quantity))
		items = append(items, &model.OrderItem{
			ProductID:     p.ID,
			ProductName:   p.Name,
			UnitPrice:     p.Price,
			SelectedColor: it.Color,
			Quantity:      it.Quantity,
			Subtotal:      lineSubtotal,
		})
		subtotal = subtotal.Add(lineSubtotal)
	}

	deliveryCharge := s.deliveryCharge(in.ShippingType)
	totalPayable := subtotal.Add(deliveryCharge).Add(in.AdditionalCharge).Sub(in.Discount)

	// client totals are advisory only; a mismatch is a tampering signal
	if !in.ClientSubtotal.IsZero() && !in.ClientSubtotal.Equal(subtotal) {
		logger.Warn("client subtotal mismatch",
			"client", in.ClientSubtotal.String(), "server", subtotal.String())
	}
	if !in.ClientTotalPayable.IsZero() && !in.ClientTotalPayable.Equal(totalPayable) {
		logger.Warn("client total mismatch",
			"client", in.ClientTotalPayable.String(), "server", totalPayable.String())
	}

	order := &model.Order{
		OrderNo:          utils.GenerateOrderNo(),
		Firstname:        in.Firstname,
		Lastname:         in.Lastname,
		Phone:            utils.NormalizePhone(in.Phone),
		Email:            in.Email,
		HouseStreet:      in.HouseStreet,
		City:             in.City,
		Postcode:         in.Postcode,
		Country:          in.Country,
		ShippingType:     in.ShippingType,
		PaymentMethod:    in.PaymentMethod,
		Subtotal:         subtotal,
		DeliveryCharge:   deliveryCharge,
		AdditionalCharge: in.AdditionalCharge,
		Discount:         in.Discount,
		TotalPayable:     totalPayable,
		OrderStatus:      model.OrderStatusPending,
		PaymentStatus:    model.PaymentStatusPending,
		Notes:            in.Notes,
	}
	if ident.IsGuest {
		order.IsGuest = true
		order.GuestEmail = ident.GuestEmail
	} else {
		uid := ident.UserID
		order.UserID = &uid
	}

	if err := s.orders.PlaceOrder(ctx, order, items); err != nil {
		var stockErr *dao.InsufficientStockError
		if errors.As(err, &stockErr) {
			name := ""
			if p, ok := byID[stockErr.ProductID]; ok {
				name = p.Name
			}
			return nil, e.Newf(e.ERROR_STOCK_NOT_ENOUGH, "%s is out of stock or has insufficient quantity", name)
		}
		return nil, err
	}

	s.afterPlacement(ctx, order, items, ident)

	placed, err := s.orders.GetOrderWithItems(ctx, order.ID)
	if err != nil {
		logger.Warn("re-read of placed order failed", "order_id", order.ID, "err", err)
		order.Items = make([]model.OrderItem, 0, len(items))
		for _, it := range items {
			order.Items = append(order.Items, *it)
		}
		return order, nil
	}
	return placed, nil
}

// afterPlacement runs the non-transactional side effects; all are
// best-effort and only logged on failure
func (s *OrderService) afterPlacement(ctx context.Context, order *model.Order, items []*model.OrderItem, ident Identity) {
	for _, it := range items {
		s.products.InvalidateCache(ctx, it.ProductID)
	}

	if s.carts != nil && !ident.IsGuest {
		if err := s.carts.ClearCart(ctx, ident.UserID); err != nil {
			logger.Warn("cart clear after placement failed", "user_id", ident.UserID, "err", err)
		}
	}

	if s.mqPool == nil {
		return
	}
	evt := mq.OrderPlacedEvent{
		EventID:      uuid.NewString(),
		OccurredAt:   time.Now().Unix(),
		OrderID:      order.ID,
		OrderNo:      order.OrderNo,
		IsGuest:      order.IsGuest,
		TotalPayable: order.TotalPayable.String(),
	}
	if order.UserID != nil {
		evt.UserID = *order.UserID
	}
	for _, it := range items {
		evt.Items = append(evt.Items, mq.OrderEventItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	body, err := json.Marshal(evt)
	if err != nil {
		logger.Warn("order placed event marshal failed", "order_id", order.ID, "err", err)
		return
	}
	if err := s.mqPool.PublishAsyncWithID(mq.Exchange, mq.KeyOrderPlaced, body, evt.EventID); err != nil {
		logger.Warn("order placed event publish failed", "order_id", order.ID, "err", err)
	} else {
		logger.Info("order placed event published", "order_id", order.ID, "order_no", order.OrderNo, "event_id", evt.EventID)
	}
}

// GetOrder returns an order with items; non-admin callers only see their own
func (s *OrderService) GetOrder(ctx context.Context, orderID, requesterID int64, isAdmin bool) (*model.Order, error) {
	order, err := s.orders.GetOrderWithItems(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, e.New(e.ERROR_ORDER_NOT_EXISTS)
		}
		return nil, err
	}
	if !isAdmin {
		if order.UserID == nil || *order.UserID != requesterID {
			return nil, e.New(e.ERROR_ORDER_FORBIDDEN)
		}
	}
	return order, nil
}

// ListUserOrders returns a page of the caller's orders with item counts
func (s *OrderService) ListUserOrders(ctx context.Context, userID int64, orderStatus, paymentStatus string, page, pageSize int32) ([]*model.Order, int64, error) {
	if orderStatus != "" && !validOrderStatus(orderStatus) {
		return nil, 0, e.Newf(e.INVALID_PARAMS, "unknown order status %q", orderStatus)
	}
	if paymentStatus != "" && !validPaymentStatus(paymentStatus) {
		return nil, 0, e.Newf(e.INVALID_PARAMS, "unknown payment status %q", paymentStatus)
	}

	orders, total, err := s.orders.ListUserOrders(ctx, userID, orderStatus, paymentStatus, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	// item counts are best effort; the list is still useful without them
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	counts, err := s.orders.CountItemsByOrder(ctx, ids)
	if err != nil {
		logger.Warn("order item count aggregation failed", "err", err)
	} else {
		for _, o := range orders {
			o.ItemCount = counts[o.ID]
		}
	}
	return orders, total, nil
}

// UpdateOrderStatus applies an admin patch. The delivered timestamp is
// stamped once, on the first transition to delivered; later patches never
// move it.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int64, in *UpdateOrderStatusInput) (*model.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, e.New(e.ERROR_ORDER_NOT_EXISTS)
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.OrderStatus != "" {
		if !validOrderStatus(in.OrderStatus) {
			return nil, e.Newf(e.INVALID_PARAMS, "unknown order status %q", in.OrderStatus)
		}
		updates["order_status"] = in.OrderStatus
		if in.OrderStatus == model.OrderStatusDelivered && order.DeliveredAt == nil {
			updates["delivered_at"] = time.Now()
		}
	}
	if in.PaymentStatus != "" {
		if !validPaymentStatus(in.PaymentStatus) {
			return nil, e.Newf(e.INVALID_PARAMS, "unknown payment status %q", in.PaymentStatus)
		}
		updates["payment_status"] = in.PaymentStatus
	}
	if in.TrackingCode != "" {
		updates["tracking_code"] = in.TrackingCode
	}
	if in.BkashTransactionID != "" {
		updates["bkash_transaction_id"] = in.BkashTransactionID
	}
	if len(updates) == 0 {
		return nil, e.Newf(e.INVALID_PARAMS, "nothing to update")
	}

	if err := s.orders.UpdateOrderFields(ctx, orderID, updates); err != nil {
		return nil, err
	}
	return s.orders.GetOrderByID(ctx, orderID)
}

// LinkGuestOrders attaches prior guest orders with the given email to the
// now-authenticated user. Idempotent: a second run matches zero orders.
func (s *OrderService) LinkGuestOrders(ctx context.Context, email string, userID int64) (int64, error) {
	if email == "" {
		return 0, e.Newf(e.INVALID_PARAMS, "email is required")
	}
	linked, err := s.orders.LinkGuestOrders(ctx, email, userID)
	if err != nil {
		return 0, err
	}
	if linked > 0 {
		logger.Info("guest orders linked", "email", email, "user_id", userID, "linked", linked)
	}
	return linked, nil
}

// CancelOrder lets the owner cancel a pending/processing order; stock is
// restored inside the same transaction that flips the status
func (s *OrderService) CancelOrder(ctx context.Context, orderID, requesterID int64) error {
	order, err := s.orders.GetOrderWithItems(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return e.New(e.ERROR_ORDER_NOT_EXISTS)
		}
		return err
	}
	if order.UserID == nil || *order.UserID != requesterID {
		return e.New(e.ERROR_ORDER_FORBIDDEN)
	}

	if err := s.orders.CancelOrder(ctx, orderID); err != nil {
		if errors.Is(err, dao.ErrOrderStatusChanged) {
			return e.New(e.ERROR_ORDER_STATUS_CHANGED)
		}
		return err
	}

	for _, it := range order.Items {
		s.products.InvalidateCache(ctx, it.ProductID)
	}

	if s.mqPool != nil {
		evt := mq.OrderCanceledEvent{
			EventID:    uuid.NewString(),
			OccurredAt: time.Now().Unix(),
			OrderID:    order.ID,
			OrderNo:    order.OrderNo,
			UserID:     requesterID,
		}
		for _, it := range order.Items {
			evt.Items = append(evt.Items, mq.OrderEventItem{ProductID: it.ProductID, Quantity: it.Quantity})
		}
		if body, merr := json.Marshal(evt); merr == nil {
			if err := s.mqPool.PublishAsyncWithID(mq.Exchange, mq.KeyOrderCanceled, body, evt.EventID); err != nil {
				logger.Warn("order canceled event publish failed", "order_id", order.ID, "err", err)
			}
		}
	}
	return nil
}

// DeleteOrder removes an order and its items (admin back office)
func (s *OrderService) DeleteOrder(ctx context.Context, orderID int64) error {
	if err := s.orders.DeleteOrder(ctx, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return e.New(e.ERROR_ORDER_NOT_EXISTS)
		}
		return err
	}
	return nil
}

func validOrderStatus(s string) bool {
	switch s {
	case model.OrderStatusPending, model.OrderStatusProcessing, model.OrderStatusShipped,
		model.OrderStatusDelivered, model.OrderStatusCancelled:
		return true
	}
	return false
}

func validPaymentStatus(s string) bool {
	switch s {
	case model.PaymentStatusPending, model.PaymentStatusPaid,
		model.PaymentStatusFailed, model.PaymentStatusRefunded:
		return true
	}
	return false
}
