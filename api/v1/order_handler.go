package v1

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Ahnabu/evo-tech-sub001/internal/model"
	"github.com/Ahnabu/evo-tech-sub001/internal/service"
	"github.com/Ahnabu/evo-tech-sub001/pkg/e"
	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type placeOrderItemRequest struct {
	ProductID int64  `json:"productId" binding:"required"`
	Quantity  int32  `json:"quantity" binding:"required,min=1"`
	Color     string `json:"color"`
}

type placeOrderRequest struct {
	Items []placeOrderItemRequest `json:"items"`

	Firstname   string `json:"firstname" binding:"required"`
	Lastname    string `json:"lastname" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Email       string `json:"email" binding:"omitempty,email"`
	HouseStreet string `json:"houseStreet" binding:"required"`
	City        string `json:"city" binding:"required"`
	Postcode    string `json:"postcode"`
	Country     string `json:"country" binding:"required"`

	ShippingType  string `json:"shippingType" binding:"required"`
	PaymentMethod string `json:"paymentMethod" binding:"required"`

	// client-computed amounts; the server recomputes and only cross-checks
	Subtotal         decimal.Decimal `json:"subtotal"`
	DeliveryCharge   decimal.Decimal `json:"deliveryCharge"`
	AdditionalCharge decimal.Decimal `json:"additionalCharge"`
	Discount         decimal.Decimal `json:"discount"`
	TotalPayable     decimal.Decimal `json:"totalPayable"`

	Terms bool   `json:"terms" binding:"required"`
	Notes string `json:"notes"`
}

type updateOrderStatusRequest struct {
	OrderStatus        string `json:"orderStatus"`
	PaymentStatus      string `json:"paymentStatus"`
	TrackingCode       string `json:"trackingCode"`
	BkashTransactionID string `json:"bkashTransactionId"`
}

type linkGuestOrdersRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// OrderHandler exposes the order workflows over HTTP
type OrderHandler struct {
	orders   *service.OrderService
	validate *validatorv10.Validate
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders, validate: newValidator()}
}

// RegisterPublicRoutes registers routes that need no authentication
func (h *OrderHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/guest", h.PlaceGuestOrder)
}

// RegisterRoutes registers routes for authenticated customers
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.PlaceOrder)
	rg.GET("/mine", h.ListMyOrders)
	rg.GET("/:id", h.GetOrder)
	rg.POST("/:id/cancel", h.CancelOrder)
	rg.POST("/link-guest", h.LinkGuestOrders)
}

// RegisterAdminRoutes registers the back-office routes
func (h *OrderHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.PATCH("/:id/status", h.UpdateOrderStatus)
	rg.DELETE("/:id", h.DeleteOrder)
}

func (req *placeOrderRequest) toInput() *service.PlaceOrderInput {
	in := &service.PlaceOrderInput{
		Firstname:          req.Firstname,
		Lastname:           req.Lastname,
		Phone:              req.Phone,
		Email:              req.Email,
		HouseStreet:        req.HouseStreet,
		City:               req.City,
		Postcode:           req.Postcode,
		Country:            req.Country,
		ShippingType:       req.ShippingType,
		PaymentMethod:      req.PaymentMethod,
		AdditionalCharge:   req.AdditionalCharge,
		Discount:           req.Discount,
		ClientSubtotal:     req.Subtotal,
		ClientTotalPayable: req.TotalPayable,
		Notes:              req.Notes,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, service.PlaceOrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Color:     it.Color,
		})
	}
	return in
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if !BindAndValidate(c, &req, h.validate) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	ident := service.Identity{UserID: c.GetInt64("user_id")}
	order, err := h.orders.PlaceOrder(ctx, req.toInput(), ident)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusCreated, gin.H{"order": order, "items": order.Items})
}

func (h *OrderHandler) PlaceGuestOrder(c *gin.Context) {
	var req placeOrderRequest
	if !BindAndValidate(c, &req, h.validate) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	ident := service.Identity{IsGuest: true, GuestEmail: req.Email}
	order, err := h.orders.PlaceOrder(ctx, req.toInput(), ident)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusCreated, gin.H{"order": order, "items": order.Items})
}

func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	userID := c.GetInt64("user_id")
	page := toPage(c.DefaultQuery("page", "1"))
	limit := toPageSize(c.DefaultQuery("limit", "20"))
	orderStatus := c.Query("orderStatus")
	paymentStatus := c.Query("paymentStatus")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	orders, total, err := h.orders.ListUserOrders(ctx, userID, orderStatus, paymentStatus, page, limit)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, gin.H{
		"orders": orders,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	isAdmin := c.GetString("role") == model.RoleAdmin
	order, err := h.orders.GetOrder(ctx, orderID, c.GetInt64("user_id"), isAdmin)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, order)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.orders.CancelOrder(ctx, orderID, c.GetInt64("user_id")); err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, gin.H{"cancelled": true})
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailCode(c, e.INVALID_PARAMS)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.orders.UpdateOrderStatus(ctx, orderID, &service.UpdateOrderStatusInput{
		OrderStatus:        req.OrderStatus,
		PaymentStatus:      req.PaymentStatus,
		TrackingCode:       req.TrackingCode,
		BkashTransactionID: req.BkashTransactionID,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, order)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.orders.DeleteOrder(ctx, orderID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *OrderHandler) LinkGuestOrders(c *gin.Context) {
	var req linkGuestOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailCode(c, e.INVALID_PARAMS)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	linked, err := h.orders.LinkGuestOrders(ctx, req.Email, c.GetInt64("user_id"))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, gin.H{"linked": linked})
}

// helpers shared by the handlers

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		FailCode(c, e.INVALID_PARAMS)
		return 0, false
	}
	return id, true
}

func toPage(s string) int32 {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return int32(n)
}

func toPageSize(s string) int32 {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 100 {
		return 20
	}
	return int32(n)
}
