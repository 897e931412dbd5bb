package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/Ahnabu/evo-tech-sub001/internal/model"
	"github.com/Ahnabu/evo-tech-sub001/internal/service"
	"github.com/Ahnabu/evo-tech-sub001/pkg/e"
	"github.com/gin-gonic/gin"
)

type cartLineRequest struct {
	ProductID int64  `json:"productId" binding:"required"`
	Quantity  int32  `json:"quantity" binding:"required,min=1"`
	Color     string `json:"color"`
}

type saveCartRequest struct {
	Lines []cartLineRequest `json:"lines"`
}

type CartHandler struct {
	carts *service.CartService
}

func NewCartHandler(carts *service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

func (h *CartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.GetCart)
	rg.PUT("", h.SaveCart)
	rg.DELETE("", h.ClearCart)
}

func (h *CartHandler) GetCart(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	cart, err := h.carts.GetCart(ctx, c.GetInt64("user_id"))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, cart)
}

func (h *CartHandler) SaveCart(c *gin.Context) {
	var req saveCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailCode(c, e.INVALID_PARAMS)
		return
	}

	lines := make([]model.CartLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, model.CartLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Color:     l.Color,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	cart, err := h.carts.SaveCart(ctx, c.GetInt64("user_id"), lines)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, cart)
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.carts.ClearCart(ctx, c.GetInt64("user_id")); err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, gin.H{"cleared": true})
}
