package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/Ahnabu/evo-tech-sub001/internal/service"
	"github.com/Ahnabu/evo-tech-sub001/pkg/e"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       *int32          `json:"stock"`
	Colors      string          `json:"colors"`
	ImageURL    string          `json:"imageUrl"`
}

type ProductHandler struct {
	products *service.ProductService
}

func NewProductHandler(products *service.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// RegisterPublicRoutes exposes the read-only catalog
func (h *ProductHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListProducts)
	rg.GET("/:id", h.GetProduct)
}

// RegisterAdminRoutes exposes catalog management
func (h *ProductHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.CreateProduct)
	rg.PATCH("/:id", h.UpdateProduct)
	rg.DELETE("/:id", h.DeleteProduct)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	page := toPage(c.DefaultQuery("page", "1"))
	limit := toPageSize(c.DefaultQuery("limit", "20"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	products, total, err := h.products.ListProducts(ctx, page, limit)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, gin.H{
		"products": products,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, ok := pathID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	product, err := h.products.GetProduct(ctx, productID)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailCode(c, e.INVALID_PARAMS)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	productID, err := h.products.CreateProduct(ctx, &service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Colors:      req.Colors,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusCreated, gin.H{"productId": productID})
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	productID, ok := pathID(c)
	if !ok {
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailCode(c, e.INVALID_PARAMS)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.products.UpdateProduct(ctx, productID, &service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Colors:      req.Colors,
		ImageURL:    req.ImageURL,
	}); err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, gin.H{"updated": true})
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	productID, ok := pathID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.products.DeleteProduct(ctx, productID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, gin.H{"deleted": true})
}
