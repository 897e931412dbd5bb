package service

import (
	"context"
	"errors"

	"github.com/Ahnabu/evo-tech-sub001/internal/model"
	"github.com/Ahnabu/evo-tech-sub001/pkg/e"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductService struct {
	products ProductStore
}

func NewProductService(products ProductStore) *ProductService {
	return &ProductService{
		products: products,
	}
}

// ProductInput is the admin create/update payload; zero fields are skipped
// on update
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       *int32
	Colors      string
	ImageURL    string
}

// GetProduct fetches a single product
func (s *ProductService) GetProduct(ctx context.Context, productID int64) (*model.Product, error) {
	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, e.New(e.ERROR_PRODUCT_NOT_EXISTS)
		}
		return nil, err
	}
	return product, nil
}

// ListProducts returns a catalog page
func (s *ProductService) ListProducts(ctx context.Context, page, pageSize int32) ([]*model.Product, int64, error) {
	return s.products.ListProducts(ctx, page, pageSize)
}

// CreateProduct inserts a new product; in_stock follows the initial stock
func (s *ProductService) CreateProduct(ctx context.Context, in *ProductInput) (int64, error) {
	if in.Name == "" || in.Price.LessThanOrEqual(decimal.Zero) {
		return 0, e.Newf(e.INVALID_PARAMS, "name and a positive price are required")
	}
	stock := int32(0)
	if in.Stock != nil {
		stock = *in.Stock
	}
	product := &model.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       stock,
		InStock:     stock > 0,
		Colors:      in.Colors,
		ImageURL:    in.ImageURL,
	}
	return s.products.CreateProduct(ctx, product)
}

// UpdateProduct applies a partial update; stock writes keep in_stock coherent
func (s *ProductService) UpdateProduct(ctx context.Context, productID int64, in *ProductInput) error {
	if _, err := s.products.GetProductByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return e.New(e.ERROR_PRODUCT_NOT_EXISTS)
		}
		return err
	}

	updates := map[string]interface{}{}
	if in.Name != "" {
		updates["name"] = in.Name
	}
	if in.Description != "" {
		updates["description"] = in.Description
	}
	if in.Price.GreaterThan(decimal.Zero) {
		updates["price"] = in.Price
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return e.Newf(e.INVALID_PARAMS, "stock cannot be negative")
		}
		updates["stock"] = *in.Stock
		updates["in_stock"] = *in.Stock > 0
	}
	if in.Colors != "" {
		updates["colors"] = in.Colors
	}
	if in.ImageURL != "" {
		updates["image_url"] = in.ImageURL
	}
	if len(updates) == 0 {
		return e.Newf(e.INVALID_PARAMS, "nothing to update")
	}

	return s.products.UpdateProduct(ctx, productID, updates)
}

// DeleteProduct removes a product
func (s *ProductService) DeleteProduct(ctx context.Context, productID int64) error {
	if _, err := s.products.GetProductByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return e.New(e.ERROR_PRODUCT_NOT_EXISTS)
		}
		return err
	}
	return s.products.DeleteProductByID(ctx, productID)
}
