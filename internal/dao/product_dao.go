package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Ahnabu/evo-tech-sub001/internal/model"
	"github.com/Ahnabu/evo-tech-sub001/pkg/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const productCacheTTL = 10 * time.Minute

type ProductDao struct {
	db    *gorm.DB
	redis redis.UniversalClient
}

// NewProductDao builds a product store; redis may be nil, reads then skip the
// cache
func NewProductDao(db *gorm.DB, redis redis.UniversalClient) *ProductDao {
	dao := &ProductDao{
		db:    db,
		redis: redis,
	}
	dao.db.AutoMigrate(&model.Product{})
	return dao
}

func productCacheKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

// GetProductByID reads through the cache
func (d *ProductDao) GetProductByID(ctx context.Context, productID int64) (*model.Product, error) {
	if d.redis != nil {
		if raw, err := d.redis.Get(ctx, productCacheKey(productID)).Result(); err == nil {
			var cached model.Product
			if jerr := json.Unmarshal([]byte(raw), &cached); jerr == nil {
				return &cached, nil
			}
		}
	}

	var product model.Product
	if err := d.db.WithContext(ctx).First(&product, productID).Error; err != nil {
		return nil, err
	}

	if d.redis != nil {
		if raw, err := json.Marshal(&product); err == nil {
			if err := d.redis.Set(ctx, productCacheKey(productID), raw, productCacheTTL).Err(); err != nil {
				logger.Warn("product cache set failed", "product_id", productID, "err", err)
			}
		}
	}
	return &product, nil
}

// GetProductsByIDs fetches several products in one query, bypassing the cache
// (placement pre-checks want fresh stock values)
func (d *ProductDao) GetProductsByIDs(ctx context.Context, ids []int64) ([]*model.Product, error) {
	var products []*model.Product
	err := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

// ListProducts returns a product page with total count
func (d *ProductDao) ListProducts(ctx context.Context, page, pageSize int32) ([]*model.Product, int64, error) {
	var products []*model.Product
	var total int64
	offset := (page - 1) * pageSize

	if err := d.db.WithContext(ctx).Model(&model.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := d.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(int(pageSize)).
		Offset(int(offset)).
		Find(&products).Error

	return products, total, err
}

// CreateProduct inserts a product and returns its id
func (d *ProductDao) CreateProduct(ctx context.Context, product *model.Product) (int64, error) {
	if err := d.db.WithContext(ctx).Create(product).Error; err != nil {
		return 0, err
	}
	return product.ID, nil
}

// UpdateProduct applies a partial update and drops the cache entry
func (d *ProductDao) UpdateProduct(ctx context.Context, productID int64, updates map[string]interface{}) error {
	if err := d.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(updates).Error; err != nil {
		return err
	}
	d.InvalidateCache(ctx, productID)
	return nil
}

// DeleteProductByID removes a product and drops the cache entry
func (d *ProductDao) DeleteProductByID(ctx context.Context, productID int64) error {
	if err := d.db.WithContext(ctx).Delete(&model.Product{}, productID).Error; err != nil {
		return err
	}
	d.InvalidateCache(ctx, productID)
	return nil
}

// InvalidateCache drops the cached copy of a product. Called after any write
// that touches price, stock or the in_stock flag.
func (d *ProductDao) InvalidateCache(ctx context.Context, productID int64) {
	if d.redis == nil {
		return
	}
	if err := d.redis.Del(ctx, productCacheKey(productID)).Err(); err != nil {
		logger.Warn("product cache invalidation failed", "product_id", productID, "err", err)
	}
}
