package service

import (
	"context"
	"testing"

	"github.com/Ahnabu/evo-tech-sub001/internal/model"
	"github.com/Ahnabu/evo-tech-sub001/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int32ptr(n int32) *int32 { return &n }

func TestCreateAndGetProduct(t *testing.T) {
	ms := newMemStore()
	svc := NewProductService(ms)

	id, err := svc.CreateProduct(context.Background(), &ProductInput{
		Name:  "Bluetooth Speaker",
		Price: dec("150"),
		Stock: int32ptr(4),
	})
	require.NoError(t, err)

	p, err := svc.GetProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Bluetooth Speaker", p.Name)
	assert.True(t, p.InStock)

	_, err = svc.GetProduct(context.Background(), 999)
	biz, ok := e.AsBizError(err)
	require.True(t, ok)
	assert.Equal(t, e.ERROR_PRODUCT_NOT_EXISTS, biz.Code)
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewProductService(newMemStore())
	_, err := svc.CreateProduct(context.Background(), &ProductInput{Name: "", Price: dec("10")})
	biz, ok := e.AsBizError(err)
	require.True(t, ok)
	assert.Equal(t, e.INVALID_PARAMS, biz.Code)

	_, err = svc.CreateProduct(context.Background(), &ProductInput{Name: "Free Stuff", Price: dec("0")})
	biz, ok = e.AsBizError(err)
	require.True(t, ok)
	assert.Equal(t, e.INVALID_PARAMS, biz.Code)
}

func TestUpdateProductStockKeepsFlagCoherent(t *testing.T) {
	ms := newMemStore()
	svc := NewProductService(ms)
	p := ms.seedProduct(&model.Product{Name: "Speaker", Price: dec("150"), Stock: 4, InStock: true})

	require.NoError(t, svc.UpdateProduct(context.Background(), p.ID, &ProductInput{Stock: int32ptr(0)}))
	got, err := ms.GetProductByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(0), got.Stock)
	assert.False(t, got.InStock)

	require.NoError(t, svc.UpdateProduct(context.Background(), p.ID, &ProductInput{Stock: int32ptr(7)}))
	got, err = ms.GetProductByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(7), got.Stock)
	assert.True(t, got.InStock)
}

func TestDeleteProduct(t *testing.T) {
	ms := newMemStore()
	svc := NewProductService(ms)
	p := ms.seedProduct(&model.Product{Name: "Speaker", Price: dec("150"), Stock: 4, InStock: true})

	require.NoError(t, svc.DeleteProduct(context.Background(), p.ID))
	err := svc.DeleteProduct(context.Background(), p.ID)
	biz, ok := e.AsBizError(err)
	require.True(t, ok)
	assert.Equal(t, e.ERROR_PRODUCT_NOT_EXISTS, biz.Code)
}
