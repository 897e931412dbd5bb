package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"size:150;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int32           `gorm:"not null;default:0" json:"stock"`
	InStock     bool            `gorm:"not null;default:true" json:"in_stock"`
	// Colors is a comma-separated set of offered colors, e.g. "black,silver"
	Colors    string    `gorm:"size:255" json:"colors"`
	ImageURL  string    `gorm:"size:255" json:"image_url"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (*Product) TableName() string {
	return "products"
}

// HasColor reports whether the product offers the given color. An empty
// requested color is always acceptable.
func (p *Product) HasColor(color string) bool {
	if color == "" || p.Colors == "" {
		return true
	}
	for _, c := range strings.Split(p.Colors, ",") {
		if strings.EqualFold(strings.TrimSpace(c), color) {
			return true
		}
	}
	return false
}
