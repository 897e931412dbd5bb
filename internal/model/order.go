package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order status values. Status updates are not validated as a state machine;
// only the delivered timestamp is stamped once on first transition.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment status values, independent of order status
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

type Order struct {
	ID      int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderNo string `gorm:"column:order_no;size:40;not null;uniqueIndex" json:"order_no"`

	// UserID is nil for guest orders until they are linked to an account
	UserID     *int64 `gorm:"column:user_id;index" json:"user_id"`
	IsGuest    bool   `gorm:"column:is_guest;not null;default:false;index" json:"is_guest"`
	GuestEmail string `gorm:"column:guest_email;size:100;index" json:"guest_email,omitempty"`

	// customer / shipping snapshot
	Firstname   string `gorm:"size:50;not null" json:"firstname"`
	Lastname    string `gorm:"size:50;not null" json:"lastname"`
	Phone       string `gorm:"size:20;not null" json:"phone"`
	Email       string `gorm:"size:100" json:"email"`
	HouseStreet string `gorm:"column:house_street;size:255;not null" json:"house_street"`
	City        string `gorm:"size:50;not null" json:"city"`
	Postcode    string `gorm:"size:20" json:"postcode"`
	Country     string `gorm:"size:50;not null" json:"country"`

	ShippingType  string `gorm:"column:shipping_type;size:30;not null" json:"shipping_type"`
	PaymentMethod string `gorm:"column:payment_method;size:30;not null" json:"payment_method"`

	Subtotal         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	DeliveryCharge   decimal.Decimal `gorm:"column:delivery_charge;type:decimal(10,2);not null" json:"delivery_charge"`
	AdditionalCharge decimal.Decimal `gorm:"column:additional_charge;type:decimal(10,2);not null" json:"additional_charge"`
	Discount         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discount"`
	TotalPayable     decimal.Decimal `gorm:"column:total_payable;type:decimal(10,2);not null" json:"total_payable"`

	OrderStatus   string `gorm:"column:order_status;size:20;not null;default:pending;index" json:"order_status"`
	PaymentStatus string `gorm:"column:payment_status;size:20;not null;default:pending;index" json:"payment_status"`

	TrackingCode       string     `gorm:"column:tracking_code;size:100" json:"tracking_code,omitempty"`
	BkashTransactionID string     `gorm:"column:bkash_transaction_id;size:100" json:"bkash_transaction_id,omitempty"`
	Notes              string     `gorm:"type:text" json:"notes,omitempty"`
	DeliveredAt        *time.Time `gorm:"column:delivered_at" json:"delivered_at,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`

	// ItemCount is filled by the list aggregation, not persisted
	ItemCount int64 `gorm:"-" json:"item_count,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (*Order) TableName() string {
	return "orders"
}

// OrderItem is one line per distinct (product, color) pair, carrying a
// snapshot of name and unit price at time of purchase.
type OrderItem struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID       int64           `gorm:"column:order_id;not null;index" json:"order_id"`
	ProductID     int64           `gorm:"column:product_id;not null;index" json:"product_id"`
	ProductName   string          `gorm:"column:product_name;size:150;not null" json:"product_name"`
	UnitPrice     decimal.Decimal `gorm:"column:unit_price;type:decimal(10,2);not null" json:"unit_price"`
	SelectedColor string          `gorm:"column:selected_color;size:30" json:"selected_color,omitempty"`
	Quantity      int32           `gorm:"not null" json:"quantity"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (*OrderItem) TableName() string {
	return "order_items"
}
