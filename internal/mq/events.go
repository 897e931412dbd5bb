package mq

// Routing keys on the shop exchange
const (
	KeyOrderPlaced   = "order.placed"
	KeyOrderCanceled = "order.canceled"
	KeyStockChange   = "stock.change"
)

// OrderPlacedEvent is published after a placement transaction commits
type OrderPlacedEvent struct {
	EventID      string           `json:"event_id"`
	OccurredAt   int64            `json:"occurred_at"`
	OrderID      int64            `json:"order_id"`
	OrderNo      string           `json:"order_no"`
	UserID       int64            `json:"user_id,omitempty"`
	IsGuest      bool             `json:"is_guest"`
	TotalPayable string           `json:"total_payable"`
	Items        []OrderEventItem `json:"items"`
}

type OrderEventItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

// OrderCanceledEvent is published after a cancellation restores stock
type OrderCanceledEvent struct {
	EventID    string           `json:"event_id"`
	OccurredAt int64            `json:"occurred_at"`
	OrderID    int64            `json:"order_id"`
	OrderNo    string           `json:"order_no"`
	UserID     int64            `json:"user_id,omitempty"`
	Items      []OrderEventItem `json:"items"`
}

// StockChangeEvent is an audit record of a stock mutation
type StockChangeEvent struct {
	ProductID int64  `json:"product_id"`
	Delta     int32  `json:"delta"`
	Reason    string `json:"reason"`
	TimeUnix  int64  `json:"time_unix"`
}
