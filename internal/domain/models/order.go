package models

import "time"

// Статусы жизненного цикла заказа
const (
	OrderStatusPending    = "pending"
	OrderStatusApproved   = "approved"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Order представляет заказ покупателя с доставкой
type Order struct {
	ID              int64        `json:"id"`
	UserID          int64        `json:"user_id"`
	UserName        string       `json:"user_name,omitempty"` // заполняется через JOIN с таблицей users
	OrderNumber     string       `json:"order_number"`
	Status          string       `json:"status"`
	Subtotal        float64      `json:"subtotal"`
	Tax             float64      `json:"tax"`
	DeliveryFee     float64      `json:"delivery_fee"`
	Total           float64      `json:"total"`
	DeliveryAddress string       `json:"delivery_address"`
	DeliveryDate    *time.Time   `json:"delivery_date,omitempty"`
	Notes           string       `json:"notes,omitempty"`
	ApprovedAt      *time.Time   `json:"approved_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	Items           []*OrderItem `json:"items,omitempty"`
}

// OrderItem — позиция заказа; цена фиксируется на момент покупки
type OrderItem struct {
	ID          int64   `json:"id"`
	OrderID     int64   `json:"order_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"` // заполняется через JOIN с таблицей products
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"` // unit_price * quantity, не пересчитывается
}
