package models

import "time"

// Product представляет товар фермерского магазина
type Product struct {
	ID            int64     `json:"id"`
	CategoryID    int64     `json:"category_id"`
	CategoryName  string    `json:"category_name,omitempty"` // заполняется через JOIN с таблицей categories
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description,omitempty"`
	Price         float64   `json:"price"`
	Unit          string    `json:"unit"` // например, "kg" или "bunch"
	StockQuantity int       `json:"stock_quantity"`
	IsAvailable   bool      `json:"is_available"`
	IsFeatured    bool      `json:"is_featured"`
	CreatedAt     time.Time `json:"created_at"`
}
