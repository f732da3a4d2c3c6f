package models

// ProductSales — товар в рейтинге продаж
type ProductSales struct {
	ProductID    int64   `json:"product_id"`
	Name         string  `json:"name"`
	TotalSold    int     `json:"total_sold"`    // суммарное количество по позициям заказов
	TotalRevenue float64 `json:"total_revenue"` // выручка по неотменённым заказам
}

// CategoryRevenue — выручка по категории товаров
type CategoryRevenue struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
}
