package models

import "time"

// Роли пользователей
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User представляет пользователя магазина (покупателя или администратора)
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	PassHash  []byte    `json:"-"`
	Role      string    `json:"role"` // customer или admin
	CreatedAt time.Time `json:"created_at"`
}

// Customer — покупатель в списке администратора, дополненный агрегатами по заказам
type Customer struct {
	User
	OrdersCount int     `json:"orders_count"`
	TotalSpent  float64 `json:"total_spent"` // сумма неотменённых заказов
}
