package service

import (
	"fmt"
	"math"
	"time"
)

// Чистые функции агрегационной математики для админских отчётов.
// Репозитории отдают числа, здесь из них собираются метрики и ряды.

// MonthKey — месяц календаря, ключ бакета временного ряда
type MonthKey struct {
	Year  int
	Month time.Month
}

// Label возвращает короткое имя месяца, например "Jan".
func (m MonthKey) Label() string {
	return m.Month.String()[:3]
}

// LabelWithYear возвращает имя месяца с годом, например "Jan 2026".
func (m MonthKey) LabelWithYear() string {
	return fmt.Sprintf("%s %d", m.Label(), m.Year)
}

// LastNMonths возвращает n календарных месяцев, включая текущий, от старого к новому.
// Счёт ведётся от первого числа месяца, чтобы конец месяца не сдвигал окно
// (у AddDate 31 января минус месяц даёт март).
func LastNMonths(now time.Time, n int) []MonthKey {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	months := make([]MonthKey, 0, n)
	for i := n - 1; i >= 0; i-- {
		m := first.AddDate(0, -i, 0)
		months = append(months, MonthKey{Year: m.Year(), Month: m.Month()})
	}
	return months
}

// AverageOrderValue — средний чек; 0 при отсутствии заказов.
func AverageOrderValue(totalValue float64, orderCount int) float64 {
	if orderCount == 0 {
		return 0
	}
	return totalValue / float64(orderCount)
}

// ConversionRate — доля покупателей с хотя бы одним заказом, в процентах; 0 при отсутствии покупателей.
func ConversionRate(customersWithOrders, totalCustomers int) float64 {
	if totalCustomers == 0 {
		return 0
	}
	return float64(customersWithOrders) / float64(totalCustomers) * 100
}

// RevenueGrowth — рост выручки месяц к месяцу, в процентах; 0, если прошлый месяц нулевой.
func RevenueGrowth(thisMonth, lastMonth float64) float64 {
	if lastMonth == 0 {
		return 0
	}
	return (thisMonth - lastMonth) / lastMonth * 100
}

// TargetProgress — процент выполнения плана по выручке.
func TargetProgress(totalRevenue float64) float64 {
	return totalRevenue / RevenueTarget * 100
}

// Round2 округляет до двух знаков, используется для процентов в отчётах.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Notification — сообщение для панели администратора
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"` // order, booking или system
}

// NotificationCounts — счётчики, по которым строятся уведомления
type NotificationCounts struct {
	PendingOrders      int
	PendingBookings    int
	LowStockProducts   int
	OutOfStockProducts int
	OrdersLastHour     int
}

// BuildNotifications строит список уведомлений по фиксированному набору правил.
// Порядок правил постоянный, каждое правило даёт не больше одного сообщения;
// при нулевых счётчиках список пуст.
func BuildNotifications(c NotificationCounts) []Notification {
	var notifications []Notification

	if c.PendingOrders > 0 {
		notifications = append(notifications, Notification{
			Title: fmt.Sprintf("You have %d pending %s",
				c.PendingOrders, pluralize(c.PendingOrders, "order", "orders")),
			Description: "Awaiting your approval",
			Type:        "order",
		})
	}
	if c.PendingBookings > 0 {
		notifications = append(notifications, Notification{
			Title: fmt.Sprintf("%d new booking %s",
				c.PendingBookings, pluralize(c.PendingBookings, "request", "requests")),
			Description: "Requires confirmation",
			Type:        "booking",
		})
	}
	if c.LowStockProducts > 0 {
		notifications = append(notifications, Notification{
			Title: fmt.Sprintf("%d %s running low on stock",
				c.LowStockProducts, pluralize(c.LowStockProducts, "product", "products")),
			Description: "Restock needed soon",
			Type:        "system",
		})
	}
	if c.OutOfStockProducts > 0 {
		notifications = append(notifications, Notification{
			Title: fmt.Sprintf("%d %s out of stock",
				c.OutOfStockProducts, pluralize(c.OutOfStockProducts, "product is", "products are")),
			Description: "Immediate attention required",
			Type:        "system",
		})
	}
	if c.OrdersLastHour > 0 {
		notifications = append(notifications, Notification{
			Title: fmt.Sprintf("%d new %s received",
				c.OrdersLastHour, pluralize(c.OrdersLastHour, "order", "orders")),
			Description: "In the last hour",
			Type:        "order",
		})
	}

	return notifications
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
