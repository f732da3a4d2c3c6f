package service_test

import (
	"testing"
	"time"

	"github.com/linemk/farm-shop/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestLastNMonths(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

	months := service.LastNMonths(now, 6)
	assert.Len(t, months, 6)
	// От старого к новому, текущий месяц последним.
	assert.Equal(t, time.October, months[0].Month)
	assert.Equal(t, 2025, months[0].Year)
	assert.Equal(t, time.March, months[5].Month)
	assert.Equal(t, 2026, months[5].Year)
}

func TestLastNMonths_EndOfMonth(t *testing.T) {
	// 31 января: окно не должно перескочить февраль.
	now := time.Date(2026, time.January, 31, 23, 0, 0, 0, time.UTC)

	months := service.LastNMonths(now, 3)
	assert.Equal(t, time.November, months[0].Month)
	assert.Equal(t, time.December, months[1].Month)
	assert.Equal(t, time.January, months[2].Month)
}

func TestMonthKey_Labels(t *testing.T) {
	m := service.MonthKey{Year: 2026, Month: time.January}
	assert.Equal(t, "Jan", m.Label())
	assert.Equal(t, "Jan 2026", m.LabelWithYear())
}

func TestAverageOrderValue(t *testing.T) {
	assert.InDelta(t, 25.0, service.AverageOrderValue(100, 4), 0.0001)
	// Без заказов делить не на что.
	assert.Equal(t, 0.0, service.AverageOrderValue(100, 0))
}

func TestConversionRate(t *testing.T) {
	assert.InDelta(t, 50.0, service.ConversionRate(5, 10), 0.0001)
	assert.Equal(t, 0.0, service.ConversionRate(5, 0))
}

func TestRevenueGrowth(t *testing.T) {
	assert.InDelta(t, 100.0, service.RevenueGrowth(200, 100), 0.0001)
	assert.InDelta(t, -50.0, service.RevenueGrowth(50, 100), 0.0001)
	// Нулевой прошлый месяц не даёт бесконечного роста.
	assert.Equal(t, 0.0, service.RevenueGrowth(1000, 0))
}

func TestTargetProgress(t *testing.T) {
	assert.InDelta(t, 50.0, service.TargetProgress(25000), 0.0001)
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 33.33, service.Round2(33.3333), 0.0001)
	assert.InDelta(t, 66.67, service.Round2(66.666), 0.0001)
}

func TestBuildNotifications_Empty(t *testing.T) {
	notifications := service.BuildNotifications(service.NotificationCounts{})
	assert.Empty(t, notifications, "Zero counters produce no notifications")
}

func TestBuildNotifications_AllRules(t *testing.T) {
	notifications := service.BuildNotifications(service.NotificationCounts{
		PendingOrders:      2,
		PendingBookings:    1,
		LowStockProducts:   3,
		OutOfStockProducts: 1,
		OrdersLastHour:     5,
	})
	assert.Len(t, notifications, 5)

	// Порядок правил фиксированный.
	assert.Equal(t, "You have 2 pending orders", notifications[0].Title)
	assert.Equal(t, "Awaiting your approval", notifications[0].Description)
	assert.Equal(t, "order", notifications[0].Type)

	assert.Equal(t, "1 new booking request", notifications[1].Title)
	assert.Equal(t, "Requires confirmation", notifications[1].Description)
	assert.Equal(t, "booking", notifications[1].Type)

	assert.Equal(t, "3 products running low on stock", notifications[2].Title)
	assert.Equal(t, "system", notifications[2].Type)

	assert.Equal(t, "1 product is out of stock", notifications[3].Title)
	assert.Equal(t, "Immediate attention required", notifications[3].Description)

	assert.Equal(t, "5 new orders received", notifications[4].Title)
	assert.Equal(t, "In the last hour", notifications[4].Description)
}

func TestBuildNotifications_Singular(t *testing.T) {
	notifications := service.BuildNotifications(service.NotificationCounts{
		PendingOrders:      1,
		OutOfStockProducts: 2,
	})
	assert.Len(t, notifications, 2)
	assert.Equal(t, "You have 1 pending order", notifications[0].Title)
	assert.Equal(t, "2 products are out of stock", notifications[1].Title)
}
