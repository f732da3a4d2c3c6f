package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/farm-shop/internal/domain/models"
	"github.com/linemk/farm-shop/internal/storage"
)

// Глубина отчёта по выручке
const revenueMonths = 12

// RevenueStats — сводка страницы выручки. В выручку входят завершённые заказы
// и подтверждённые бронирования; ожидаемая выручка — заказы в статусах
// pending/approved и неподтверждённые бронирования.
type RevenueStats struct {
	TotalRevenue      float64 `json:"total_revenue"`
	OrderRevenue      float64 `json:"order_revenue"`
	BookingRevenue    float64 `json:"booking_revenue"`
	ThisMonthRevenue  float64 `json:"this_month_revenue"`
	LastMonthRevenue  float64 `json:"last_month_revenue"`
	RevenueGrowth     float64 `json:"revenue_growth"` // проценты, округлены до сотых
	PendingRevenue    float64 `json:"pending_revenue"`
	CompletedOrders   int     `json:"completed_orders"`
	CompletedBookings int     `json:"completed_bookings"`
}

// MonthlyRevenueEntry — месяц отчёта с разбивкой на заказы и бронирования
type MonthlyRevenueEntry struct {
	Month    string  `json:"month"` // например, "Jan 2026"
	Revenue  float64 `json:"revenue"`
	Orders   float64 `json:"orders"`
	Bookings float64 `json:"bookings"`
}

// RevenueResponse — полный ответ страницы выручки
type RevenueResponse struct {
	Stats             RevenueStats              `json:"stats"`
	MonthlyRevenue    []MonthlyRevenueEntry     `json:"monthly_revenue"`
	RevenueByCategory []*models.CategoryRevenue `json:"revenue_by_category"`
}

// RevenueService строит отчёт по выручке за последние 12 месяцев.
type RevenueService interface {
	GetRevenue(ctx context.Context) (*RevenueResponse, error)
}

type revenueService struct {
	log       *slog.Logger
	statsRepo storage.StatsStorage
}

func NewRevenueService(log *slog.Logger, statsRepo storage.StatsStorage) RevenueService {
	return &revenueService{
		log:       log,
		statsRepo: statsRepo,
	}
}

func (s *revenueService) GetRevenue(ctx context.Context) (*RevenueResponse, error) {
	const op = "service.RevenueService.GetRevenue"
	logger := s.log.With(slog.String("op", op))
	now := time.Now()

	orderRevenue, err := s.statsRepo.SumOrderTotalsByStatus(ctx, models.OrderStatusCompleted)
	if err != nil {
		logger.Error("failed to sum order revenue", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	bookingRevenue, err := s.statsRepo.SumBookingTotalsByStatus(ctx, models.BookingStatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	completedOrders, err := s.statsRepo.CountOrdersByStatus(ctx, models.OrderStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	completedBookings, err := s.statsRepo.CountBookingsByStatus(ctx, models.BookingStatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Ряд за 12 месяцев, включая текущий; последние две точки дают сравнение месяц к месяцу
	months := LastNMonths(now, revenueMonths)
	monthly := make([]MonthlyRevenueEntry, 0, len(months))
	for _, m := range months {
		orders, err := s.statsRepo.SumOrderTotalsForMonthByStatus(ctx, m.Year, int(m.Month), models.OrderStatusCompleted)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to sum monthly orders: %w", op, err)
		}
		bookings, err := s.statsRepo.SumBookingTotalsForMonthByStatus(ctx, m.Year, int(m.Month), models.BookingStatusConfirmed)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to sum monthly bookings: %w", op, err)
		}
		monthly = append(monthly, MonthlyRevenueEntry{
			Month:    m.LabelWithYear(),
			Revenue:  orders + bookings,
			Orders:   orders,
			Bookings: bookings,
		})
	}

	thisMonth := monthly[len(monthly)-1].Revenue
	lastMonth := monthly[len(monthly)-2].Revenue

	pendingOrderRevenue, err := s.statsRepo.SumOrderTotalsInStatuses(ctx,
		[]string{models.OrderStatusPending, models.OrderStatusApproved})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pendingBookingRevenue, err := s.statsRepo.SumBookingTotalsByStatus(ctx, models.BookingStatusPending)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	byCategory, err := s.statsRepo.CompletedRevenueByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RevenueResponse{
		Stats: RevenueStats{
			TotalRevenue:      orderRevenue + bookingRevenue,
			OrderRevenue:      orderRevenue,
			BookingRevenue:    bookingRevenue,
			ThisMonthRevenue:  thisMonth,
			LastMonthRevenue:  lastMonth,
			RevenueGrowth:     Round2(RevenueGrowth(thisMonth, lastMonth)),
			PendingRevenue:    pendingOrderRevenue + pendingBookingRevenue,
			CompletedOrders:   completedOrders,
			CompletedBookings: completedBookings,
		},
		MonthlyRevenue:    monthly,
		RevenueByCategory: byCategory,
	}, nil
}
