package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/farm-shop/internal/domain/models"
	"github.com/linemk/farm-shop/internal/storage"
)

// Лимиты и размеры рядов панели администратора
const (
	dashboardMonths       = 6
	topProductsLimit      = 5
	topCustomersLimit     = 5
	lowStockLimit         = 5
	recentOrdersLimit     = 5
	pendingOrdersLimit    = 10
	recentBookingsLimit   = 5
	upcomingBookingsLimit = 5
	upcomingBookingsDays  = 7
)

// DashboardStats — сводные показатели панели
type DashboardStats struct {
	TotalOrders     int     `json:"total_orders"`
	PendingOrders   int     `json:"pending_orders"`
	TotalRevenue    float64 `json:"total_revenue"` // сумма заказов во всех статусах, кроме cancelled
	TotalCustomers  int     `json:"total_customers"`
	TotalProducts   int     `json:"total_products"`
	PendingBookings int     `json:"pending_bookings"`
}

// MonthlyRevenuePoint — точка ряда выручки по месяцам
type MonthlyRevenuePoint struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// CustomerGrowthPoint — точка ряда прироста покупателей
type CustomerGrowthPoint struct {
	Month     string `json:"month"`
	Customers int    `json:"customers"`
}

// StatusCount — сегмент распределения заказов по статусам
type StatusCount struct {
	Label string `json:"label"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// PerformanceMetrics — производные показатели панели
type PerformanceMetrics struct {
	AverageOrderValue float64 `json:"average_order_value"`
	ConversionRate    float64 `json:"conversion_rate"`
	RevenueTarget     float64 `json:"revenue_target"`
	TargetProgress    float64 `json:"target_progress"`
}

// DashboardResponse — полный ответ панели администратора
type DashboardResponse struct {
	Stats              DashboardStats            `json:"stats"`
	RecentOrders       []*models.Order           `json:"recent_orders"`
	PendingOrders      []*models.Order           `json:"pending_orders"`
	RecentBookings     []*models.Booking         `json:"recent_bookings"`
	Notifications      []Notification            `json:"notifications"`
	OrderStatusData    []StatusCount             `json:"order_status_data"`
	RevenueData        []MonthlyRevenuePoint     `json:"revenue_data"`
	TopProducts        []*models.ProductSales    `json:"top_products"`
	LowStockProducts   []*models.Product         `json:"low_stock_products"`
	PerformanceMetrics PerformanceMetrics        `json:"performance_metrics"`
	UpcomingBookings   []*models.Booking         `json:"upcoming_bookings"`
	SalesByCategory    []*models.CategoryRevenue `json:"sales_by_category"`
	CustomerGrowth     []CustomerGrowthPoint     `json:"customer_growth"`
	TopCustomers       []*models.Customer        `json:"top_customers"`
}

// DashboardService собирает панель администратора.
// Все показатели пересчитываются по текущему состоянию БД на каждый запрос;
// строгой согласованности между отдельными запросами не требуется.
type DashboardService interface {
	GetDashboard(ctx context.Context) (*DashboardResponse, error)
}

type dashboardService struct {
	log         *slog.Logger
	statsRepo   storage.StatsStorage
	orderRepo   storage.OrderStorage
	bookingRepo storage.BookingStorage
}

func NewDashboardService(log *slog.Logger, statsRepo storage.StatsStorage, orderRepo storage.OrderStorage, bookingRepo storage.BookingStorage) DashboardService {
	return &dashboardService{
		log:         log,
		statsRepo:   statsRepo,
		orderRepo:   orderRepo,
		bookingRepo: bookingRepo,
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context) (*DashboardResponse, error) {
	const op = "service.DashboardService.GetDashboard"
	logger := s.log.With(slog.String("op", op))
	now := time.Now()

	stats, err := s.collectStats(ctx)
	if err != nil {
		logger.Error("failed to collect stats", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	recentOrders, err := s.loadOrdersWithItems(ctx, "", recentOrdersLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pendingOrders, err := s.loadOrdersWithItems(ctx, models.OrderStatusPending, pendingOrdersLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	recentBookings, err := s.bookingRepo.ListBookings(ctx, "", recentBookingsLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	notifications, err := s.buildNotifications(ctx, stats, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Ряд выручки за последние 6 месяцев, включая текущий; пустые месяцы дают ноль
	months := LastNMonths(now, dashboardMonths)
	revenueData := make([]MonthlyRevenuePoint, 0, len(months))
	for _, m := range months {
		revenue, err := s.statsRepo.SumOrderTotalsForMonthExcluding(ctx, m.Year, int(m.Month), models.OrderStatusCancelled)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to sum monthly revenue: %w", op, err)
		}
		revenueData = append(revenueData, MonthlyRevenuePoint{Month: m.Label(), Revenue: revenue})
	}

	// Прирост покупателей за те же 6 месяцев
	customerGrowth := make([]CustomerGrowthPoint, 0, len(months))
	for _, m := range months {
		customers, err := s.statsRepo.CountCustomersForMonth(ctx, m.Year, int(m.Month))
		if err != nil {
			return nil, fmt.Errorf("%s: failed to count monthly customers: %w", op, err)
		}
		customerGrowth = append(customerGrowth, CustomerGrowthPoint{Month: m.Label(), Customers: customers})
	}

	topProducts, err := s.statsRepo.TopProductsByRevenue(ctx, topProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	lowStock, err := s.statsRepo.ListLowStockProducts(ctx, lowStockLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	topCustomers, err := s.statsRepo.TopCustomersBySpend(ctx, topCustomersLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	salesByCategory, err := s.statsRepo.SalesByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics, err := s.collectPerformanceMetrics(ctx, stats)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	orderStatusData, err := s.collectOrderStatusData(ctx, stats)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Бронирования на ближайшую неделю
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	upcoming, err := s.bookingRepo.ListUpcomingBookings(ctx, today, today.AddDate(0, 0, upcomingBookingsDays), upcomingBookingsLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &DashboardResponse{
		Stats:              stats,
		RecentOrders:       recentOrders,
		PendingOrders:      pendingOrders,
		RecentBookings:     recentBookings,
		Notifications:      notifications,
		OrderStatusData:    orderStatusData,
		RevenueData:        revenueData,
		TopProducts:        topProducts,
		LowStockProducts:   lowStock,
		PerformanceMetrics: metrics,
		UpcomingBookings:   upcoming,
		SalesByCategory:    salesByCategory,
		CustomerGrowth:     customerGrowth,
		TopCustomers:       topCustomers,
	}, nil
}

func (s *dashboardService) collectStats(ctx context.Context) (DashboardStats, error) {
	totalOrders, err := s.statsRepo.CountOrders(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	pendingOrders, err := s.statsRepo.CountOrdersByStatus(ctx, models.OrderStatusPending)
	if err != nil {
		return DashboardStats{}, err
	}
	totalRevenue, err := s.statsRepo.SumOrderTotalsExcluding(ctx, models.OrderStatusCancelled)
	if err != nil {
		return DashboardStats{}, err
	}
	totalCustomers, err := s.statsRepo.CountCustomers(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	totalProducts, err := s.statsRepo.CountProducts(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	pendingBookings, err := s.statsRepo.CountBookingsByStatus(ctx, models.BookingStatusPending)
	if err != nil {
		return DashboardStats{}, err
	}
	return DashboardStats{
		TotalOrders:     totalOrders,
		PendingOrders:   pendingOrders,
		TotalRevenue:    totalRevenue,
		TotalCustomers:  totalCustomers,
		TotalProducts:   totalProducts,
		PendingBookings: pendingBookings,
	}, nil
}

func (s *dashboardService) buildNotifications(ctx context.Context, stats DashboardStats, now time.Time) ([]Notification, error) {
	lowStock, err := s.statsRepo.CountProductsLowStock(ctx)
	if err != nil {
		return nil, err
	}
	outOfStock, err := s.statsRepo.CountProductsOutOfStock(ctx)
	if err != nil {
		return nil, err
	}
	lastHour, err := s.statsRepo.CountOrdersCreatedSince(ctx, now.Add(-time.Hour))
	if err != nil {
		return nil, err
	}
	return BuildNotifications(NotificationCounts{
		PendingOrders:      stats.PendingOrders,
		PendingBookings:    stats.PendingBookings,
		LowStockProducts:   lowStock,
		OutOfStockProducts: outOfStock,
		OrdersLastHour:     lastHour,
	}), nil
}

func (s *dashboardService) collectPerformanceMetrics(ctx context.Context, stats DashboardStats) (PerformanceMetrics, error) {
	cancelled, err := s.statsRepo.CountOrdersByStatus(ctx, models.OrderStatusCancelled)
	if err != nil {
		return PerformanceMetrics{}, err
	}
	withOrders, err := s.statsRepo.CountCustomersWithOrders(ctx)
	if err != nil {
		return PerformanceMetrics{}, err
	}
	return PerformanceMetrics{
		AverageOrderValue: AverageOrderValue(stats.TotalRevenue, stats.TotalOrders-cancelled),
		ConversionRate:    ConversionRate(withOrders, stats.TotalCustomers),
		RevenueTarget:     RevenueTarget,
		TargetProgress:    TargetProgress(stats.TotalRevenue),
	}, nil
}

func (s *dashboardService) collectOrderStatusData(ctx context.Context, stats DashboardStats) ([]StatusCount, error) {
	approved, err := s.statsRepo.CountOrdersByStatus(ctx, models.OrderStatusApproved)
	if err != nil {
		return nil, err
	}
	completed, err := s.statsRepo.CountOrdersByStatus(ctx, models.OrderStatusCompleted)
	if err != nil {
		return nil, err
	}
	cancelled, err := s.statsRepo.CountOrdersByStatus(ctx, models.OrderStatusCancelled)
	if err != nil {
		return nil, err
	}
	return []StatusCount{
		{Label: "Pending", Value: stats.PendingOrders, Color: "rgb(234, 179, 8)"},
		{Label: "Approved", Value: approved, Color: "rgb(59, 130, 246)"},
		{Label: "Completed", Value: completed, Color: "rgb(34, 197, 94)"},
		{Label: "Cancelled", Value: cancelled, Color: "rgb(239, 68, 68)"},
	}, nil
}

func (s *dashboardService) loadOrdersWithItems(ctx context.Context, status string, limit int) ([]*models.Order, error) {
	orders, err := s.orderRepo.ListOrders(ctx, status, limit)
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		items, err := s.orderRepo.GetOrderItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}
	return orders, nil
}
