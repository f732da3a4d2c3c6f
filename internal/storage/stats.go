package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/linemk/farm-shop/internal/domain/models"
)

// StatsStorage описывает агрегирующие запросы для админских отчётов.
// Все методы читают текущее состояние БД, кэширования нет.
type StatsStorage interface {
	CountOrders(ctx context.Context) (int, error)
	CountOrdersByStatus(ctx context.Context, status string) (int, error)
	CountOrdersCreatedSince(ctx context.Context, since time.Time) (int, error)
	// SumOrderTotalsExcluding суммирует заказы во всех статусах, кроме указанного.
	SumOrderTotalsExcluding(ctx context.Context, excludedStatus string) (float64, error)
	SumOrderTotalsByStatus(ctx context.Context, status string) (float64, error)
	SumOrderTotalsInStatuses(ctx context.Context, statuses []string) (float64, error)
	SumOrderTotalsForMonthExcluding(ctx context.Context, year, month int, excludedStatus string) (float64, error)
	SumOrderTotalsForMonthByStatus(ctx context.Context, year, month int, status string) (float64, error)
	SumBookingTotalsByStatus(ctx context.Context, status string) (float64, error)
	SumBookingTotalsForMonthByStatus(ctx context.Context, year, month int, status string) (float64, error)
	CountBookingsByStatus(ctx context.Context, status string) (int, error)
	CountCustomers(ctx context.Context) (int, error)
	CountCustomersForMonth(ctx context.Context, year, month int) (int, error)
	// CountCustomersWithOrders считает уникальных пользователей, у которых есть хотя бы один заказ.
	CountCustomersWithOrders(ctx context.Context) (int, error)
	CountProducts(ctx context.Context) (int, error)
	CountProductsLowStock(ctx context.Context) (int, error)
	CountProductsOutOfStock(ctx context.Context) (int, error)
	ListLowStockProducts(ctx context.Context, limit int) ([]*models.Product, error)
	// TopProductsByRevenue ранжирует товары по выручке неотменённых заказов, при равенстве — по id.
	TopProductsByRevenue(ctx context.Context, limit int) ([]*models.ProductSales, error)
	// TopCustomersBySpend ранжирует покупателей по сумме неотменённых заказов, при равенстве — по id.
	TopCustomersBySpend(ctx context.Context, limit int) ([]*models.Customer, error)
	// SalesByCategory — выручка по категориям по неотменённым заказам, по убыванию.
	SalesByCategory(ctx context.Context) ([]*models.CategoryRevenue, error)
	// CompletedRevenueByCategory — выручка по категориям только по завершённым заказам.
	CompletedRevenueByCategory(ctx context.Context) ([]*models.CategoryRevenue, error)
}

type statsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) StatsStorage {
	return &statsRepository{db: db}
}

func (r *statsRepository) countRow(ctx context.Context, query string, args ...interface{}) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *statsRepository) sumRow(ctx context.Context, query string, args ...interface{}) (float64, error) {
	var sum float64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&sum); err != nil {
		return 0, err
	}
	return sum, nil
}

func (r *statsRepository) CountOrders(ctx context.Context) (int, error) {
	return r.countRow(ctx, "SELECT COUNT(*) FROM orders")
}

func (r *statsRepository) CountOrdersByStatus(ctx context.Context, status string) (int, error) {
	return r.countRow(ctx, "SELECT COUNT(*) FROM orders WHERE status = $1", status)
}

func (r *statsRepository) CountOrdersCreatedSince(ctx context.Context, since time.Time) (int, error) {
	return r.countRow(ctx, "SELECT COUNT(*) FROM orders WHERE created_at >= $1", since)
}

func (r *statsRepository) SumOrderTotalsExcluding(ctx context.Context, excludedStatus string) (float64, error) {
	return r.sumRow(ctx,
		"SELECT COALESCE(SUM(total), 0) FROM orders WHERE status <> $1", excludedStatus)
}

func (r *statsRepository) SumOrderTotalsByStatus(ctx context.Context, status string) (float64, error) {
	return r.sumRow(ctx,
		"SELECT COALESCE(SUM(total), 0) FROM orders WHERE status = $1", status)
}

func (r *statsRepository) SumOrderTotalsInStatuses(ctx context.Context, statuses []string) (float64, error) {
	return r.sumRow(ctx,
		"SELECT COALESCE(SUM(total), 0) FROM orders WHERE status = ANY($1)", pq.Array(statuses))
}

func (r *statsRepository) SumOrderTotalsForMonthExcluding(ctx context.Context, year, month int, excludedStatus string) (float64, error) {
	return r.sumRow(ctx, `
		SELECT COALESCE(SUM(total), 0) FROM orders
		WHERE status <> $1
		  AND EXTRACT(YEAR FROM created_at) = $2
		  AND EXTRACT(MONTH FROM created_at) = $3`,
		excludedStatus, year, month)
}

func (r *statsRepository) SumOrderTotalsForMonthByStatus(ctx context.Context, year, month int, status string) (float64, error) {
	return r.sumRow(ctx, `
		SELECT COALESCE(SUM(total), 0) FROM orders
		WHERE status = $1
		  AND EXTRACT(YEAR FROM created_at) = $2
		  AND EXTRACT(MONTH FROM created_at) = $3`,
		status, year, month)
}

func (r *statsRepository) SumBookingTotalsByStatus(ctx context.Context, status string) (float64, error) {
	return r.sumRow(ctx,
		"SELECT COALESCE(SUM(total_price), 0) FROM bookings WHERE status = $1", status)
}

func (r *statsRepository) SumBookingTotalsForMonthByStatus(ctx context.Context, year, month int, status string) (float64, error) {
	return r.sumRow(ctx, `
		SELECT COALESCE(SUM(total_price), 0) FROM bookings
		WHERE status = $1
		  AND EXTRACT(YEAR FROM created_at) = $2
		  AND EXTRACT(MONTH FROM created_at) = $3`,
		status, year, month)
}

func (r *statsRepository) CountBookingsByStatus(ctx context.Context, status string) (int, error) {
	return r.countRow(ctx, "SELECT COUNT(*) FROM bookings WHERE status = $1", status)
}

func (r *statsRepository) CountCustomers(ctx context.Context) (int, error) {
	return r.countRow(ctx, "SELECT COUNT(*) FROM users WHERE role = 'customer'")
}

func (r *statsRepository) CountCustomersForMonth(ctx context.Context, year, month int) (int, error) {
	return r.countRow(ctx, `
		SELECT COUNT(*) FROM users
		WHERE role = 'customer'
		  AND EXTRACT(YEAR FROM created_at) = $1
		  AND EXTRACT(MONTH FROM created_at) = $2`,
		year, month)
}

func (r *statsRepository) CountCustomersWithOrders(ctx context.Context) (int, error) {
	return r.countRow(ctx, "SELECT COUNT(DISTINCT user_id) FROM orders")
}

func (r *statsRepository) CountProducts(ctx context.Context) (int, error) {
	return r.countRow(ctx, "SELECT COUNT(*) FROM products")
}

func (r *statsRepository) CountProductsLowStock(ctx context.Context) (int, error) {
	return r.countRow(ctx,
		"SELECT COUNT(*) FROM products WHERE stock_quantity > 0 AND stock_quantity < 10")
}

func (r *statsRepository) CountProductsOutOfStock(ctx context.Context) (int, error) {
	return r.countRow(ctx, "SELECT COUNT(*) FROM products WHERE stock_quantity = 0")
}

func (r *statsRepository) ListLowStockProducts(ctx context.Context, limit int) ([]*models.Product, error) {
	query := `
		SELECT p.id, p.category_id, c.name, p.name, p.slug, COALESCE(p.description, ''),
		       p.price, p.unit, p.stock_quantity, p.is_available, p.is_featured, p.created_at
		FROM products p
		JOIN categories c ON p.category_id = c.id
		WHERE p.stock_quantity > 0 AND p.stock_quantity < 10
		ORDER BY p.stock_quantity ASC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *statsRepository) TopProductsByRevenue(ctx context.Context, limit int) ([]*models.ProductSales, error) {
	query := `
		SELECT p.id, p.name,
		       COALESCE(SUM(i.quantity), 0) AS total_sold,
		       COALESCE(SUM(i.subtotal) FILTER (WHERE o.status <> 'cancelled'), 0) AS total_revenue
		FROM products p
		LEFT JOIN order_items i ON i.product_id = p.id
		LEFT JOIN orders o ON i.order_id = o.id
		GROUP BY p.id, p.name
		ORDER BY total_revenue DESC, p.id ASC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	defer rows.Close()

	var result []*models.ProductSales
	for rows.Next() {
		ps := &models.ProductSales{}
		if err := rows.Scan(&ps.ProductID, &ps.Name, &ps.TotalSold, &ps.TotalRevenue); err != nil {
			return nil, fmt.Errorf("failed to scan product sales: %w", err)
		}
		result = append(result, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *statsRepository) TopCustomersBySpend(ctx context.Context, limit int) ([]*models.Customer, error) {
	query := `
		SELECT u.id, u.name, u.email, u.role, u.created_at,
		       COUNT(o.id) AS orders_count,
		       COALESCE(SUM(o.total) FILTER (WHERE o.status <> 'cancelled'), 0) AS total_spent
		FROM users u
		LEFT JOIN orders o ON o.user_id = u.id
		WHERE u.role = 'customer'
		GROUP BY u.id
		ORDER BY total_spent DESC, u.id ASC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top customers: %w", err)
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c := &models.Customer{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Role, &c.CreatedAt, &c.OrdersCount, &c.TotalSpent); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *statsRepository) SalesByCategory(ctx context.Context) ([]*models.CategoryRevenue, error) {
	query := `
		SELECT c.name AS category, SUM(i.subtotal) AS revenue
		FROM order_items i
		JOIN products p ON i.product_id = p.id
		JOIN categories c ON p.category_id = c.id
		JOIN orders o ON i.order_id = o.id
		WHERE o.status <> 'cancelled'
		GROUP BY c.id, c.name
		ORDER BY revenue DESC`
	return r.queryCategoryRevenue(ctx, query)
}

func (r *statsRepository) CompletedRevenueByCategory(ctx context.Context) ([]*models.CategoryRevenue, error) {
	query := `
		SELECT c.name AS category, SUM(i.subtotal) AS revenue
		FROM orders o
		JOIN order_items i ON o.id = i.order_id
		JOIN products p ON i.product_id = p.id
		JOIN categories c ON p.category_id = c.id
		WHERE o.status = 'completed'
		GROUP BY c.id, c.name
		ORDER BY revenue DESC`
	return r.queryCategoryRevenue(ctx, query)
}

func (r *statsRepository) queryCategoryRevenue(ctx context.Context, query string) ([]*models.CategoryRevenue, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query category revenue: %w", err)
	}
	defer rows.Close()

	var result []*models.CategoryRevenue
	for rows.Next() {
		cr := &models.CategoryRevenue{}
		if err := rows.Scan(&cr.Category, &cr.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan category revenue: %w", err)
		}
		result = append(result, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
