package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/linemk/farm-shop/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStorage описывает методы для работы с заказами и их позициями.
type OrderStorage interface {
	// CreateOrder вставляет новый заказ с использованием транзакции и возвращает его id.
	CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error)
	// CreateOrderItem вставляет позицию заказа в той же транзакции.
	CreateOrderItem(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	// GetOrderItems возвращает позиции заказа с названиями товаров.
	GetOrderItems(ctx context.Context, orderID int64) ([]*models.OrderItem, error)
	// ListOrdersByUserID возвращает заказы пользователя, от новых к старым. limit <= 0 — без ограничения.
	ListOrdersByUserID(ctx context.Context, userID int64, limit int) ([]*models.Order, error)
	// ListOrders возвращает заказы с именем покупателя. status == "" — все статусы, limit <= 0 — без ограничения.
	ListOrders(ctx context.Context, status string, limit int) ([]*models.Order, error)
	// UpdateOrderStatus переводит заказ в новый статус; approvedAt задаётся при одобрении.
	UpdateOrderStatus(ctx context.Context, id int64, status string, approvedAt *time.Time) error
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error) {
	query := `INSERT INTO orders
		(user_id, order_number, status, subtotal, tax, delivery_fee, total,
		 delivery_address, delivery_date, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id`
	var id int64
	err := tx.QueryRowContext(ctx, query,
		order.UserID, order.OrderNumber, order.Status, order.Subtotal, order.Tax,
		order.DeliveryFee, order.Total, order.DeliveryAddress, order.DeliveryDate,
		nullString(order.Notes),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create order: %w", err)
	}
	return id, nil
}

func (r *orderRepository) CreateOrderItem(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error {
	query := `INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := tx.ExecContext(ctx, query, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal)
	if err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}
	return nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	query := `
		SELECT o.id, o.user_id, u.name, o.order_number, o.status, o.subtotal, o.tax,
		       o.delivery_fee, o.total, o.delivery_address, o.delivery_date,
		       COALESCE(o.notes, ''), o.approved_at, o.created_at
		FROM orders o
		JOIN users u ON o.user_id = u.id
		WHERE o.id = $1`
	order := &models.Order{}
	row := r.db.QueryRowContext(ctx, query, id)
	if err := scanOrderRow(row, order); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetOrderItems(ctx context.Context, orderID int64) ([]*models.OrderItem, error) {
	query := `
		SELECT i.id, i.order_id, i.product_id, p.name, i.quantity, i.unit_price, i.subtotal
		FROM order_items i
		JOIN products p ON i.product_id = p.id
		WHERE i.order_id = $1
		ORDER BY i.id`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.Subtotal); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *orderRepository) ListOrdersByUserID(ctx context.Context, userID int64, limit int) ([]*models.Order, error) {
	query := `
		SELECT o.id, o.user_id, u.name, o.order_number, o.status, o.subtotal, o.tax,
		       o.delivery_fee, o.total, o.delivery_address, o.delivery_date,
		       COALESCE(o.notes, ''), o.approved_at, o.created_at
		FROM orders o
		JOIN users u ON o.user_id = u.id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC`
	args := []interface{}{userID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *orderRepository) ListOrders(ctx context.Context, status string, limit int) ([]*models.Order, error) {
	query := `
		SELECT o.id, o.user_id, u.name, o.order_number, o.status, o.subtotal, o.tax,
		       o.delivery_fee, o.total, o.delivery_address, o.delivery_date,
		       COALESCE(o.notes, ''), o.approved_at, o.created_at
		FROM orders o
		JOIN users u ON o.user_id = u.id`
	var args []interface{}
	if status != "" {
		query += " WHERE o.status = $1"
		args = append(args, status)
	}
	query += " ORDER BY o.created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id int64, status string, approvedAt *time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, approved_at = COALESCE($2, approved_at) WHERE id = $3",
		status, approvedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// rowScanner покрывает и *sql.Row, и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrderRow(row rowScanner, order *models.Order) error {
	return row.Scan(&order.ID, &order.UserID, &order.UserName, &order.OrderNumber, &order.Status,
		&order.Subtotal, &order.Tax, &order.DeliveryFee, &order.Total, &order.DeliveryAddress,
		&order.DeliveryDate, &order.Notes, &order.ApprovedAt, &order.CreatedAt)
}

func scanOrders(rows *sql.Rows) ([]*models.Order, error) {
	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := scanOrderRow(rows, order); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
