package storage_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/linemk/farm-shop/internal/domain/models"
	"github.com/linemk/farm-shop/internal/storage"
	"github.com/stretchr/testify/assert"
)

func TestGetUserByEmail_Success(t *testing.T) {
	// Создаем sqlmock для эмуляции базы данных.
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	ctx := context.Background()
	createdAt := time.Now()

	rows := sqlmock.NewRows([]string{"id", "name", "email", "pass_hash", "role", "created_at"}).
		AddRow(1, "Test User", "test@example.com", []byte("hashed-password"), "customer", createdAt)

	mock.ExpectQuery("SELECT id, name, email, pass_hash, role, created_at FROM users WHERE email = \\$1").
		WithArgs("test@example.com").WillReturnRows(rows)

	user, err := repo.GetUserByEmail(ctx, "test@example.com")
	assert.NoError(t, err, "Expected no error when user is found")
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "Test User", user.Name)
	assert.Equal(t, models.RoleCustomer, user.Role)

	err = mock.ExpectationsWereMet()
	assert.NoError(t, err)
}

func TestGetUserByEmail_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)

	// Эмулируем ситуацию, когда запрос возвращает 0 строк.
	rows := sqlmock.NewRows([]string{"id", "name", "email", "pass_hash", "role", "created_at"})
	mock.ExpectQuery("SELECT id, name, email, pass_hash, role, created_at FROM users WHERE email = \\$1").
		WithArgs("missing@example.com").WillReturnRows(rows)

	user, err := repo.GetUserByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, storage.ErrUserNotFound, "Expected ErrUserNotFound")
	assert.Nil(t, user)

	err = mock.ExpectationsWereMet()
	assert.NoError(t, err)
}

func TestListCustomers_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "email", "role", "created_at", "orders_count", "total_spent"}).
		AddRow(2, "Alice", "alice@example.com", "customer", time.Now(), 3, 120.50).
		AddRow(1, "Bob", "bob@example.com", "customer", time.Now().Add(-time.Hour), 0, 0.0)

	mock.ExpectQuery("FROM users u").WillReturnRows(rows)

	customers, err := repo.ListCustomers(context.Background())
	assert.NoError(t, err)
	assert.Len(t, customers, 2)
	assert.Equal(t, "Alice", customers[0].Name)
	assert.Equal(t, 3, customers[0].OrdersCount)
	assert.InDelta(t, 120.50, customers[0].TotalSpent, 0.0001)

	err = mock.ExpectationsWereMet()
	assert.NoError(t, err)
}

func TestGetProductByIDTx_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	// Репозиторий читает товар внутри транзакции оформления заказа.
	mock.ExpectBegin()
	rows := sqlmock.NewRows([]string{"id", "category_id", "name", "slug", "price", "unit",
		"stock_quantity", "is_available", "is_featured", "created_at"}).
		AddRow(1, 2, "Apples", "apples", 3.99, "kg", 25, true, false, time.Now())
	mock.ExpectQuery("SELECT id, category_id, name, slug, price, unit, stock_quantity, is_available, is_featured, created_at").
		WithArgs(int64(1)).WillReturnRows(rows)

	repo := storage.NewProductRepository(db)
	tx, err := db.Begin()
	assert.NoError(t, err)

	product, err := repo.GetProductByIDTx(context.Background(), tx, 1)
	assert.NoError(t, err)
	assert.Equal(t, "Apples", product.Name)
	assert.InDelta(t, 3.99, product.Price, 0.0001)

	err = mock.ExpectationsWereMet()
	assert.NoError(t, err)
}

func TestGetProductByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)

	rows := sqlmock.NewRows([]string{"id", "category_id", "category_name", "name", "slug", "description",
		"price", "unit", "stock_quantity", "is_available", "is_featured", "created_at"})
	mock.ExpectQuery("JOIN categories c ON p.category_id = c.id").
		WithArgs(int64(42)).WillReturnRows(rows)

	product, err := repo.GetProductByID(context.Background(), 42)
	assert.ErrorIs(t, err, storage.ErrProductNotFound)
	assert.Nil(t, product)

	err = mock.ExpectationsWereMet()
	assert.NoError(t, err)
}

func TestCreateOrder_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(int64(7), int64(1), 2, 3.99, 7.98).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	repo := storage.NewOrderRepository(db)
	tx, err := db.Begin()
	assert.NoError(t, err)

	order := &models.Order{
		UserID:          1,
		OrderNumber:     "ORD-TEST",
		Status:          models.OrderStatusPending,
		Subtotal:        7.98,
		Tax:             0.798,
		DeliveryFee:     5.00,
		Total:           13.778,
		DeliveryAddress: "12 Main Street",
	}
	id, err := repo.CreateOrder(context.Background(), tx, order)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), id)

	err = repo.CreateOrderItem(context.Background(), tx, &models.OrderItem{
		OrderID: 7, ProductID: 1, Quantity: 2, UnitPrice: 3.99, Subtotal: 7.98,
	})
	assert.NoError(t, err)
	assert.NoError(t, tx.Commit())

	err = mock.ExpectationsWereMet()
	assert.NoError(t, err)
}

func TestUpdateOrderStatus_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)

	// Ноль затронутых строк — заказа с таким id нет.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status = $1, approved_at = COALESCE($2, approved_at) WHERE id = $3")).
		WithArgs(models.OrderStatusApproved, sqlmock.AnyArg(), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	now := time.Now()
	err = repo.UpdateOrderStatus(context.Background(), 99, models.OrderStatusApproved, &now)
	assert.ErrorIs(t, err, storage.ErrOrderNotFound)

	err = mock.ExpectationsWereMet()
	assert.NoError(t, err)
}

func TestUpdateOrderStatus_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status = $1, approved_at = COALESCE($2, approved_at) WHERE id = $3")).
		WithArgs(models.OrderStatusCancelled, nil, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Отклонение не ставит отметку одобрения, approved_at остаётся прежним.
	err = repo.UpdateOrderStatus(context.Background(), 5, models.OrderStatusCancelled, nil)
	assert.NoError(t, err)

	err = mock.ExpectationsWereMet()
	assert.NoError(t, err)
}

func TestCreateBooking_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewBookingRepository(db)

	mock.ExpectQuery("INSERT INTO bookings").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	booking := &models.Booking{
		UserID:         1,
		BookingNumber:  "BKG-TEST",
		Type:           models.BookingTypeTour,
		BookingDate:    time.Now().AddDate(0, 0, 5),
		BookingTime:    "10:00",
		NumberOfPeople: 2,
		Status:         models.BookingStatusPending,
		TotalPrice:     20.00,
	}
	id, err := repo.CreateBooking(context.Background(), booking)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), id)

	err = mock.ExpectationsWereMet()
	assert.NoError(t, err)
}

func TestGetBookingByID_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewBookingRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "booking_number", "type", "booking_date",
		"booking_time", "number_of_people", "status", "special_requests", "total_price", "confirmed_at", "created_at"})
	mock.ExpectQuery("FROM bookings b").WithArgs(int64(99)).WillReturnRows(rows)

	booking, err := repo.GetBookingByID(context.Background(), 99)
	assert.ErrorIs(t, err, storage.ErrBookingNotFound)
	assert.Nil(t, booking)

	err = mock.ExpectationsWereMet()
	assert.NoError(t, err)
}

func TestUpdateBookingStatus_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewBookingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status = $1, confirmed_at = COALESCE($2, confirmed_at) WHERE id = $3")).
		WithArgs(models.BookingStatusConfirmed, sqlmock.AnyArg(), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	now := time.Now()
	err = repo.UpdateBookingStatus(context.Background(), 99, models.BookingStatusConfirmed, &now)
	assert.ErrorIs(t, err, storage.ErrBookingNotFound)

	err = mock.ExpectationsWereMet()
	assert.NoError(t, err)
}

func TestListOrders_FilterAndLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "order_number", "status", "subtotal", "tax",
		"delivery_fee", "total", "delivery_address", "delivery_date", "notes", "approved_at", "created_at"}).
		AddRow(1, 1, "Alice", "ORD-A", "pending", 10.0, 1.0, 5.0, 16.0, "addr", nil, "", nil, time.Now())

	mock.ExpectQuery("FROM orders o").
		WithArgs(models.OrderStatusPending, 10).
		WillReturnRows(rows)

	orders, err := repo.ListOrders(context.Background(), models.OrderStatusPending, 10)
	assert.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, "ORD-A", orders[0].OrderNumber)
	assert.Equal(t, "Alice", orders[0].UserName)

	err = mock.ExpectationsWereMet()
	assert.NoError(t, err)
}

func TestStats_CountOrdersByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewStatsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM orders WHERE status = $1")).
		WithArgs(models.OrderStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountOrdersByStatus(context.Background(), models.OrderStatusPending)
	assert.NoError(t, err)
	assert.Equal(t, 4, count)

	err = mock.ExpectationsWereMet()
	assert.NoError(t, err)
}

func TestStats_SumOrderTotalsInStatuses(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewStatsRepository(db)

	// Массив статусов передается через pq.Array.
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(total), 0) FROM orders WHERE status = ANY($1)")).
		WithArgs(pq.Array([]string{models.OrderStatusPending, models.OrderStatusApproved})).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(120.0))

	sum, err := repo.SumOrderTotalsInStatuses(context.Background(),
		[]string{models.OrderStatusPending, models.OrderStatusApproved})
	assert.NoError(t, err)
	assert.InDelta(t, 120.0, sum, 0.0001)

	err = mock.ExpectationsWereMet()
	assert.NoError(t, err)
}

func TestStats_TopProductsByRevenue(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewStatsRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "total_sold", "total_revenue"}).
		AddRow(1, "Apples", 12, 47.88).
		AddRow(2, "Bread", 5, 12.50)
	mock.ExpectQuery("LEFT JOIN order_items i").WithArgs(5).WillReturnRows(rows)

	products, err := repo.TopProductsByRevenue(context.Background(), 5)
	assert.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, "Apples", products[0].Name)
	assert.Equal(t, 12, products[0].TotalSold)
	assert.InDelta(t, 47.88, products[0].TotalRevenue, 0.0001)

	err = mock.ExpectationsWereMet()
	assert.NoError(t, err)
}

func TestStats_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewStatsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM orders")).
		WillReturnError(errors.New("db error"))

	_, err = repo.CountOrders(context.Background())
	assert.Error(t, err, "Expected error when query fails")

	err = mock.ExpectationsWereMet()
	assert.NoError(t, err)
}
