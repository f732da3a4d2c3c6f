package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/farm-shop/internal/app/handlers"
	"github.com/linemk/farm-shop/internal/domain/models"
	"github.com/linemk/farm-shop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/farm-shop/internal/service"
	"github.com/linemk/farm-shop/internal/storage"
	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// withUser кладёт userID и роль в контекст запроса, как это делает JWT middleware.
func withUser(r *http.Request, userID int64, role string) *http.Request {
	ctx := context.WithValue(r.Context(), jwtmiddleware.UserIDKey, userID)
	ctx = context.WithValue(ctx, jwtmiddleware.RoleKey, role)
	return r.WithContext(ctx)
}

type fakeAuthService struct {
	token string
	err   error
}

func (f *fakeAuthService) Login(ctx context.Context, name, email, password string) (string, error) {
	return f.token, f.err
}

func TestAuthHandler_Success(t *testing.T) {
	handler := handlers.AuthHandler(testLogger(), &fakeAuthService{token: "jwt-token"})

	body := bytes.NewBufferString(`{"email":"test@example.com","password":"password123"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth", body)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp handlers.AuthResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "jwt-token", resp.Token)
}

func TestAuthHandler_ValidationError(t *testing.T) {
	handler := handlers.AuthHandler(testLogger(), &fakeAuthService{token: "jwt-token"})

	// Невалидный email и короткий пароль.
	body := bytes.NewBufferString(`{"email":"not-an-email","password":"short"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth", body)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_InvalidCredentials(t *testing.T) {
	handler := handlers.AuthHandler(testLogger(), &fakeAuthService{err: errors.New("invalid credentials")})

	body := bytes.NewBufferString(`{"email":"test@example.com","password":"password123"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth", body)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type fakeOrderService struct {
	order  *models.Order
	orders []*models.Order
	err    error
}

var _ service.OrderService = (*fakeOrderService)(nil)

func (f *fakeOrderService) PlaceOrder(ctx context.Context, userID int64, in service.PlaceOrderInput) (*models.Order, error) {
	return f.order, f.err
}

func (f *fakeOrderService) ListOrders(ctx context.Context, userID int64) ([]*models.Order, error) {
	return f.orders, f.err
}

func (f *fakeOrderService) GetOrder(ctx context.Context, userID int64, role string, orderID int64) (*models.Order, error) {
	return f.order, f.err
}

func TestCreateOrderHandler_Success(t *testing.T) {
	svc := &fakeOrderService{order: &models.Order{
		ID:          1,
		OrderNumber: "ORD-TEST",
		Status:      models.OrderStatusPending,
		Total:       16.528,
	}}
	handler := handlers.CreateOrderHandler(testLogger(), svc)

	body := bytes.NewBufferString(`{
		"items": [{"product_id": 1, "quantity": 2}],
		"delivery_address": "12 Main Street",
		"delivery_date": "2030-01-15"
	}`)
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/orders", body), 1, models.RoleCustomer)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var order models.Order
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&order))
	assert.Equal(t, "ORD-TEST", order.OrderNumber)
}

func TestCreateOrderHandler_EmptyItems(t *testing.T) {
	handler := handlers.CreateOrderHandler(testLogger(), &fakeOrderService{})

	body := bytes.NewBufferString(`{"items": [], "delivery_address": "12 Main Street"}`)
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/orders", body), 1, models.RoleCustomer)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "Order without items should be rejected")
}

func TestCreateOrderHandler_Unauthorized(t *testing.T) {
	handler := handlers.CreateOrderHandler(testLogger(), &fakeOrderService{})

	body := bytes.NewBufferString(`{"items": [{"product_id": 1, "quantity": 1}], "delivery_address": "addr"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/orders", body)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "Request without userID in context is unauthorized")
}

func TestOrderHandler_Forbidden(t *testing.T) {
	svc := &fakeOrderService{err: service.ErrPermissionDenied}

	router := chi.NewRouter()
	router.Get("/api/orders/{id}", handlers.OrderHandler(testLogger(), svc))

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/orders/7", nil), 2, models.RoleCustomer)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code, "Foreign order should return 403")
}

func TestOrderHandler_NotFound(t *testing.T) {
	svc := &fakeOrderService{err: storage.ErrOrderNotFound}

	router := chi.NewRouter()
	router.Get("/api/orders/{id}", handlers.OrderHandler(testLogger(), svc))

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/orders/99", nil), 1, models.RoleCustomer)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type fakeBookingService struct {
	booking  *models.Booking
	bookings []*models.Booking
	err      error
}

var _ service.BookingService = (*fakeBookingService)(nil)

func (f *fakeBookingService) CreateBooking(ctx context.Context, userID int64, in service.CreateBookingInput) (*models.Booking, error) {
	return f.booking, f.err
}

func (f *fakeBookingService) ListBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	return f.bookings, f.err
}

func TestCreateBookingHandler_Success(t *testing.T) {
	svc := &fakeBookingService{booking: &models.Booking{
		ID:            1,
		BookingNumber: "BKG-TEST",
		Status:        models.BookingStatusPending,
		TotalPrice:    100.00,
	}}
	handler := handlers.CreateBookingHandler(testLogger(), svc)

	body := bytes.NewBufferString(`{
		"type": "event",
		"booking_date": "2030-06-01",
		"booking_time": "14:00",
		"number_of_people": 4
	}`)
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/bookings", body), 1, models.RoleCustomer)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var booking models.Booking
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&booking))
	assert.Equal(t, "BKG-TEST", booking.BookingNumber)
}

func TestCreateBookingHandler_InvalidType(t *testing.T) {
	handler := handlers.CreateBookingHandler(testLogger(), &fakeBookingService{})

	body := bytes.NewBufferString(`{
		"type": "picnic",
		"booking_date": "2030-06-01",
		"booking_time": "14:00",
		"number_of_people": 4
	}`)
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/bookings", body), 1, models.RoleCustomer)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "Unknown booking type should be rejected")
}

func TestCreateBookingHandler_TooManyPeople(t *testing.T) {
	handler := handlers.CreateBookingHandler(testLogger(), &fakeBookingService{})

	body := bytes.NewBufferString(`{
		"type": "tour",
		"booking_date": "2030-06-01",
		"booking_time": "14:00",
		"number_of_people": 51
	}`)
	req := withUser(httptest.NewRequest(http.MethodPost, "/api/bookings", body), 1, models.RoleCustomer)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeAdminService struct {
	approveErr error
	confirmErr error
	orders     []*models.Order
	bookings   []*models.Booking
	customers  []*models.Customer
}

var _ service.AdminService = (*fakeAdminService)(nil)

func (f *fakeAdminService) ApproveOrder(ctx context.Context, orderID int64) error { return f.approveErr }
func (f *fakeAdminService) RejectOrder(ctx context.Context, orderID int64) error  { return f.approveErr }
func (f *fakeAdminService) ConfirmBooking(ctx context.Context, bookingID int64) error {
	return f.confirmErr
}
func (f *fakeAdminService) ListOrders(ctx context.Context) ([]*models.Order, error) {
	return f.orders, nil
}
func (f *fakeAdminService) ListPendingOrders(ctx context.Context) ([]*models.Order, error) {
	return f.orders, nil
}
func (f *fakeAdminService) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	return f.bookings, nil
}
func (f *fakeAdminService) ListPendingBookings(ctx context.Context) ([]*models.Booking, error) {
	return f.bookings, nil
}
func (f *fakeAdminService) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	return f.customers, nil
}

func TestApproveOrderHandler_Success(t *testing.T) {
	router := chi.NewRouter()
	router.Post("/api/admin/orders/{id}/approve", handlers.ApproveOrderHandler(testLogger(), &fakeAdminService{}))

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/admin/orders/1/approve", nil), 1, models.RoleAdmin)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApproveOrderHandler_TerminalStatus(t *testing.T) {
	svc := &fakeAdminService{
		approveErr: fmt.Errorf("%w: order is cancelled", service.ErrInvalidTransition),
	}
	router := chi.NewRouter()
	router.Post("/api/admin/orders/{id}/approve", handlers.ApproveOrderHandler(testLogger(), svc))

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/admin/orders/1/approve", nil), 1, models.RoleAdmin)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code, "Transition from terminal status should return 409")
}

func TestConfirmBookingHandler_NotFound(t *testing.T) {
	svc := &fakeAdminService{confirmErr: storage.ErrBookingNotFound}
	router := chi.NewRouter()
	router.Post("/api/admin/bookings/{id}/confirm", handlers.ConfirmBookingHandler(testLogger(), svc))

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/admin/bookings/99/confirm", nil), 1, models.RoleAdmin)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCustomersHandler(t *testing.T) {
	svc := &fakeAdminService{customers: []*models.Customer{
		{User: models.User{ID: 1, Name: "Alice", Email: "alice@example.com"}, OrdersCount: 3, TotalSpent: 120.50},
	}}
	handler := handlers.CustomersHandler(testLogger(), svc)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/admin/customers", nil), 1, models.RoleAdmin)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string][]*models.Customer
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp["customers"], 1)
	assert.Equal(t, "Alice", resp["customers"][0].Name)
}

type fakeCatalogService struct {
	catalog *service.CatalogResponse
	product *service.ProductResponse
	err     error
}

var _ service.CatalogService = (*fakeCatalogService)(nil)

func (f *fakeCatalogService) ListProducts(ctx context.Context) (*service.CatalogResponse, error) {
	return f.catalog, f.err
}

func (f *fakeCatalogService) GetProduct(ctx context.Context, id int64) (*service.ProductResponse, error) {
	return f.product, f.err
}

func TestProductsHandler(t *testing.T) {
	svc := &fakeCatalogService{catalog: &service.CatalogResponse{
		Products:   []*models.Product{{ID: 1, Name: "Apples", Price: 3.99}},
		Categories: []*models.Category{{ID: 1, Name: "Fruits"}},
	}}
	handler := handlers.ProductsHandler(testLogger(), svc)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp service.CatalogResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Products, 1)
	assert.Len(t, resp.Categories, 1)
}

func TestProductHandler_NotFound(t *testing.T) {
	svc := &fakeCatalogService{err: storage.ErrProductNotFound}

	router := chi.NewRouter()
	router.Get("/api/products/{id}", handlers.ProductHandler(testLogger(), svc))

	req := httptest.NewRequest(http.MethodGet, "/api/products/42", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductHandler_InvalidID(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/api/products/{id}", handlers.ProductHandler(testLogger(), &fakeCatalogService{}))

	req := httptest.NewRequest(http.MethodGet, "/api/products/abc", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeHomeService struct {
	home *service.HomeResponse
	err  error
}

var _ service.HomeService = (*fakeHomeService)(nil)

func (f *fakeHomeService) GetHome(ctx context.Context, userID int64) (*service.HomeResponse, error) {
	return f.home, f.err
}

func TestHomeHandler(t *testing.T) {
	now := time.Now()
	svc := &fakeHomeService{home: &service.HomeResponse{
		RecentOrders: []*models.Order{{ID: 1, OrderNumber: "ORD-A", CreatedAt: now}},
		UpcomingBookings: []*models.Booking{
			{ID: 1, BookingNumber: "BKG-A", BookingDate: now.AddDate(0, 0, 2)},
		},
	}}
	handler := handlers.HomeHandler(testLogger(), svc)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/home", nil), 5, models.RoleCustomer)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp service.HomeResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.RecentOrders, 1)
	assert.Len(t, resp.UpcomingBookings, 1)
}
