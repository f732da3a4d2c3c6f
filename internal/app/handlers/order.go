package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/linemk/farm-shop/internal/domain/models"
	"github.com/linemk/farm-shop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/farm-shop/internal/service"
)

// OrderItemRequest — позиция заказа во входном JSON
type OrderItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required,min=1"`
}

// CreateOrderRequest представляет входной JSON оформления заказа.
type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryAddress string             `json:"delivery_address" validate:"required"`
	DeliveryDate    string             `json:"delivery_date" validate:"omitempty,datetime=2006-01-02"`
	Notes           string             `json:"notes" validate:"omitempty,max=500"`
}

// CreateOrderHandler обрабатывает запрос POST /api/orders.
func CreateOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateOrderHandler"
		logger := log.With(slog.String("op", op))

		var req CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "validation error", http.StatusBadRequest)
			return
		}

		// Извлекаем userID из контекста (установленный JWT middleware)
		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		in := service.PlaceOrderInput{
			DeliveryAddress: req.DeliveryAddress,
			Notes:           req.Notes,
		}
		for _, item := range req.Items {
			in.Items = append(in.Items, service.OrderItemInput{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}
		if req.DeliveryDate != "" {
			date, err := time.Parse("2006-01-02", req.DeliveryDate)
			if err != nil {
				http.Error(w, "invalid delivery_date", http.StatusBadRequest)
				return
			}
			in.DeliveryDate = &date
		}

		order, err := orderService.PlaceOrder(r.Context(), userID, in)
		if err != nil {
			logger.Error("failed to place order", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		writeJSON(w, logger, order)
	}
}

// OrdersHandler обрабатывает запрос GET /api/orders — заказы текущего пользователя.
func OrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrdersHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orders, err := orderService.ListOrders(r.Context(), userID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, map[string][]*models.Order{"orders": orders})
	}
}

// OrderHandler обрабатывает запрос GET /api/orders/{id}.
// Чужой заказ вернёт 403 для обычного пользователя.
func OrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.OrderHandler"
		logger := log.With(slog.String("op", op))

		id, err := idParam(r)
		if err != nil {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}
		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		role, _ := jwtmiddleware.RoleFromContext(r.Context())

		order, err := orderService.GetOrder(r.Context(), userID, role, id)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, order)
	}
}
