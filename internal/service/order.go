package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/farm-shop/internal/domain/models"
	"github.com/linemk/farm-shop/internal/storage"
)

// OrderItemInput — позиция заказа на входе
type OrderItemInput struct {
	ProductID int64
	Quantity  int
}

// PlaceOrderInput — данные оформления заказа
type PlaceOrderInput struct {
	Items           []OrderItemInput
	DeliveryAddress string
	DeliveryDate    *time.Time
	Notes           string
}

// OrderService определяет операции покупателя над заказами.
type OrderService interface {
	// PlaceOrder атомарно создаёт заказ с позициями; при любой ошибке не остаётся ничего.
	PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (*models.Order, error)
	// ListOrders возвращает заказы пользователя с позициями, от новых к старым.
	ListOrders(ctx context.Context, userID int64) ([]*models.Order, error)
	// GetOrder возвращает заказ с позициями; чужой заказ доступен только администратору.
	GetOrder(ctx context.Context, userID int64, role string, orderID int64) (*models.Order, error)
}

type orderService struct {
	log         *slog.Logger
	db          *sql.DB
	productRepo storage.ProductStorage
	orderRepo   storage.OrderStorage
}

func NewOrderService(log *slog.Logger, db *sql.DB, productRepo storage.ProductStorage, orderRepo storage.OrderStorage) OrderService {
	return &orderService{
		log:         log,
		db:          db,
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

// PlaceOrder оформляет заказ: позиции сопоставляются с текущими ценами внутри транзакции,
// суммы считаются калькулятором, заказ и позиции вставляются одним атомарным блоком.
// Если что-то идет не так, транзакция откатывается и наружу уходит общая ошибка ErrPlaceOrder.
// Остатки на складе справочные и при оформлении не списываются.
func (s *orderService) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (*models.Order, error) {
	const op = "service.OrderService.PlaceOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))

	if err := validatePlaceOrder(in); err != nil {
		logger.Warn("invalid order input", slog.Any("error", err))
		return nil, err
	}

	logger.Info("starting order transaction", slog.Int("items", len(in.Items)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, ErrPlaceOrder)
	}

	// Сопоставляем позиции с текущими ценами товаров через транзакцию
	resolved := make([]ResolvedItem, 0, len(in.Items))
	for _, item := range in.Items {
		product, err := s.productRepo.GetProductByIDTx(ctx, tx, item.ProductID)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to resolve product", slog.Int64("productID", item.ProductID), slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, ErrPlaceOrder)
		}
		resolved = append(resolved, ResolvedItem{
			ProductID: product.ID,
			UnitPrice: product.Price,
			Quantity:  item.Quantity,
		})
	}

	totals, err := CalculateOrderTotals(resolved)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		return nil, err
	}

	order := &models.Order{
		UserID:          userID,
		OrderNumber:     newOrderNumber(),
		Status:          models.OrderStatusPending,
		Subtotal:        totals.Subtotal,
		Tax:             totals.Tax,
		DeliveryFee:     totals.DeliveryFee,
		Total:           totals.Total,
		DeliveryAddress: in.DeliveryAddress,
		DeliveryDate:    in.DeliveryDate,
		Notes:           in.Notes,
	}

	orderID, err := s.orderRepo.CreateOrder(ctx, tx, order)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, ErrPlaceOrder)
	}
	order.ID = orderID

	// Позиции заказа с ценой, зафиксированной на момент покупки
	for _, item := range resolved {
		orderItem := &models.OrderItem{
			OrderID:   orderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.UnitPrice * float64(item.Quantity),
		}
		if err := s.orderRepo.CreateOrderItem(ctx, tx, orderItem); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to create order item", slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, ErrPlaceOrder)
		}
		order.Items = append(order.Items, orderItem)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, ErrPlaceOrder)
	}

	logger.Info("order placed successfully", slog.String("orderNumber", order.OrderNumber))
	return order, nil
}

func validatePlaceOrder(in PlaceOrderInput) error {
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
		}
	}
	if in.DeliveryAddress == "" {
		return fmt.Errorf("%w: delivery_address is required", ErrValidation)
	}
	if in.DeliveryDate != nil && !afterToday(*in.DeliveryDate, time.Now()) {
		return fmt.Errorf("%w: delivery_date must be after today", ErrValidation)
	}
	if len(in.Notes) > 500 {
		return fmt.Errorf("%w: notes must be at most 500 characters", ErrValidation)
	}
	return nil
}

func (s *orderService) ListOrders(ctx context.Context, userID int64) ([]*models.Order, error) {
	const op = "service.OrderService.ListOrders"

	orders, err := s.orderRepo.ListOrdersByUserID(ctx, userID, 0)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, order := range orders {
		items, err := s.orderRepo.GetOrderItems(ctx, order.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to load order items: %w", op, err)
		}
		order.Items = items
	}
	return orders, nil
}

func (s *orderService) GetOrder(ctx context.Context, userID int64, role string, orderID int64) (*models.Order, error) {
	const op = "service.OrderService.GetOrder"

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Чужой заказ нельзя ни читать, ни менять; администратору доступны все
	if order.UserID != userID && role != models.RoleAdmin {
		s.log.Warn("access to foreign order denied",
			slog.String("op", op), slog.Int64("userID", userID), slog.Int64("orderID", orderID))
		return nil, ErrPermissionDenied
	}

	items, err := s.orderRepo.GetOrderItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to load order items: %w", op, err)
	}
	order.Items = items
	return order, nil
}
