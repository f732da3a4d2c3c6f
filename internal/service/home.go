package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/farm-shop/internal/domain/models"
	"github.com/linemk/farm-shop/internal/storage"
)

// Лимиты личного кабинета покупателя
const (
	homeRecentOrdersLimit     = 3
	homeUpcomingBookingsLimit = 3
)

// HomeResponse — личный кабинет: последние заказы и ближайшие бронирования
type HomeResponse struct {
	RecentOrders     []*models.Order   `json:"recent_orders"`
	UpcomingBookings []*models.Booking `json:"upcoming_bookings"`
}

// HomeService собирает личный кабинет покупателя.
type HomeService interface {
	GetHome(ctx context.Context, userID int64) (*HomeResponse, error)
}

type homeService struct {
	log         *slog.Logger
	orderRepo   storage.OrderStorage
	bookingRepo storage.BookingStorage
}

func NewHomeService(log *slog.Logger, orderRepo storage.OrderStorage, bookingRepo storage.BookingStorage) HomeService {
	return &homeService{
		log:         log,
		orderRepo:   orderRepo,
		bookingRepo: bookingRepo,
	}
}

func (s *homeService) GetHome(ctx context.Context, userID int64) (*HomeResponse, error) {
	const op = "service.HomeService.GetHome"

	orders, err := s.orderRepo.ListOrdersByUserID(ctx, userID, homeRecentOrdersLimit)
	if err != nil {
		s.log.Error("failed to load recent orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, order := range orders {
		items, err := s.orderRepo.GetOrderItems(ctx, order.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to load order items: %w", op, err)
		}
		order.Items = items
	}

	// Ближайшие неотменённые бронирования с сегодняшнего дня
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	bookings, err := s.bookingRepo.ListUpcomingByUser(ctx, userID, today, homeUpcomingBookingsLimit)
	if err != nil {
		s.log.Error("failed to load upcoming bookings", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &HomeResponse{RecentOrders: orders, UpcomingBookings: bookings}, nil
}
