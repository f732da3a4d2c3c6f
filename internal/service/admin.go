package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/farm-shop/internal/domain/models"
	"github.com/linemk/farm-shop/internal/storage"
)

// AdminService определяет действия администратора над заказами и бронированиями.
type AdminService interface {
	// ApproveOrder переводит заказ в approved и ставит отметку времени одобрения.
	// Повторное одобрение допустимо и просто обновляет отметку.
	ApproveOrder(ctx context.Context, orderID int64) error
	// RejectOrder переводит заказ в cancelled; отметка времени не ставится.
	RejectOrder(ctx context.Context, orderID int64) error
	// ConfirmBooking переводит бронирование в confirmed и ставит отметку времени подтверждения.
	ConfirmBooking(ctx context.Context, bookingID int64) error
	ListOrders(ctx context.Context) ([]*models.Order, error)
	ListPendingOrders(ctx context.Context) ([]*models.Order, error)
	ListBookings(ctx context.Context) ([]*models.Booking, error)
	ListPendingBookings(ctx context.Context) ([]*models.Booking, error)
	ListCustomers(ctx context.Context) ([]*models.Customer, error)
}

type adminService struct {
	log         *slog.Logger
	orderRepo   storage.OrderStorage
	bookingRepo storage.BookingStorage
	userRepo    storage.UserStorage
}

func NewAdminService(log *slog.Logger, orderRepo storage.OrderStorage, bookingRepo storage.BookingStorage, userRepo storage.UserStorage) AdminService {
	return &adminService{
		log:         log,
		orderRepo:   orderRepo,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
	}
}

// Терминальные статусы не переводятся ни в какой другой
func orderIsTerminal(status string) bool {
	return status == models.OrderStatusCompleted || status == models.OrderStatusCancelled
}

func bookingIsTerminal(status string) bool {
	return status == models.BookingStatusCompleted || status == models.BookingStatusCancelled
}

func (s *adminService) ApproveOrder(ctx context.Context, orderID int64) error {
	const op = "service.AdminService.ApproveOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", orderID))

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return err
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if orderIsTerminal(order.Status) {
		logger.Warn("order is in terminal status", slog.String("status", order.Status))
		return fmt.Errorf("%w: order is %s", ErrInvalidTransition, order.Status)
	}

	now := time.Now()
	if err := s.orderRepo.UpdateOrderStatus(ctx, orderID, models.OrderStatusApproved, &now); err != nil {
		logger.Error("failed to approve order", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("order approved")
	return nil
}

func (s *adminService) RejectOrder(ctx context.Context, orderID int64) error {
	const op = "service.AdminService.RejectOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", orderID))

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return err
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if orderIsTerminal(order.Status) {
		logger.Warn("order is in terminal status", slog.String("status", order.Status))
		return fmt.Errorf("%w: order is %s", ErrInvalidTransition, order.Status)
	}

	if err := s.orderRepo.UpdateOrderStatus(ctx, orderID, models.OrderStatusCancelled, nil); err != nil {
		logger.Error("failed to reject order", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("order rejected")
	return nil
}

func (s *adminService) ConfirmBooking(ctx context.Context, bookingID int64) error {
	const op = "service.AdminService.ConfirmBooking"
	logger := s.log.With(slog.String("op", op), slog.Int64("bookingID", bookingID))

	booking, err := s.bookingRepo.GetBookingByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, storage.ErrBookingNotFound) {
			return err
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if bookingIsTerminal(booking.Status) {
		logger.Warn("booking is in terminal status", slog.String("status", booking.Status))
		return fmt.Errorf("%w: booking is %s", ErrInvalidTransition, booking.Status)
	}

	now := time.Now()
	if err := s.bookingRepo.UpdateBookingStatus(ctx, bookingID, models.BookingStatusConfirmed, &now); err != nil {
		logger.Error("failed to confirm booking", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("booking confirmed")
	return nil
}

func (s *adminService) ListOrders(ctx context.Context) ([]*models.Order, error) {
	const op = "service.AdminService.ListOrders"
	orders, err := s.orderRepo.ListOrders(ctx, "", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

func (s *adminService) ListPendingOrders(ctx context.Context) ([]*models.Order, error) {
	const op = "service.AdminService.ListPendingOrders"
	orders, err := s.orderRepo.ListOrders(ctx, models.OrderStatusPending, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

func (s *adminService) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	const op = "service.AdminService.ListBookings"
	bookings, err := s.bookingRepo.ListBookings(ctx, "", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return bookings, nil
}

func (s *adminService) ListPendingBookings(ctx context.Context) ([]*models.Booking, error) {
	const op = "service.AdminService.ListPendingBookings"
	bookings, err := s.bookingRepo.ListBookings(ctx, models.BookingStatusPending, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return bookings, nil
}

func (s *adminService) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	const op = "service.AdminService.ListCustomers"
	customers, err := s.userRepo.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return customers, nil
}
