package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/farm-shop/internal/domain/models"
	"github.com/linemk/farm-shop/internal/storage"
)

// CreateBookingInput — данные заявки на бронирование
type CreateBookingInput struct {
	Type            string
	BookingDate     time.Time
	BookingTime     string
	NumberOfPeople  int
	SpecialRequests string
}

// BookingService определяет операции покупателя над бронированиями.
type BookingService interface {
	// CreateBooking создаёт заявку в статусе pending со стоимостью из прейскуранта.
	CreateBooking(ctx context.Context, userID int64, in CreateBookingInput) (*models.Booking, error)
	// ListBookings возвращает бронирования пользователя, от новых к старым.
	ListBookings(ctx context.Context, userID int64) ([]*models.Booking, error)
}

type bookingService struct {
	log         *slog.Logger
	bookingRepo storage.BookingStorage
}

func NewBookingService(log *slog.Logger, bookingRepo storage.BookingStorage) BookingService {
	return &bookingService{
		log:         log,
		bookingRepo: bookingRepo,
	}
}

// CreateBooking проверяет заявку и вставляет одну строку; многошаговой атомарности здесь не требуется.
func (s *bookingService) CreateBooking(ctx context.Context, userID int64, in CreateBookingInput) (*models.Booking, error) {
	const op = "service.BookingService.CreateBooking"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID), slog.String("type", in.Type))

	if !afterToday(in.BookingDate, time.Now()) {
		return nil, fmt.Errorf("%w: booking_date must be after today", ErrValidation)
	}
	if in.BookingTime == "" {
		return nil, fmt.Errorf("%w: booking_time is required", ErrValidation)
	}
	if len(in.SpecialRequests) > 500 {
		return nil, fmt.Errorf("%w: special_requests must be at most 500 characters", ErrValidation)
	}

	totalPrice, err := CalculateBookingTotal(in.Type, in.NumberOfPeople)
	if err != nil {
		logger.Warn("invalid booking input", slog.Any("error", err))
		return nil, err
	}

	booking := &models.Booking{
		UserID:          userID,
		BookingNumber:   newBookingNumber(),
		Type:            in.Type,
		BookingDate:     in.BookingDate,
		BookingTime:     in.BookingTime,
		NumberOfPeople:  in.NumberOfPeople,
		Status:          models.BookingStatusPending,
		SpecialRequests: in.SpecialRequests,
		TotalPrice:      totalPrice,
	}

	id, err := s.bookingRepo.CreateBooking(ctx, booking)
	if err != nil {
		logger.Error("failed to create booking", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create booking: %w", op, err)
	}
	booking.ID = id

	logger.Info("booking created", slog.String("bookingNumber", booking.BookingNumber))
	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	const op = "service.BookingService.ListBookings"

	bookings, err := s.bookingRepo.ListBookingsByUserID(ctx, userID)
	if err != nil {
		s.log.Error("failed to list bookings", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return bookings, nil
}
