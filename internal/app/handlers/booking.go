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

// CreateBookingRequest представляет входной JSON заявки на бронирование.
type CreateBookingRequest struct {
	Type            string `json:"type" validate:"required,oneof=tour event workshop private"`
	BookingDate     string `json:"booking_date" validate:"required,datetime=2006-01-02"`
	BookingTime     string `json:"booking_time" validate:"required,datetime=15:04"`
	NumberOfPeople  int    `json:"number_of_people" validate:"required,min=1,max=50"`
	SpecialRequests string `json:"special_requests" validate:"omitempty,max=500"`
}

// CreateBookingHandler обрабатывает запрос POST /api/bookings.
func CreateBookingHandler(log *slog.Logger, bookingService service.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateBookingHandler"
		logger := log.With(slog.String("op", op))

		var req CreateBookingRequest
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

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		date, err := time.Parse("2006-01-02", req.BookingDate)
		if err != nil {
			http.Error(w, "invalid booking_date", http.StatusBadRequest)
			return
		}

		booking, err := bookingService.CreateBooking(r.Context(), userID, service.CreateBookingInput{
			Type:            req.Type,
			BookingDate:     date,
			BookingTime:     req.BookingTime,
			NumberOfPeople:  req.NumberOfPeople,
			SpecialRequests: req.SpecialRequests,
		})
		if err != nil {
			logger.Error("failed to create booking", slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		writeJSON(w, logger, booking)
	}
}

// BookingsHandler обрабатывает запрос GET /api/bookings — бронирования текущего пользователя.
func BookingsHandler(log *slog.Logger, bookingService service.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.BookingsHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		bookings, err := bookingService.ListBookings(r.Context(), userID)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, map[string][]*models.Booking{"bookings": bookings})
	}
}
