package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/farm-shop/internal/domain/models"
	"github.com/linemk/farm-shop/internal/service"
)

// DashboardHandler обрабатывает запрос GET /api/admin/dashboard.
func DashboardHandler(log *slog.Logger, dashboardService service.DashboardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DashboardHandler"
		logger := log.With(slog.String("op", op))

		dashboard, err := dashboardService.GetDashboard(r.Context())
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, dashboard)
	}
}

// RevenueHandler обрабатывает запрос GET /api/admin/revenue.
func RevenueHandler(log *slog.Logger, revenueService service.RevenueService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RevenueHandler"
		logger := log.With(slog.String("op", op))

		revenue, err := revenueService.GetRevenue(r.Context())
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, revenue)
	}
}

// AdminOrdersHandler обрабатывает запрос GET /api/admin/orders — все заказы магазина.
func AdminOrdersHandler(log *slog.Logger, adminService service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminOrdersHandler"
		logger := log.With(slog.String("op", op))

		orders, err := adminService.ListOrders(r.Context())
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, map[string][]*models.Order{"orders": orders})
	}
}

// AdminPendingOrdersHandler обрабатывает запрос GET /api/admin/orders/pending.
func AdminPendingOrdersHandler(log *slog.Logger, adminService service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminPendingOrdersHandler"
		logger := log.With(slog.String("op", op))

		orders, err := adminService.ListPendingOrders(r.Context())
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, map[string][]*models.Order{"orders": orders})
	}
}

// ApproveOrderHandler обрабатывает запрос POST /api/admin/orders/{id}/approve.
func ApproveOrderHandler(log *slog.Logger, adminService service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ApproveOrderHandler"
		logger := log.With(slog.String("op", op))

		id, err := idParam(r)
		if err != nil {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}

		if err := adminService.ApproveOrder(r.Context(), id); err != nil {
			logger.Error("failed to approve order", slog.Int64("orderID", id), slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, map[string]string{"status": "approved"})
	}
}

// RejectOrderHandler обрабатывает запрос POST /api/admin/orders/{id}/reject.
func RejectOrderHandler(log *slog.Logger, adminService service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RejectOrderHandler"
		logger := log.With(slog.String("op", op))

		id, err := idParam(r)
		if err != nil {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}

		if err := adminService.RejectOrder(r.Context(), id); err != nil {
			logger.Error("failed to reject order", slog.Int64("orderID", id), slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, map[string]string{"status": "cancelled"})
	}
}

// AdminBookingsHandler обрабатывает запрос GET /api/admin/bookings — все бронирования.
func AdminBookingsHandler(log *slog.Logger, adminService service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminBookingsHandler"
		logger := log.With(slog.String("op", op))

		bookings, err := adminService.ListBookings(r.Context())
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, map[string][]*models.Booking{"bookings": bookings})
	}
}

// AdminPendingBookingsHandler обрабатывает запрос GET /api/admin/bookings/pending.
func AdminPendingBookingsHandler(log *slog.Logger, adminService service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminPendingBookingsHandler"
		logger := log.With(slog.String("op", op))

		bookings, err := adminService.ListPendingBookings(r.Context())
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, map[string][]*models.Booking{"bookings": bookings})
	}
}

// ConfirmBookingHandler обрабатывает запрос POST /api/admin/bookings/{id}/confirm.
func ConfirmBookingHandler(log *slog.Logger, adminService service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ConfirmBookingHandler"
		logger := log.With(slog.String("op", op))

		id, err := idParam(r)
		if err != nil {
			http.Error(w, "invalid booking id", http.StatusBadRequest)
			return
		}

		if err := adminService.ConfirmBooking(r.Context(), id); err != nil {
			logger.Error("failed to confirm booking", slog.Int64("bookingID", id), slog.Any("error", err))
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, map[string]string{"status": "confirmed"})
	}
}

// CustomersHandler обрабатывает запрос GET /api/admin/customers.
func CustomersHandler(log *slog.Logger, adminService service.AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CustomersHandler"
		logger := log.With(slog.String("op", op))

		customers, err := adminService.ListCustomers(r.Context())
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, logger, map[string][]*models.Customer{"customers": customers})
	}
}
