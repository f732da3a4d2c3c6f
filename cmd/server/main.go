package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/farm-shop/internal/app"
	"github.com/linemk/farm-shop/internal/app/handlers"
	"github.com/linemk/farm-shop/internal/config"
	"github.com/linemk/farm-shop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/farm-shop/internal/lib/logger"
	"github.com/linemk/farm-shop/internal/lib/logger/handlers/urllog"
	"github.com/linemk/farm-shop/internal/service"
	"github.com/linemk/farm-shop/internal/storage"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	categoryRepo := storage.NewCategoryRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	bookingRepo := storage.NewBookingRepository(application.DB)
	statsRepo := storage.NewStatsRepository(application.DB)

	authService := service.NewAuthService(application.Logger, userRepo, time.Duration(application.Config.JWT.TokenTTL)*time.Minute)
	catalogService := service.NewCatalogService(application.Logger, productRepo, categoryRepo)
	orderService := service.NewOrderService(application.Logger, application.DB, productRepo, orderRepo)
	bookingService := service.NewBookingService(application.Logger, bookingRepo)
	homeService := service.NewHomeService(application.Logger, orderRepo, bookingRepo)
	adminService := service.NewAdminService(application.Logger, orderRepo, bookingRepo, userRepo)
	dashboardService := service.NewDashboardService(application.Logger, statsRepo, orderRepo, bookingRepo)
	revenueService := service.NewRevenueService(application.Logger, statsRepo)

	// эндпоинт для аутентификации
	router.Post("/api/auth", handlers.AuthHandler(application.Logger, authService))

	// витрина доступна без токена
	router.Get("/api/products", handlers.ProductsHandler(application.Logger, catalogService))
	router.Get("/api/products/{id}", handlers.ProductHandler(application.Logger, catalogService))

	router.Group(func(r chi.Router) {
		jwtMW := jwtmiddleware.NewJWTMiddleware()
		r.Use(jwtMW)

		// личный кабинет покупателя
		r.Get("/api/home", handlers.HomeHandler(application.Logger, homeService))

		// заказы текущего пользователя
		r.Get("/api/orders", handlers.OrdersHandler(application.Logger, orderService))
		r.Post("/api/orders", handlers.CreateOrderHandler(application.Logger, orderService))
		r.Get("/api/orders/{id}", handlers.OrderHandler(application.Logger, orderService))

		// бронирования текущего пользователя
		r.Get("/api/bookings", handlers.BookingsHandler(application.Logger, bookingService))
		r.Post("/api/bookings", handlers.CreateBookingHandler(application.Logger, bookingService))

		// административная панель, только для роли admin
		r.Group(func(ar chi.Router) {
			ar.Use(jwtmiddleware.RequireAdmin)

			ar.Get("/api/admin/dashboard", handlers.DashboardHandler(application.Logger, dashboardService))
			ar.Get("/api/admin/revenue", handlers.RevenueHandler(application.Logger, revenueService))

			ar.Get("/api/admin/orders", handlers.AdminOrdersHandler(application.Logger, adminService))
			ar.Get("/api/admin/orders/pending", handlers.AdminPendingOrdersHandler(application.Logger, adminService))
			ar.Post("/api/admin/orders/{id}/approve", handlers.ApproveOrderHandler(application.Logger, adminService))
			ar.Post("/api/admin/orders/{id}/reject", handlers.RejectOrderHandler(application.Logger, adminService))

			ar.Get("/api/admin/bookings", handlers.AdminBookingsHandler(application.Logger, adminService))
			ar.Get("/api/admin/bookings/pending", handlers.AdminPendingBookingsHandler(application.Logger, adminService))
			ar.Post("/api/admin/bookings/{id}/confirm", handlers.ConfirmBookingHandler(application.Logger, adminService))

			ar.Get("/api/admin/customers", handlers.CustomersHandler(application.Logger, adminService))
		})
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
