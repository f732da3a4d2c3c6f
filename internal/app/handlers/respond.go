package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/linemk/farm-shop/internal/service"
	"github.com/linemk/farm-shop/internal/storage"
)

var validate = validator.New()

// writeJSON сериализует ответ; ошибка кодирования — это уже наша ошибка, отдаём 500.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// writeServiceError переводит ошибку бизнес-логики в HTTP-статус.
// Отсутствующие записи наружу уходят одинаково, без деталей.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrPermissionDenied):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, service.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, storage.ErrOrderNotFound),
		errors.Is(err, storage.ErrBookingNotFound),
		errors.Is(err, storage.ErrProductNotFound),
		errors.Is(err, storage.ErrUserNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, service.ErrPlaceOrder):
		http.Error(w, "failed to place order", http.StatusInternalServerError)
	default:
		logger.Error("internal error", slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// idParam извлекает числовой параметр {id} из URL.
func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
