package service

import "errors"

// Ошибки бизнес-логики, по которым транспортный слой выбирает HTTP-статус
var (
	// ErrValidation — входные данные не прошли проверку; текст содержит указание на поле.
	ErrValidation = errors.New("validation error")
	// ErrPermissionDenied — попытка доступа к чужой записи.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidTransition — перевод заказа или бронирования из терминального статуса.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrPlaceOrder — любая ошибка внутри транзакции оформления заказа; наружу уходит без деталей.
	ErrPlaceOrder = errors.New("failed to place order")
)
