package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Номера заказов и бронирований: префикс + случайный UUID в верхнем регистре.
// Уникальность обеспечивается энтропией идентификатора, а не последовательностью.

func newOrderNumber() string {
	return "ORD-" + randomToken()
}

func newBookingNumber() string {
	return "BKG-" + randomToken()
}

func randomToken() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// afterToday сообщает, что дата строго позже текущего дня (сравнение по календарной дате).
func afterToday(t, now time.Time) bool {
	ty, tm, td := t.Date()
	ny, nm, nd := now.Date()
	date := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return date.After(today)
}
