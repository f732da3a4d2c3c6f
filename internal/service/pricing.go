package service

import (
	"fmt"

	"github.com/linemk/farm-shop/internal/domain/models"
)

// Константы ценообразования
const (
	TaxRate       = 0.10 // налог — 10% от суммы позиций
	DeliveryFee   = 5.00 // фиксированная стоимость доставки
	RevenueTarget = 50000.00

	MinBookingPeople = 1
	MaxBookingPeople = 50
)

// Цена за человека по типу бронирования
var bookingPrices = map[string]float64{
	models.BookingTypeTour:     10.00,
	models.BookingTypeEvent:    25.00,
	models.BookingTypeWorkshop: 50.00,
	models.BookingTypePrivate:  100.00,
}

// ResolvedItem — позиция заказа после сопоставления с текущей ценой товара
type ResolvedItem struct {
	ProductID int64
	UnitPrice float64
	Quantity  int
}

// OrderTotals — рассчитанные суммы заказа
type OrderTotals struct {
	Subtotal    float64
	Tax         float64
	DeliveryFee float64
	Total       float64
}

// CalculateOrderTotals считает суммы заказа по позициям: subtotal как сумма
// unit_price * quantity, налог 10% и фиксированная доставка. Чистая функция.
func CalculateOrderTotals(items []ResolvedItem) (OrderTotals, error) {
	if len(items) == 0 {
		return OrderTotals{}, fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}
	var subtotal float64
	for _, item := range items {
		if item.Quantity < 1 {
			return OrderTotals{}, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
		}
		subtotal += item.UnitPrice * float64(item.Quantity)
	}
	tax := subtotal * TaxRate
	return OrderTotals{
		Subtotal:    subtotal,
		Tax:         tax,
		DeliveryFee: DeliveryFee,
		Total:       subtotal + tax + DeliveryFee,
	}, nil
}

// BookingPricePerPerson возвращает цену за человека для типа бронирования.
func BookingPricePerPerson(bookingType string) (float64, error) {
	price, ok := bookingPrices[bookingType]
	if !ok {
		return 0, fmt.Errorf("%w: unknown booking type %q", ErrValidation, bookingType)
	}
	return price, nil
}

// CalculateBookingTotal считает стоимость бронирования: цена за человека * число участников.
func CalculateBookingTotal(bookingType string, people int) (float64, error) {
	price, err := BookingPricePerPerson(bookingType)
	if err != nil {
		return 0, err
	}
	if people < MinBookingPeople || people > MaxBookingPeople {
		return 0, fmt.Errorf("%w: number_of_people must be between %d and %d",
			ErrValidation, MinBookingPeople, MaxBookingPeople)
	}
	return price * float64(people), nil
}
