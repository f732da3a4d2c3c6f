package models

import "time"

// Типы бронирований фермерских мероприятий
const (
	BookingTypeTour     = "tour"
	BookingTypeEvent    = "event"
	BookingTypeWorkshop = "workshop"
	BookingTypePrivate  = "private"
)

// Статусы бронирования
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

// Booking представляет бронирование экскурсии или мероприятия на ферме
type Booking struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	UserName        string     `json:"user_name,omitempty"` // заполняется через JOIN с таблицей users
	BookingNumber   string     `json:"booking_number"`
	Type            string     `json:"type"`
	BookingDate     time.Time  `json:"booking_date"`
	BookingTime     string     `json:"booking_time"` // "HH:MM"
	NumberOfPeople  int        `json:"number_of_people"`
	Status          string     `json:"status"`
	SpecialRequests string     `json:"special_requests,omitempty"`
	TotalPrice      float64    `json:"total_price"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}
