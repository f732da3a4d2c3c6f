package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/linemk/farm-shop/internal/domain/models"
)

var ErrBookingNotFound = errors.New("booking not found")

// BookingStorage описывает методы для работы с бронированиями.
type BookingStorage interface {
	// CreateBooking вставляет бронирование и возвращает его id. Одна строка — транзакция не нужна.
	CreateBooking(ctx context.Context, b *models.Booking) (int64, error)
	GetBookingByID(ctx context.Context, id int64) (*models.Booking, error)
	// ListBookingsByUserID возвращает бронирования пользователя, от новых к старым.
	ListBookingsByUserID(ctx context.Context, userID int64) ([]*models.Booking, error)
	// ListBookings возвращает бронирования с именем пользователя. status == "" — все, limit <= 0 — без ограничения.
	ListBookings(ctx context.Context, status string, limit int) ([]*models.Booking, error)
	// ListUpcomingBookings возвращает бронирования с датой в интервале [from, to], по возрастанию даты.
	ListUpcomingBookings(ctx context.Context, from, to time.Time, limit int) ([]*models.Booking, error)
	// ListUpcomingByUser возвращает неотменённые бронирования пользователя с датой от from, по возрастанию даты.
	ListUpcomingByUser(ctx context.Context, userID int64, from time.Time, limit int) ([]*models.Booking, error)
	// UpdateBookingStatus переводит бронирование в новый статус; confirmedAt задаётся при подтверждении.
	UpdateBookingStatus(ctx context.Context, id int64, status string, confirmedAt *time.Time) error
}

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) BookingStorage {
	return &bookingRepository{db: db}
}

const bookingColumns = `b.id, b.user_id, u.name, b.booking_number, b.type, b.booking_date,
		b.booking_time, b.number_of_people, b.status, COALESCE(b.special_requests, ''),
		b.total_price, b.confirmed_at, b.created_at`

func (r *bookingRepository) CreateBooking(ctx context.Context, b *models.Booking) (int64, error) {
	query := `INSERT INTO bookings
		(user_id, booking_number, type, booking_date, booking_time, number_of_people,
		 status, special_requests, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		b.UserID, b.BookingNumber, b.Type, b.BookingDate, b.BookingTime,
		b.NumberOfPeople, b.Status, nullString(b.SpecialRequests), b.TotalPrice,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create booking: %w", err)
	}
	return id, nil
}

func (r *bookingRepository) GetBookingByID(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN users u ON b.user_id = u.id
		WHERE b.id = $1`
	b := &models.Booking{}
	row := r.db.QueryRowContext(ctx, query, id)
	if err := scanBookingRow(row, b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) ListBookingsByUserID(ctx context.Context, userID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN users u ON b.user_id = u.id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()
	return scanBookings(rows)
}

func (r *bookingRepository) ListBookings(ctx context.Context, status string, limit int) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN users u ON b.user_id = u.id`
	var args []interface{}
	if status != "" {
		query += " WHERE b.status = $1"
		args = append(args, status)
	}
	query += " ORDER BY b.created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()
	return scanBookings(rows)
}

func (r *bookingRepository) ListUpcomingBookings(ctx context.Context, from, to time.Time, limit int) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN users u ON b.user_id = u.id
		WHERE b.booking_date >= $1 AND b.booking_date <= $2
		ORDER BY b.booking_date ASC
		LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming bookings: %w", err)
	}
	defer rows.Close()
	return scanBookings(rows)
}

func (r *bookingRepository) ListUpcomingByUser(ctx context.Context, userID int64, from time.Time, limit int) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN users u ON b.user_id = u.id
		WHERE b.user_id = $1 AND b.status <> 'cancelled' AND b.booking_date >= $2
		ORDER BY b.booking_date ASC
		LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, userID, from, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming bookings: %w", err)
	}
	defer rows.Close()
	return scanBookings(rows)
}

func (r *bookingRepository) UpdateBookingStatus(ctx context.Context, id int64, status string, confirmedAt *time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE bookings SET status = $1, confirmed_at = COALESCE($2, confirmed_at) WHERE id = $3",
		status, confirmedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func scanBookingRow(row rowScanner, b *models.Booking) error {
	return row.Scan(&b.ID, &b.UserID, &b.UserName, &b.BookingNumber, &b.Type, &b.BookingDate,
		&b.BookingTime, &b.NumberOfPeople, &b.Status, &b.SpecialRequests,
		&b.TotalPrice, &b.ConfirmedAt, &b.CreatedAt)
}

func scanBookings(rows *sql.Rows) ([]*models.Booking, error) {
	var bookings []*models.Booking
	for rows.Next() {
		b := &models.Booking{}
		if err := scanBookingRow(rows, b); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}
