package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/planbar-app/planbar/internal/model"
	"github.com/planbar-app/planbar/libs/db"
)

type BookingRepository struct {
	pool *db.Pool
}

func NewBookingRepository(pool *db.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *BookingRepository) Create(ctx context.Context, tx pgx.Tx, b *model.Booking) (string, error) {
	id := uuid.NewString()
	_, err := tx.Exec(ctx, `
		INSERT INTO bookings (id, client_id, project_id, start_time, end_time, title, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'booked')
	`, id, b.ClientID, nullable(b.ProjectID), b.Start, b.End, b.Title)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *BookingRepository) Cancel(ctx context.Context, tx pgx.Tx, bookingID string) (time.Time, error) {
	var cancelledAt time.Time
	err := tx.QueryRow(ctx, `
		UPDATE bookings
		SET status = 'cancelled',
			cancelled_at = now()
		WHERE id = $1 AND status = 'booked'
		RETURNING cancelled_at
	`, bookingID).Scan(&cancelledAt)
	return cancelledAt, err
}

// ListBetween returns non-cancelled bookings starting in [start, end),
// ordered by start time.
func (r *BookingRepository) ListBetween(ctx context.Context, start, end time.Time) ([]model.Booking, error) {
	return r.list(ctx, `
		SELECT id, client_id, COALESCE(project_id::text, ''), start_time, end_time, COALESCE(title, ''), status, created_at
		FROM bookings
		WHERE status = 'booked'
			AND start_time >= $1
			AND start_time < $2
		ORDER BY start_time ASC
	`, start, end)
}

// ListByProject returns every non-cancelled booking ever made on the
// project. Lifetime history feeds the tiered rate resolution, so there is
// deliberately no time window here.
func (r *BookingRepository) ListByProject(ctx context.Context, projectID string) ([]model.Booking, error) {
	return r.list(ctx, `
		SELECT id, client_id, COALESCE(project_id::text, ''), start_time, end_time, COALESCE(title, ''), status, created_at
		FROM bookings
		WHERE status = 'booked'
			AND project_id = $1
		ORDER BY start_time ASC
	`, projectID)
}

// ListAll returns the full non-cancelled booking history, used by the
// monthly rollup (rates depend on lifetime hours across all months).
func (r *BookingRepository) ListAll(ctx context.Context) ([]model.Booking, error) {
	return r.list(ctx, `
		SELECT id, client_id, COALESCE(project_id::text, ''), start_time, end_time, COALESCE(title, ''), status, created_at
		FROM bookings
		WHERE status = 'booked'
		ORDER BY start_time ASC
	`)
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]model.Booking, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(
			&b.ID,
			&b.ClientID,
			&b.ProjectID,
			&b.Start,
			&b.End,
			&b.Title,
			&b.Status,
			&b.CreatedAt,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return bookings, nil
}

func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "23P01" || pgErr.Code == "23505")
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
