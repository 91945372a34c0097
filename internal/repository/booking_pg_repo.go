package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"appointments/internal/db"
	apperrors "appointments/internal/errors"

	"github.com/lib/pq"
)

// undefinedTable is the Postgres SQLSTATE for a missing relation.
const undefinedTable = "42P01"

// PostgresBookingRepository stores bookings in a single table. The serial id
// defines insertion order.
type PostgresBookingRepository struct {
	DB *sql.DB
}

func NewPostgresBookingRepository(database *sql.DB) *PostgresBookingRepository {
	return &PostgresBookingRepository{DB: database}
}

// OpenPostgres opens and pings a database handle using the lib/pq driver.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	database := sql.OpenDB(connector)
	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("%w: connecting to postgres: %w", apperrors.ErrStoreUnavailable, err)
	}
	return database, nil
}

func (r *PostgresBookingRepository) Initialize(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS bookings (
		id         SERIAL PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL,
		date       TEXT NOT NULL,
		time       TEXT NOT NULL,
		booked_at  TIMESTAMP NOT NULL DEFAULT NOW()
	)`
	if _, err := r.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("%w: creating bookings table: %w", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *PostgresBookingRepository) Append(ctx context.Context, booking db.Booking) error {
	query := `INSERT INTO bookings (name, email, date, time, booked_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.DB.ExecContext(ctx, query, booking.Name, booking.Email, booking.Date, booking.Time, booking.BookedAt)
	if err != nil {
		return fmt.Errorf("%w: inserting booking: %w", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

func (r *PostgresBookingRepository) ListAll(ctx context.Context) ([]db.Booking, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT name, email, date, time, booked_at FROM bookings ORDER BY id`)
	if err != nil {
		if isUndefinedTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: querying bookings: %w", apperrors.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		var b db.Booking
		if err := rows.Scan(&b.Name, &b.Email, &b.Date, &b.Time, &b.BookedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning booking: %w", apperrors.ErrStoreUnavailable, err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating bookings: %w", apperrors.ErrStoreUnavailable, err)
	}
	return bookings, nil
}

// DeleteAt resolves the position to a row id and deletes it in one transaction.
func (r *PostgresBookingRepository) DeleteAt(ctx context.Context, index int) error {
	if index < 0 {
		return fmt.Errorf("%w: %d", apperrors.ErrInvalidIndex, index)
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: starting delete: %w", apperrors.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM bookings ORDER BY id OFFSET $1 LIMIT 1 FOR UPDATE`, index).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isUndefinedTable(err) {
			return fmt.Errorf("%w: %d", apperrors.ErrInvalidIndex, index)
		}
		return fmt.Errorf("%w: locating booking %d: %w", apperrors.ErrStoreUnavailable, index, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%w: deleting booking %d: %w", apperrors.ErrStoreUnavailable, index, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing delete: %w", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

// DeleteWhere locks every row, deletes the matching ones and commits once, so
// a failure leaves the table unchanged.
func (r *PostgresBookingRepository) DeleteWhere(ctx context.Context, match func(db.Booking) bool) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: starting delete: %w", apperrors.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	ids, err := matchingIDs(ctx, tx, match)
	if err != nil {
		if isUndefinedTable(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: selecting bookings: %w", apperrors.ErrStoreUnavailable, err)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return 0, fmt.Errorf("%w: deleting bookings: %w", apperrors.ErrStoreUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: committing delete: %w", apperrors.ErrStoreUnavailable, err)
	}
	return len(ids), nil
}

func matchingIDs(ctx context.Context, tx *sql.Tx, match func(db.Booking) bool) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, name, email, date, time, booked_at FROM bookings ORDER BY id FOR UPDATE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		var b db.Booking
		if err := rows.Scan(&id, &b.Name, &b.Email, &b.Date, &b.Time, &b.BookedAt); err != nil {
			return nil, err
		}
		if match(b) {
			ids = append(ids, id)
		}
	}
	return ids, rows.Err()
}

func isUndefinedTable(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == undefinedTable
}
