package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"appointments/internal/db"
	apperrors "appointments/internal/errors"
)

// BookingRepository is the durable, ordered list of bookings. Positions used
// by DeleteAt are those of the slice returned by ListAll.
type BookingRepository interface {
	Initialize(ctx context.Context) error
	Append(ctx context.Context, booking db.Booking) error
	ListAll(ctx context.Context) ([]db.Booking, error)
	DeleteAt(ctx context.Context, index int) error
	// DeleteWhere removes every matching booking atomically and reports how
	// many were removed.
	DeleteWhere(ctx context.Context, match func(db.Booking) bool) (int, error)
}

var bookedAtLayouts = []string{
	db.BookedAtLayout,
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// CSVBookingRepository keeps bookings in a flat comma-separated file with a
// header row. Deletes rewrite the whole file through a temp file and rename.
type CSVBookingRepository struct {
	path string
	mu   sync.RWMutex
}

func NewCSVBookingRepository(path string) *CSVBookingRepository {
	return &CSVBookingRepository{path: path}
}

func (r *CSVBookingRepository) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensureFile()
}

func (r *CSVBookingRepository) Append(ctx context.Context, booking db.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureFile(); err != nil {
		return err
	}
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %w", apperrors.ErrStoreUnavailable, r.path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(toRow(booking)); err != nil {
		f.Close()
		return fmt.Errorf("%w: appending booking: %w", apperrors.ErrStoreUnavailable, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("%w: appending booking: %w", apperrors.ErrStoreUnavailable, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", apperrors.ErrStoreUnavailable, r.path, err)
	}
	return nil
}

func (r *CSVBookingRepository) ListAll(ctx context.Context) ([]db.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.readAll()
}

func (r *CSVBookingRepository) DeleteAt(ctx context.Context, index int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	bookings, err := r.readAll()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(bookings) {
		return fmt.Errorf("%w: %d (have %d bookings)", apperrors.ErrInvalidIndex, index, len(bookings))
	}
	remaining := make([]db.Booking, 0, len(bookings)-1)
	remaining = append(remaining, bookings[:index]...)
	remaining = append(remaining, bookings[index+1:]...)
	return r.writeAll(remaining)
}

// DeleteWhere removes every booking for which match returns true with a
// single rewrite. The file is left untouched when nothing matches.
func (r *CSVBookingRepository) DeleteWhere(ctx context.Context, match func(db.Booking) bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	bookings, err := r.readAll()
	if err != nil {
		return 0, err
	}
	remaining := make([]db.Booking, 0, len(bookings))
	for _, b := range bookings {
		if !match(b) {
			remaining = append(remaining, b)
		}
	}
	removed := len(bookings) - len(remaining)
	if removed == 0 {
		return 0, nil
	}
	if err := r.writeAll(remaining); err != nil {
		return 0, err
	}
	return removed, nil
}

// ensureFile writes the header row when the file is missing or empty.
// Callers hold the write lock.
func (r *CSVBookingRepository) ensureFile() error {
	info, err := os.Stat(r.path)
	if err == nil {
		if info.Size() == 0 {
			return r.writeAll(nil)
		}
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", apperrors.ErrStoreUnavailable, err)
	}
	return r.writeAll(nil)
}

func (r *CSVBookingRepository) readAll() ([]db.Booking, error) {
	f, err := os.Open(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrStoreUnavailable, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(db.BookingColumns)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", apperrors.ErrStoreUnavailable, r.path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if !isHeader(rows[0]) {
		return nil, fmt.Errorf("%w: %s has unexpected header %v", apperrors.ErrStoreUnavailable, r.path, rows[0])
	}

	bookings := make([]db.Booking, 0, len(rows)-1)
	for _, row := range rows[1:] {
		bookings = append(bookings, fromRow(row))
	}
	return bookings, nil
}

// writeAll replaces the file with the header followed by bookings. The old
// content stays in place until the rename succeeds.
func (r *CSVBookingRepository) writeAll(bookings []db.Booking) error {
	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", apperrors.ErrStoreUnavailable, err)
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: rewriting %s: %w", apperrors.ErrStoreUnavailable, r.path, err)
	}

	w := csv.NewWriter(tmp)
	if err := w.Write(db.BookingColumns); err != nil {
		return fail(err)
	}
	for _, b := range bookings {
		if err := w.Write(toRow(b)); err != nil {
			return fail(err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rewriting %s: %w", apperrors.ErrStoreUnavailable, r.path, err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: replacing %s: %w", apperrors.ErrStoreUnavailable, r.path, err)
	}
	return nil
}

// isHeader accepts the canonical header and the older "Booked At" spelling.
func isHeader(row []string) bool {
	for i, col := range db.BookingColumns {
		if strings.ReplaceAll(strings.TrimSpace(row[i]), " ", "") != col {
			return false
		}
	}
	return true
}

func toRow(b db.Booking) []string {
	return []string{b.Name, b.Email, b.Date, b.Time, b.BookedAt.Format(db.BookedAtLayout)}
}

func fromRow(row []string) db.Booking {
	return db.Booking{
		Name:     row[0],
		Email:    row[1],
		Date:     row[2],
		Time:     row[3],
		BookedAt: parseBookedAt(row[4]),
	}
}

// parseBookedAt returns the zero time for values it cannot read; the field is
// informational and never rejects a row.
func parseBookedAt(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range bookedAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
