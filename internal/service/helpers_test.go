package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"appointments/internal/db"
	"appointments/internal/repository"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) SendConfirmation(ctx context.Context, recipient, subject, body string) bool {
	args := m.Called(ctx, recipient, subject, body)
	return args.Bool(0)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Initialize(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockBookingRepository) Append(ctx context.Context, booking db.Booking) error {
	return m.Called(ctx, booking).Error(0)
}

func (m *MockBookingRepository) ListAll(ctx context.Context) ([]db.Booking, error) {
	args := m.Called(ctx)
	bookings, _ := args.Get(0).([]db.Booking)
	return bookings, args.Error(1)
}

func (m *MockBookingRepository) DeleteAt(ctx context.Context, index int) error {
	return m.Called(ctx, index).Error(0)
}

func (m *MockBookingRepository) DeleteWhere(ctx context.Context, match func(db.Booking) bool) (int, error) {
	args := m.Called(ctx, match)
	return args.Int(0), args.Error(1)
}

// testNow is the clock used by booking services built in tests.
var testNow = time.Date(2024, 5, 31, 10, 0, 0, 0, time.UTC)

func newCSVRepo(t *testing.T) *repository.CSVBookingRepository {
	t.Helper()
	return repository.NewCSVBookingRepository(filepath.Join(t.TempDir(), "appointments.csv"))
}

func seed(t *testing.T, repo repository.BookingRepository, bookings ...db.Booking) {
	t.Helper()
	for _, b := range bookings {
		require.NoError(t, repo.Append(context.Background(), b))
	}
}

func record(name, date, slot string) db.Booking {
	return db.Booking{
		Name:     name,
		Email:    name + "@example.com",
		Date:     date,
		Time:     slot,
		BookedAt: time.Date(2024, 5, 30, 12, 0, 0, 0, time.UTC),
	}
}

// newBookingService wires a booking flow over repo with the given dispatcher.
func newBookingService(repo repository.BookingRepository, dispatcher Dispatcher) *BookingService {
	log := zap.NewNop()
	slots := NewSlotService(repo, log)
	svc := NewBookingService(repo, slots, NewSenderService(dispatcher, log), log)
	svc.now = func() time.Time { return testNow }
	return svc
}
