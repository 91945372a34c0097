package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"appointments/internal/db"
	"appointments/internal/entities"
	apperrors "appointments/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateBookingSendsConfirmation(t *testing.T) {
	repo := newCSVRepo(t)
	dispatcher := new(MockDispatcher)
	dispatcher.On("SendConfirmation", mock.Anything, "ana@example.com", "Appointment Confirmation",
		"Hello Ana,\n\nYour appointment is confirmed for 2024-06-01 at 09:30:00.\n\nThank you!").Return(true)
	svc := newBookingService(repo, dispatcher)

	result, err := svc.CreateBooking(context.Background(), &entities.BookingRequest{
		Name: " Ana ", Email: "ana@example.com", Date: "2024-06-01", Time: "09:30",
	})
	require.NoError(t, err)
	assert.True(t, result.EmailSent)
	assert.Empty(t, result.Warning)
	assert.Equal(t, "09:30:00", result.Time)

	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Ana", all[0].Name)
	assert.Equal(t, "2024-06-01", all[0].Date)
	assert.Equal(t, "09:30:00", all[0].Time)
	assert.True(t, all[0].BookedAt.Equal(testNow))
	dispatcher.AssertExpectations(t)
}

func TestCreateBookingKeptWhenConfirmationFails(t *testing.T) {
	repo := newCSVRepo(t)
	dispatcher := new(MockDispatcher)
	dispatcher.On("SendConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false)
	svc := newBookingService(repo, dispatcher)

	result, err := svc.CreateBooking(context.Background(), &entities.BookingRequest{
		Name: "Ben", Email: "ben@example.com", Date: "2024-06-01", Time: "14:00:00",
	})
	require.NoError(t, err)
	assert.False(t, result.EmailSent)
	assert.NotEmpty(t, result.Warning)

	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Ben", all[0].Name)
}

func TestCreateBookingRejectsTakenSlot(t *testing.T) {
	repo := newCSVRepo(t)
	seed(t, repo, record("ana", "2024-06-01", "09:00:00"))
	dispatcher := new(MockDispatcher)
	svc := newBookingService(repo, dispatcher)

	_, err := svc.CreateBooking(context.Background(), &entities.BookingRequest{
		Name: "Ben", Email: "ben@example.com", Date: "2024-06-01", Time: "09:00",
	})
	assert.ErrorIs(t, err, apperrors.ErrSlotTaken)

	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
	dispatcher.AssertNotCalled(t, "SendConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBookingRejectsOffGridInput(t *testing.T) {
	svc := newBookingService(newCSVRepo(t), new(MockDispatcher))
	ctx := context.Background()

	for _, tm := range []string{"17:00", "08:30", "10:15", "noon", "09:00:30"} {
		_, err := svc.CreateBooking(ctx, &entities.BookingRequest{Name: "A", Email: "a@example.com", Date: "2024-06-01", Time: tm})
		assert.ErrorIs(t, err, apperrors.ErrInvalidSlot, tm)
	}

	_, err := svc.CreateBooking(ctx, &entities.BookingRequest{Name: "A", Email: "a@example.com", Date: "01.06.2024", Time: "09:00"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidDate)
}

func TestCreateBookingRejectsPastDate(t *testing.T) {
	repo := newCSVRepo(t)
	dispatcher := new(MockDispatcher)
	dispatcher.On("SendConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true)
	svc := newBookingService(repo, dispatcher)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC) }
	ctx := context.Background()

	for _, date := range []string{"1999-01-01", "2024-05-31"} {
		_, err := svc.CreateBooking(ctx, &entities.BookingRequest{Name: "A", Email: "a@example.com", Date: date, Time: "09:00"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidDate, date)
	}
	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	dispatcher.AssertNotCalled(t, "SendConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	// Today stays bookable, even late in the day.
	_, err = svc.CreateBooking(ctx, &entities.BookingRequest{Name: "A", Email: "a@example.com", Date: "2024-06-01", Time: "09:00"})
	require.NoError(t, err)

	slots, err := svc.slots.AvailableSlots(ctx, "1999-01-01")
	require.NoError(t, err)
	assert.Len(t, slots, 16)
}

func TestCreateBookingStoreFailure(t *testing.T) {
	repo := new(MockBookingRepository)
	repo.On("ListAll", mock.Anything).Return([]db.Booking{}, nil)
	repo.On("Append", mock.Anything, mock.Anything).Return(errors.Join(apperrors.ErrStoreUnavailable, errors.New("disk full")))
	dispatcher := new(MockDispatcher)
	svc := newBookingService(repo, dispatcher)

	_, err := svc.CreateBooking(context.Background(), &entities.BookingRequest{
		Name: "A", Email: "a@example.com", Date: "2024-06-01", Time: "09:00",
	})
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	dispatcher.AssertNotCalled(t, "SendConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBookingConcurrentSameSlot(t *testing.T) {
	repo := newCSVRepo(t)
	dispatcher := new(MockDispatcher)
	dispatcher.On("SendConfirmation", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true)
	svc := newBookingService(repo, dispatcher)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateBooking(context.Background(), &entities.BookingRequest{
				Name: "A", Email: "a@example.com", Date: "2024-06-01", Time: "15:00",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, apperrors.ErrSlotTaken)
		}
	}
	assert.Equal(t, 1, succeeded)

	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPurgeBefore(t *testing.T) {
	repo := newCSVRepo(t)
	seed(t, repo,
		record("old1", "2024-05-01", "09:00:00"),
		record("keep1", "2024-06-01", "09:00:00"),
		record("old2", "2024-05-31", "10:00:00"),
		record("odd", "someday", "10:00:00"),
		record("keep2", "2024-06-02", "11:00:00"),
	)
	svc := newBookingService(repo, new(MockDispatcher))

	removed, err := svc.PurgeBefore(context.Background(), time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	var names []string
	for _, b := range all {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"keep1", "odd", "keep2"}, names)
}

func TestPurgeBeforeStoreFailure(t *testing.T) {
	repo := new(MockBookingRepository)
	repo.On("DeleteWhere", mock.Anything, mock.Anything).Return(0, errors.Join(apperrors.ErrStoreUnavailable, errors.New("disk full")))
	svc := newBookingService(repo, new(MockDispatcher))

	removed, err := svc.PurgeBefore(context.Background(), testNow)
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
	assert.Zero(t, removed)
	repo.AssertNotCalled(t, "DeleteAt", mock.Anything, mock.Anything)
}
