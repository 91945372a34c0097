package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"appointments/internal/db"
	"appointments/internal/entities"
	apperrors "appointments/internal/errors"
	"appointments/internal/repository"
	"appointments/internal/utils"

	"go.uber.org/zap"
)

// BookingService owns every write to the booking store. Its mutex serialises
// the availability check with the append that follows it, and keeps deletes
// from interleaving with either. It does not coordinate separate processes
// sharing one store.
type BookingService struct {
	Repo   repository.BookingRepository
	slots  *SlotService
	sender *SenderService
	log    *zap.Logger

	mu  sync.Mutex
	now func() time.Time
}

func NewBookingService(repo repository.BookingRepository, slots *SlotService, sender *SenderService, log *zap.Logger) *BookingService {
	return &BookingService{
		Repo:   repo,
		slots:  slots,
		sender: sender,
		log:    log,
		now:    time.Now,
	}
}

// CreateBooking stores the booking when its slot is still free, then sends the
// confirmation. A failed confirmation is reported in the result, not as an error.
func (s *BookingService) CreateBooking(ctx context.Context, req *entities.BookingRequest) (*entities.BookingResult, error) {
	day, ok := utils.ParseDate(req.Date)
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidDate, req.Date)
	}
	if day.Before(calendarDay(s.now())) {
		return nil, fmt.Errorf("%w: %s is in the past", apperrors.ErrInvalidDate, day.Format(utils.DateLayout))
	}
	slot, err := entities.ParseTimeSlot(req.Time)
	if err != nil || !IsGridSlot(slot) {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidSlot, req.Time)
	}

	booking := db.Booking{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Date:     day.Format(utils.DateLayout),
		Time:     slot.String(),
		BookedAt: s.now(),
	}

	if err := s.reserve(ctx, booking, slot); err != nil {
		return nil, err
	}
	s.log.Info("booking: created",
		zap.String("email", booking.Email),
		zap.String("date", booking.Date),
		zap.String("time", booking.Time))

	result := &entities.BookingResult{
		Name:  booking.Name,
		Email: booking.Email,
		Date:  booking.Date,
		Time:  booking.Time,
	}
	// The send outlives a client that hangs up; the dispatcher has its own timeout.
	if s.sender.SendBookingConfirmation(context.WithoutCancel(ctx), booking) {
		result.EmailSent = true
		result.Message = fmt.Sprintf("Thank you, %s! Appointment booked and confirmation email sent.", booking.Name)
	} else {
		result.Message = fmt.Sprintf("Thank you, %s! Appointment booked.", booking.Name)
		result.Warning = "Confirmation email could not be sent."
	}
	return result, nil
}

func (s *BookingService) reserve(ctx context.Context, booking db.Booking, slot entities.TimeSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	available, err := s.slots.AvailableSlots(ctx, booking.Date)
	if err != nil {
		return err
	}
	free := false
	for _, a := range available {
		if a == slot {
			free = true
			break
		}
	}
	if !free {
		return fmt.Errorf("%w: %s %s", apperrors.ErrSlotTaken, booking.Date, slot.Label())
	}
	if err := s.Repo.Append(ctx, booking); err != nil {
		s.log.Error("booking: append failed", zap.String("date", booking.Date), zap.String("time", booking.Time), zap.Error(err))
		return err
	}
	return nil
}

// DeleteAt removes the booking at a ListAll position.
func (s *BookingService) DeleteAt(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Repo.DeleteAt(ctx, index)
}

// PurgeBefore deletes every booking dated before cutoff in one store
// operation and returns how many were removed. Either all expired bookings go
// or none do. Bookings with unreadable dates are kept.
func (s *BookingService) PurgeBefore(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoffDay := calendarDay(cutoff)
	return s.Repo.DeleteWhere(ctx, func(b db.Booking) bool {
		day, ok := utils.ParseDate(b.Date)
		return ok && day.Before(cutoffDay)
	})
}

// calendarDay is t's calendar date in its own location, as a UTC midnight.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
