package service

import (
	"context"
	"fmt"

	"appointments/internal/entities"
	apperrors "appointments/internal/errors"
	"appointments/internal/repository"
	"appointments/internal/utils"

	"go.uber.org/zap"
)

const (
	dayStartHour  = 9
	dayEndHour    = 17
	slotLengthMin = 30
)

// dailySlots is the fixed grid shared by every calendar date.
var dailySlots = func() []entities.TimeSlot {
	var slots []entities.TimeSlot
	for m := dayStartHour * 60; m < dayEndHour*60; m += slotLengthMin {
		slots = append(slots, entities.TimeSlot{Hour: m / 60, Minute: m % 60})
	}
	return slots
}()

// GenerateDailySlots returns the half-hour marks from 09:00 up to, but not
// including, 17:00 in ascending order. The result is a fresh copy.
func GenerateDailySlots() []entities.TimeSlot {
	slots := make([]entities.TimeSlot, len(dailySlots))
	copy(slots, dailySlots)
	return slots
}

// IsGridSlot reports whether t is one of the daily marks.
func IsGridSlot(t entities.TimeSlot) bool {
	for _, s := range dailySlots {
		if s == t {
			return true
		}
	}
	return false
}

type SlotService struct {
	Repo repository.BookingRepository
	log  *zap.Logger
}

func NewSlotService(repo repository.BookingRepository, log *zap.Logger) *SlotService {
	return &SlotService{Repo: repo, log: log}
}

// AvailableSlots returns the daily grid minus the slots booked on date.
// Dates compare as calendar days, not as raw strings.
func (s *SlotService) AvailableSlots(ctx context.Context, date string) ([]entities.TimeSlot, error) {
	taken, err := s.takenSlots(ctx, date)
	if err != nil {
		return nil, err
	}
	available := make([]entities.TimeSlot, 0, len(dailySlots))
	for _, slot := range dailySlots {
		if !taken[slot] {
			available = append(available, slot)
		}
	}
	return available, nil
}

// SlotDetails returns every grid slot with its availability on date.
func (s *SlotService) SlotDetails(ctx context.Context, date string) (*entities.AvailabilityResponse, error) {
	taken, err := s.takenSlots(ctx, date)
	if err != nil {
		return nil, err
	}
	day, _ := utils.ParseDate(date)
	response := &entities.AvailabilityResponse{Date: day.Format(utils.DateLayout)}
	for _, slot := range dailySlots {
		free := !taken[slot]
		if free {
			response.AvailableCount++
		}
		response.SlotDetails = append(response.SlotDetails, entities.TimeSlotAvailability{
			Time:        slot.String(),
			Label:       slot.Label(),
			IsAvailable: free,
		})
	}
	return response, nil
}

func (s *SlotService) takenSlots(ctx context.Context, date string) (map[entities.TimeSlot]bool, error) {
	day, ok := utils.ParseDate(date)
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidDate, date)
	}
	bookings, err := s.Repo.ListAll(ctx)
	if err != nil {
		s.log.Error("slot.availability: reading bookings failed", zap.String("date", date), zap.Error(err))
		return nil, err
	}

	taken := make(map[entities.TimeSlot]bool)
	for _, b := range bookings {
		if !utils.SameDate(b.Date, day) {
			continue
		}
		slot, err := entities.ParseTimeSlot(b.Time)
		if err != nil {
			s.log.Warn("slot.availability: ignoring booking with unreadable time",
				zap.String("date", b.Date), zap.String("time", b.Time))
			continue
		}
		taken[slot] = true
	}
	return taken, nil
}
