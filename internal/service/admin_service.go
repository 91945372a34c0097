package service

import (
	"context"

	"appointments/internal/entities"

	"go.uber.org/zap"
)

type AdminService struct {
	bookings *BookingService
	log      *zap.Logger
}

func NewAdminService(bookings *BookingService, log *zap.Logger) *AdminService {
	return &AdminService{bookings: bookings, log: log}
}

func (s *AdminService) ListBookings(ctx context.Context) (*entities.BookingsList, error) {
	all, err := s.bookings.Repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	list := &entities.BookingsList{
		Total:    len(all),
		Bookings: make([]entities.BookingResponse, 0, len(all)),
	}
	for i, b := range all {
		list.Bookings = append(list.Bookings, entities.BookingResponse{
			Index:    i,
			Name:     b.Name,
			Email:    b.Email,
			Date:     b.Date,
			Time:     b.Time,
			BookedAt: b.BookedAt,
		})
	}
	return list, nil
}

func (s *AdminService) DeleteBooking(ctx context.Context, index int) error {
	if err := s.bookings.DeleteAt(ctx, index); err != nil {
		s.log.Warn("admin: delete booking failed", zap.Int("index", index), zap.Error(err))
		return err
	}
	s.log.Info("admin: booking deleted", zap.Int("index", index))
	return nil
}
