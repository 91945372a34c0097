package service

import (
	"bytes"
	"context"
	"text/template"

	"appointments/internal/db"
	"appointments/internal/entities"

	"go.uber.org/zap"
)

const confirmationSubject = "Appointment Confirmation"

var confirmationBody = template.Must(template.New("confirmation").Parse(
	"Hello {{.UserName}},\n\n" +
		"Your appointment is confirmed for {{.Date}} at {{.Time}}.\n\n" +
		"Thank you!"))

type SenderService struct {
	dispatcher Dispatcher
	log        *zap.Logger
}

func NewSenderService(dispatcher Dispatcher, log *zap.Logger) *SenderService {
	return &SenderService{dispatcher: dispatcher, log: log}
}

// SendBookingConfirmation emails the booker. Failures are logged and reported
// as false; the booking itself is never touched.
func (s *SenderService) SendBookingConfirmation(ctx context.Context, booking db.Booking) bool {
	emailData := entities.BookingEmailData{
		UserName: booking.Name,
		Date:     booking.Date,
		Time:     booking.Time,
	}

	var body bytes.Buffer
	if err := confirmationBody.Execute(&body, emailData); err != nil {
		s.log.Error("sender: rendering confirmation failed", zap.String("email", booking.Email), zap.Error(err))
		return false
	}

	if !s.dispatcher.SendConfirmation(ctx, booking.Email, confirmationSubject, body.String()) {
		s.log.Warn("sender: booking stored but confirmation email was not delivered",
			zap.String("email", booking.Email),
			zap.String("date", booking.Date),
			zap.String("time", booking.Time))
		return false
	}
	return true
}
