package api

import (
	"net/http"

	"appointments/internal/entities"
	apperrors "appointments/internal/errors"
	"appointments/internal/service"
	"appointments/internal/utils"
)

type UserBookingHandler struct {
	Slots    *service.SlotService
	Bookings *service.BookingService
}

func NewUserBookingHandler(slots *service.SlotService, bookings *service.BookingService) *UserBookingHandler {
	return &UserBookingHandler{Slots: slots, Bookings: bookings}
}

// AvailableSlots serves the choices for the booking form's time selector.
func (h *UserBookingHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, apperrors.ErrBadRequest("date query parameter is required"))
		return
	}
	slots, err := h.Slots.AvailableSlots(r.Context(), date)
	if err != nil {
		writeError(w, err)
		return
	}
	day, _ := utils.ParseDate(date)
	resp := entities.AvailableSlotsResponse{
		Date:  day.Format(utils.DateLayout),
		Slots: make([]entities.SlotResponse, 0, len(slots)),
	}
	for _, s := range slots {
		resp.Slots = append(resp.Slots, entities.SlotResponse{Time: s.String(), Label: s.Label()})
	}
	if len(slots) == 0 {
		resp.Message = "No available time slots for this date. Please choose another day."
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *UserBookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, apperrors.ErrBadRequest("date query parameter is required"))
		return
	}
	resp, err := h.Slots.SlotDetails(r.Context(), date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *UserBookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req entities.BookingRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}
	result, err := h.Bookings.CreateBooking(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}
