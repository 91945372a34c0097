package api

import (
	"net/http"
	"strconv"

	apperrors "appointments/internal/errors"
	"appointments/internal/service"

	"github.com/gorilla/mux"
)

type AdminHandler struct {
	Service *service.AdminService
}

func NewAdminHandler(svc *service.AdminService) *AdminHandler {
	return &AdminHandler{Service: svc}
}

func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.Service.ListBookings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *AdminHandler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, apperrors.ErrBadRequest("Invalid index"))
		return
	}
	if err := h.Service.DeleteBooking(r.Context(), index); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Booking deleted"})
}
