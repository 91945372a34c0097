package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the public and admin endpoints. adminAuth guards /admin.
func NewRouter(user *UserBookingHandler, admin *AdminHandler, login *AdminAuthHandler, adminAuth mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/slots", user.AvailableSlots).Methods(http.MethodGet)
	r.HandleFunc("/api/availability", user.CheckAvailability).Methods(http.MethodGet)
	r.HandleFunc("/api/bookings", user.CreateBooking).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/login", login.Login).Methods(http.MethodPost)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, MessageResponse{Message: "ok"})
	}).Methods(http.MethodGet)

	// Admin endpoints (protected)
	adminRoutes := r.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(adminAuth)
	adminRoutes.HandleFunc("/bookings", admin.ListBookings).Methods(http.MethodGet)
	adminRoutes.HandleFunc("/bookings/{index:-?[0-9]+}", admin.DeleteBooking).Methods(http.MethodDelete)

	return r
}
