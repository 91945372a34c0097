package entities

import "time"

type BookingResponse struct {
	Index    int       `json:"index"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Date     string    `json:"date"`
	Time     string    `json:"time"`
	BookedAt time.Time `json:"booked_at"`
}

type BookingsList struct {
	Total    int               `json:"total"`
	Bookings []BookingResponse `json:"bookings"`
}
