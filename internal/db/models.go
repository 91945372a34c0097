package db

import "time"

// Column names of the persisted booking table, in file order.
var BookingColumns = []string{"Name", "Email", "Date", "Time", "BookedAt"}

// BookedAtLayout is the textual form of Booking.BookedAt in the flat file.
const BookedAtLayout = "2006-01-02 15:04:05.000000"

type Booking struct {
	Name     string
	Email    string
	Date     string
	Time     string
	BookedAt time.Time
}
