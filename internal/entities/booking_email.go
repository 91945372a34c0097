package entities

type BookingEmailData struct {
	UserName string
	Date     string
	Time     string
}
