package entities

type BookingRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
	Date  string `json:"date" validate:"required"`
	Time  string `json:"time" validate:"required"`
}

type BookingResult struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	EmailSent bool   `json:"email_sent"`
	Message   string `json:"message"`
	Warning   string `json:"warning,omitempty"`
}
