package entities

import (
	"fmt"
	"strings"
	"time"
)

// TimeSlot is a half-hour mark in the daily schedule.
type TimeSlot struct {
	Hour   int
	Minute int
}

// String returns the form stored in booking records, e.g. "09:30:00".
func (t TimeSlot) String() string {
	return fmt.Sprintf("%02d:%02d:00", t.Hour, t.Minute)
}

// Label returns the display form, e.g. "09:30".
func (t TimeSlot) Label() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTimeSlot accepts "HH:MM" or "HH:MM:SS". Seconds must be zero.
func ParseTimeSlot(s string) (TimeSlot, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Second() != 0 {
			return TimeSlot{}, fmt.Errorf("time %q has non-zero seconds", s)
		}
		return TimeSlot{Hour: t.Hour(), Minute: t.Minute()}, nil
	}
	return TimeSlot{}, fmt.Errorf("time %q is not in HH:MM or HH:MM:SS form", s)
}

type SlotResponse struct {
	Time  string `json:"time"`
	Label string `json:"label"`
}

type AvailableSlotsResponse struct {
	Date    string         `json:"date"`
	Slots   []SlotResponse `json:"slots"`
	Message string         `json:"message,omitempty"`
}

type TimeSlotAvailability struct {
	Time        string `json:"time"`
	Label       string `json:"label"`
	IsAvailable bool   `json:"is_available"`
}

type AvailabilityResponse struct {
	Date           string                 `json:"date"`
	AvailableCount int                    `json:"available_count"`
	SlotDetails    []TimeSlotAvailability `json:"slot_details"`
}
