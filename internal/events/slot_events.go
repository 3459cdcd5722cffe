package events

import "github.com/maxaizer/club-portal/internal/entities"

var SlotBookedTopic = "SlotBookedEvent"

type SlotBooked struct {
	Booking entities.SlotBooking
}

var BookingCancelledTopic = "BookingCancelledEvent"

type BookingCancelled struct {
	Booking entities.SlotBooking
	ActorID string
}
