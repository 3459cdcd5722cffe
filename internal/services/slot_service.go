package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/entities"
	"github.com/maxaizer/club-portal/internal/events"
	"github.com/maxaizer/club-portal/internal/metrics"
	"github.com/maxaizer/club-portal/internal/repositories"
	"github.com/maxaizer/club-portal/internal/security"
)

type slotRepository interface {
	AddMany(ctx context.Context, slots []entities.Slot) error
	GetByID(ctx context.Context, id string) (*entities.Slot, error)
	List(ctx context.Context, filter repositories.SlotFilter) ([]entities.Slot, error)
	Update(ctx context.Context, slot entities.Slot) error
	Remove(ctx context.Context, id string) error
	Book(ctx context.Context, booking *entities.SlotBooking) error
	GetBooking(ctx context.Context, id string) (*entities.SlotBooking, error)
	Cancel(ctx context.Context, id string) (*entities.SlotBooking, error)
	ListBookingsBySlot(ctx context.Context, slotID string) ([]entities.SlotBooking, error)
	ListBookingsByApplicant(ctx context.Context, applicantID string) ([]entities.SlotBooking, error)
}

type stageFinder interface {
	FindInStage(ctx context.Context, cycleID, applicantID string, stage entities.Stage) (*entities.Application, error)
}

type SlotService struct {
	bus          EventBus.Bus
	slots        slotRepository
	applications stageFinder
	cycles       cycleGetter
}

func NewSlotService(bus EventBus.Bus, slots slotRepository, applications stageFinder, cycles cycleGetter) *SlotService {
	return &SlotService{bus: bus, slots: slots, applications: applications, cycles: cycles}
}

// Seed creates all slots of a cycle at once or none of them.
func (s *SlotService) Seed(ctx context.Context, cycleID string, slots []entities.Slot) ([]entities.Slot, error) {
	if len(slots) == 0 {
		return nil, apperr.Validation("no slots given", nil)
	}
	if _, err := s.cycles.GetByID(ctx, cycleID); err != nil {
		return nil, err
	}

	for i := range slots {
		slots[i].ID, slots[i].CycleID, slots[i].BookedCount = "", cycleID, 0
		if err := slots[i].Validate(); err != nil {
			return nil, err
		}
	}
	if err := s.slots.AddMany(ctx, slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (s *SlotService) Update(ctx context.Context, slot entities.Slot) (*entities.Slot, error) {
	current, err := s.slots.GetByID(ctx, slot.ID)
	if err != nil {
		return nil, err
	}
	slot.CycleID, slot.Kind = current.CycleID, current.Kind
	if err = slot.Validate(); err != nil {
		return nil, err
	}
	if err = s.slots.Update(ctx, slot); err != nil {
		return nil, err
	}
	return s.slots.GetByID(ctx, slot.ID)
}

func (s *SlotService) Delete(ctx context.Context, id string) error {
	return s.slots.Remove(ctx, id)
}

func (s *SlotService) Get(ctx context.Context, id string) (*entities.Slot, error) {
	return s.slots.GetByID(ctx, id)
}

func (s *SlotService) List(ctx context.Context, cycleID string, kind entities.SlotKind, availableOnly bool) ([]entities.Slot, error) {
	if kind != "" && !kind.Valid() {
		return nil, apperr.Validation("invalid kind", map[string]string{"kind": "must be interview or coffee_chat"})
	}
	return s.slots.List(ctx, repositories.SlotFilter{CycleID: cycleID, Kind: kind, AvailableOnly: availableOnly})
}

func (s *SlotService) ListBookings(ctx context.Context, slotID string) ([]entities.SlotBooking, error) {
	if _, err := s.slots.GetByID(ctx, slotID); err != nil {
		return nil, err
	}
	return s.slots.ListBookingsBySlot(ctx, slotID)
}

func (s *SlotService) ListMine(ctx context.Context, applicant security.Principal) ([]entities.SlotBooking, error) {
	return s.slots.ListBookingsByApplicant(ctx, applicant.ID)
}

// Book reserves a seat for the applicant. Interview slots are only open to applicants in the interview stage.
func (s *SlotService) Book(ctx context.Context, slotID string, applicant security.Principal) (*entities.SlotBooking, error) {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}

	booking := entities.SlotBooking{
		SlotID:      slot.ID,
		CycleID:     slot.CycleID,
		Kind:        slot.Kind,
		ApplicantID: applicant.ID,
	}

	if slot.Kind == entities.SlotInterview {
		application, err := s.applications.FindInStage(ctx, slot.CycleID, applicant.ID, entities.StageInterview)
		if apperr.Is(err, apperr.CodeNotFound) {
			return nil, apperr.New(apperr.CodeForbidden, "interview slots are open to invited applicants only")
		}
		if err != nil {
			return nil, err
		}
		booking.ApplicationID = application.ID
	}

	if err = s.slots.Book(ctx, &booking); err != nil {
		metrics.SlotBookingsCounter.WithLabelValues(bookingResult(err)).Inc()
		return nil, err
	}
	metrics.SlotBookingsCounter.WithLabelValues("booked").Inc()

	s.bus.Publish(events.SlotBookedTopic, events.SlotBooked{Booking: booking})
	return &booking, nil
}

func bookingResult(err error) string {
	switch apperr.CodeOf(err) {
	case apperr.CodeConflict:
		return "conflict"
	case apperr.CodeNotFound:
		return "not_found"
	default:
		return "error"
	}
}

// Cancel releases the booking. The owner or an admin may cancel.
func (s *SlotService) Cancel(ctx context.Context, bookingID string, actor security.Principal) (*entities.SlotBooking, error) {
	booking, err := s.slots.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.ApplicantID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.Forbidden()
	}

	cancelled, err := s.slots.Cancel(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	metrics.SlotBookingsCounter.WithLabelValues("cancelled").Inc()

	s.bus.Publish(events.BookingCancelledTopic, events.BookingCancelled{Booking: *cancelled, ActorID: actor.ID})
	return cancelled, nil
}
