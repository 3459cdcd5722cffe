package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/entities"
	"github.com/maxaizer/club-portal/internal/events"
	"github.com/maxaizer/club-portal/internal/security"
	"time"
)

type eventRepository interface {
	Add(ctx context.Context, event *entities.Event) error
	Update(ctx context.Context, event entities.Event) ([]entities.Attendance, error)
	GetByID(ctx context.Context, id string) (*entities.Event, error)
	List(ctx context.Context, publishedOnly bool) ([]entities.Event, error)
	Remove(ctx context.Context, id string) error
	RSVP(ctx context.Context, eventID, userID, email string, now time.Time) (*entities.Attendance, error)
	CancelRSVP(ctx context.Context, eventID, userID string, now time.Time) (*entities.Attendance, *entities.Attendance, error)
	CheckIn(ctx context.Context, eventID, userID string, now time.Time) error
	ListAttendance(ctx context.Context, eventID string) ([]entities.Attendance, error)
	ListAttendanceByUser(ctx context.Context, userID string) ([]entities.Attendance, error)
}

type EventService struct {
	bus    EventBus.Bus
	events eventRepository
	now    func() time.Time
}

func NewEventService(bus EventBus.Bus, events eventRepository) *EventService {
	return &EventService{bus: bus, events: events, now: utcNow}
}

func (s *EventService) Create(ctx context.Context, event entities.Event) (*entities.Event, error) {
	event.ID, event.AttendeeCount = "", 0
	event.StartsAt, event.EndsAt = event.StartsAt.UTC(), event.EndsAt.UTC()
	if err := event.Validate(); err != nil {
		return nil, err
	}
	if err := s.events.Add(ctx, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *EventService) Update(ctx context.Context, event entities.Event) (*entities.Event, error) {
	event.StartsAt, event.EndsAt = event.StartsAt.UTC(), event.EndsAt.UTC()
	if err := event.Validate(); err != nil {
		return nil, err
	}
	promoted, err := s.events.Update(ctx, event)
	if err != nil {
		return nil, err
	}
	for _, attendance := range promoted {
		s.bus.Publish(events.RSVPChangedTopic, events.RSVPChanged{Attendance: attendance})
	}
	return s.events.GetByID(ctx, event.ID)
}

func (s *EventService) Delete(ctx context.Context, id string) error {
	return s.events.Remove(ctx, id)
}

// Get hides unpublished events from everyone but admins.
func (s *EventService) Get(ctx context.Context, id string, viewer security.Principal) (*entities.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !event.Published && !viewer.IsAdmin() {
		return nil, apperr.NotFound("event")
	}
	return event, nil
}

func (s *EventService) List(ctx context.Context, publishedOnly bool) ([]entities.Event, error) {
	return s.events.List(ctx, publishedOnly)
}

func (s *EventService) RSVP(ctx context.Context, eventID string, attendee security.Principal) (*entities.Attendance, error) {
	event, err := s.Get(ctx, eventID, attendee)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !now.Before(event.EndsAt) {
		return nil, apperr.Validation("event is over", nil)
	}

	attendance, err := s.events.RSVP(ctx, eventID, attendee.ID, attendee.Email, now)
	if err != nil {
		return nil, err
	}
	s.bus.Publish(events.RSVPChangedTopic, events.RSVPChanged{Attendance: *attendance})
	return attendance, nil
}

// CancelRSVP withdraws the attendee. A freed seat goes to the earliest waitlisted attendee.
func (s *EventService) CancelRSVP(ctx context.Context, eventID string, attendee security.Principal) (*entities.Attendance, error) {
	cancelled, promoted, err := s.events.CancelRSVP(ctx, eventID, attendee.ID, s.now())
	if err != nil {
		return nil, err
	}
	s.bus.Publish(events.RSVPChangedTopic, events.RSVPChanged{Attendance: *cancelled, Promoted: promoted})
	return cancelled, nil
}

func (s *EventService) CheckIn(ctx context.Context, eventID, userID string) error {
	return s.events.CheckIn(ctx, eventID, userID, s.now())
}

func (s *EventService) ListAttendance(ctx context.Context, eventID string) ([]entities.Attendance, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.events.ListAttendance(ctx, eventID)
}

func (s *EventService) ListMine(ctx context.Context, attendee security.Principal) ([]entities.Attendance, error) {
	return s.events.ListAttendanceByUser(ctx, attendee.ID)
}
