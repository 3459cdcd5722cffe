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

type cycleRepository interface {
	Add(ctx context.Context, cycle *entities.Cycle) error
	Update(ctx context.Context, cycle entities.Cycle) error
	GetByID(ctx context.Context, id string) (*entities.Cycle, error)
	List(ctx context.Context) ([]entities.Cycle, error)
	GetActive(ctx context.Context, now time.Time) (*entities.Cycle, error)
	GetUpcoming(ctx context.Context, now time.Time) (*entities.Cycle, error)
	Activate(ctx context.Context, id string) error
	Close(ctx context.Context, id string, now time.Time) error
	CloseExpired(ctx context.Context, now time.Time) (int64, error)
	Remove(ctx context.Context, id string) error
}

type PortalStatus struct {
	Open     bool            `json:"open"`
	Active   *entities.Cycle `json:"active,omitempty"`
	Upcoming *entities.Cycle `json:"upcoming,omitempty"`
}

type CycleService struct {
	bus    EventBus.Bus
	cycles cycleRepository
	now    func() time.Time
}

func NewCycleService(bus EventBus.Bus, cycles cycleRepository) *CycleService {
	return &CycleService{bus: bus, cycles: cycles, now: utcNow}
}

func utcNow() time.Time {
	return time.Now().UTC()
}

func normalizeCycle(cycle entities.Cycle) entities.Cycle {
	cycle.PortalOpenAt = cycle.PortalOpenAt.UTC()
	cycle.PortalCloseAt = cycle.PortalCloseAt.UTC()
	if cycle.ApplicationDueAt != nil {
		due := cycle.ApplicationDueAt.UTC()
		cycle.ApplicationDueAt = &due
	}
	return cycle
}

func (s *CycleService) Create(ctx context.Context, cycle entities.Cycle, actor security.Principal) (*entities.Cycle, error) {
	cycle = normalizeCycle(cycle)
	cycle.ID, cycle.Active, cycle.ClosedAt = "", false, nil
	if err := cycle.Validate(); err != nil {
		return nil, err
	}
	if err := s.cycles.Add(ctx, &cycle); err != nil {
		return nil, err
	}
	s.bus.Publish(events.CycleChangedTopic, events.CycleChanged{Cycle: cycle, Action: "created", ActorID: actor.ID})
	return &cycle, nil
}

func (s *CycleService) Update(ctx context.Context, cycle entities.Cycle, actor security.Principal) (*entities.Cycle, error) {
	cycle = normalizeCycle(cycle)
	if err := cycle.Validate(); err != nil {
		return nil, err
	}
	if err := s.cycles.Update(ctx, cycle); err != nil {
		return nil, err
	}
	updated, err := s.cycles.GetByID(ctx, cycle.ID)
	if err != nil {
		return nil, err
	}
	s.bus.Publish(events.CycleChangedTopic, events.CycleChanged{Cycle: *updated, Action: "updated", ActorID: actor.ID})
	return updated, nil
}

func (s *CycleService) Get(ctx context.Context, id string) (*entities.Cycle, error) {
	return s.cycles.GetByID(ctx, id)
}

func (s *CycleService) List(ctx context.Context) ([]entities.Cycle, error) {
	return s.cycles.List(ctx)
}

func (s *CycleService) Delete(ctx context.Context, id string, actor security.Principal) error {
	if err := s.cycles.Remove(ctx, id); err != nil {
		return err
	}
	s.bus.Publish(events.CycleChangedTopic, events.CycleChanged{Cycle: entities.Cycle{ID: id}, Action: "deleted",
		ActorID: actor.ID})
	return nil
}

func (s *CycleService) GetActive(ctx context.Context) (*entities.Cycle, error) {
	return s.cycles.GetActive(ctx, s.now())
}

func (s *CycleService) GetUpcoming(ctx context.Context) (*entities.Cycle, error) {
	return s.cycles.GetUpcoming(ctx, s.now())
}

// PortalStatus tells the public site whether recruitment is open and what comes next.
func (s *CycleService) PortalStatus(ctx context.Context) (PortalStatus, error) {
	var status PortalStatus

	active, err := s.GetActive(ctx)
	if err != nil && !apperr.Is(err, apperr.CodeNotFound) {
		return status, err
	}
	upcoming, err := s.GetUpcoming(ctx)
	if err != nil && !apperr.Is(err, apperr.CodeNotFound) {
		return status, err
	}

	status.Active, status.Upcoming = active, upcoming
	status.Open = active != nil
	return status, nil
}

func (s *CycleService) Activate(ctx context.Context, id string, actor security.Principal) (*entities.Cycle, error) {
	if err := s.cycles.Activate(ctx, id); err != nil {
		return nil, err
	}
	cycle, err := s.cycles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.bus.Publish(events.CycleChangedTopic, events.CycleChanged{Cycle: *cycle, Action: "activated", ActorID: actor.ID})
	return cycle, nil
}

func (s *CycleService) Close(ctx context.Context, id string, actor security.Principal) (*entities.Cycle, error) {
	if err := s.cycles.Close(ctx, id, s.now()); err != nil {
		return nil, err
	}
	cycle, err := s.cycles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.bus.Publish(events.CycleChangedTopic, events.CycleChanged{Cycle: *cycle, Action: "closed", ActorID: actor.ID})
	return cycle, nil
}

func (s *CycleService) SweepExpired(ctx context.Context) (int64, error) {
	return s.cycles.CloseExpired(ctx, s.now())
}
