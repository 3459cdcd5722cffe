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
	"strings"
	"time"
)

type applicationRepository interface {
	Add(ctx context.Context, application *entities.Application) error
	GetByID(ctx context.Context, id string) (*entities.Application, error)
	List(ctx context.Context, filter repositories.ApplicationFilter) ([]entities.Application, error)
	ListByApplicant(ctx context.Context, applicantID string) ([]entities.Application, error)
	TransitionStage(ctx context.Context, id string, from, to entities.Stage, now time.Time) error
	Remove(ctx context.Context, id string) error
}

type activeCycleGetter interface {
	GetActive(ctx context.Context) (*entities.Cycle, error)
}

type questionSetGetter interface {
	GetByCycle(ctx context.Context, cycleID string, track entities.Track) (*entities.QuestionSet, error)
}

type SubmitApplicationRequest struct {
	Track     entities.Track `json:"track" validate:"required,oneof=technical business"`
	Name      string         `json:"name" validate:"required,max=255"`
	Email     string         `json:"email" validate:"omitempty,email"`
	Responses map[string]any `json:"responses"`
}

type ApplicationService struct {
	bus          EventBus.Bus
	applications applicationRepository
	cycles       activeCycleGetter
	questions    questionSetGetter
	now          func() time.Time
}

func NewApplicationService(bus EventBus.Bus, applications applicationRepository, cycles activeCycleGetter,
	questions questionSetGetter) *ApplicationService {

	return &ApplicationService{bus: bus, applications: applications, cycles: cycles, questions: questions, now: utcNow}
}

// Submit files an application for the currently active cycle.
func (s *ApplicationService) Submit(ctx context.Context, applicant security.Principal,
	request SubmitApplicationRequest) (*entities.Application, error) {

	if !request.Track.Concrete() {
		return nil, apperr.Validation("invalid track", map[string]string{"track": "must be technical or business"})
	}

	cycle, err := s.cycles.GetActive(ctx)
	if apperr.Is(err, apperr.CodeNotFound) {
		return nil, apperr.Validation("recruitment is closed", nil)
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !cycle.AcceptsApplicationsAt(now) {
		return nil, apperr.Validation("application deadline has passed", nil)
	}

	set, err := s.questions.GetByCycle(ctx, cycle.ID, request.Track)
	if apperr.Is(err, apperr.CodeNotFound) {
		set, err = &entities.QuestionSet{CycleID: cycle.ID, Track: request.Track}, nil
	}
	if err != nil {
		return nil, err
	}
	if err = set.ValidateResponses(request.Responses); err != nil {
		return nil, err
	}

	email := applicant.Email
	if email == "" {
		email = request.Email
	}
	if email == "" {
		return nil, apperr.Validation("email is required", map[string]string{"email": "required"})
	}

	application := entities.Application{
		CycleID:        cycle.ID,
		ApplicantID:    applicant.ID,
		Email:          strings.ToLower(email),
		Name:           strings.TrimSpace(request.Name),
		Track:          request.Track,
		Stage:          entities.StageSubmitted,
		Responses:      request.Responses,
		SubmittedAt:    now,
		StageChangedAt: now,
	}
	if err = s.applications.Add(ctx, &application); err != nil {
		return nil, err
	}

	s.bus.Publish(events.ApplicationSubmittedTopic, events.ApplicationSubmitted{Application: application})
	return &application, nil
}

// Transition moves an application to target. Without override only the next stage or a rejection is allowed.
func (s *ApplicationService) Transition(ctx context.Context, id string, target entities.Stage, override bool,
	actor security.Principal) (*entities.Application, error) {

	if !target.Valid() {
		return nil, apperr.Validation("invalid stage", map[string]string{"stage": "unknown stage " + string(target)})
	}
	if override && !actor.IsAdmin() {
		return nil, apperr.Forbidden()
	}

	application, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := application.Stage
	if from == target {
		return nil, apperr.Validation("application is already in stage "+string(target), nil)
	}
	if !override && !from.CanAdvance(target) {
		return nil, apperr.Validation("illegal stage transition from "+string(from)+" to "+string(target), nil)
	}

	now := s.now()
	if err = s.applications.TransitionStage(ctx, id, from, target, now); err != nil {
		return nil, err
	}
	metrics.StageTransitionsCounter.WithLabelValues(string(from), string(target)).Inc()

	application.Stage, application.StageChangedAt = target, now
	s.bus.Publish(events.ApplicationStageChangedTopic, events.ApplicationStageChanged{
		ApplicationID: id,
		CycleID:       application.CycleID,
		From:          from,
		To:            target,
		Override:      override,
		ActorID:       actor.ID,
	})
	return application, nil
}

func (s *ApplicationService) Get(ctx context.Context, id string) (*entities.Application, error) {
	return s.applications.GetByID(ctx, id)
}

func (s *ApplicationService) List(ctx context.Context, filter repositories.ApplicationFilter) ([]entities.Application, error) {
	if filter.Track != "" && !filter.Track.Valid() {
		return nil, apperr.Validation("invalid track", map[string]string{"track": "unknown track"})
	}
	if filter.Stage != "" && !filter.Stage.Valid() {
		return nil, apperr.Validation("invalid stage", map[string]string{"stage": "unknown stage"})
	}
	return s.applications.List(ctx, filter)
}

func (s *ApplicationService) ListMine(ctx context.Context, applicant security.Principal) ([]entities.Application, error) {
	return s.applications.ListByApplicant(ctx, applicant.ID)
}

func (s *ApplicationService) Delete(ctx context.Context, id string) error {
	return s.applications.Remove(ctx, id)
}
