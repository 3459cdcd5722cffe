package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/entities"
	"github.com/maxaizer/club-portal/internal/events"
	"github.com/maxaizer/club-portal/internal/security"
)

type questionRepository interface {
	Upsert(ctx context.Context, set entities.QuestionSet) (*entities.QuestionSet, error)
	Get(ctx context.Context, cycleID string, track entities.Track) (*entities.QuestionSet, error)
	ListByCycle(ctx context.Context, cycleID string) ([]entities.QuestionSet, error)
	Remove(ctx context.Context, cycleID string, track entities.Track) error
}

type cycleGetter interface {
	GetByID(ctx context.Context, id string) (*entities.Cycle, error)
}

type QuestionService struct {
	bus       EventBus.Bus
	questions questionRepository
	cycles    cycleGetter
}

func NewQuestionService(bus EventBus.Bus, questions questionRepository, cycles cycleGetter) *QuestionService {
	return &QuestionService{bus: bus, questions: questions, cycles: cycles}
}

// GetByCycle returns the track's own question set and falls back to the shared one.
func (s *QuestionService) GetByCycle(ctx context.Context, cycleID string, track entities.Track) (*entities.QuestionSet, error) {
	if track == "" {
		track = entities.TrackBoth
	}
	if !track.Valid() {
		return nil, apperr.Validation("invalid track", map[string]string{"track": "must be technical, business or both"})
	}

	set, err := s.questions.Get(ctx, cycleID, track)
	if err == nil || !apperr.Is(err, apperr.CodeNotFound) || track == entities.TrackBoth {
		return set, err
	}
	return s.questions.Get(ctx, cycleID, entities.TrackBoth)
}

func (s *QuestionService) List(ctx context.Context, cycleID string) ([]entities.QuestionSet, error) {
	return s.questions.ListByCycle(ctx, cycleID)
}

func (s *QuestionService) Upsert(ctx context.Context, set entities.QuestionSet, actor security.Principal) (*entities.QuestionSet, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.cycles.GetByID(ctx, set.CycleID); err != nil {
		return nil, err
	}
	saved, err := s.questions.Upsert(ctx, set)
	if err != nil {
		return nil, err
	}
	s.bus.Publish(events.QuestionsChangedTopic, events.QuestionsChanged{Set: *saved, ActorID: actor.ID})
	return saved, nil
}

func (s *QuestionService) Delete(ctx context.Context, cycleID string, track entities.Track) error {
	return s.questions.Remove(ctx, cycleID, track)
}
