package services

import (
	"context"
	"encoding/json"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/entities"
	"github.com/maxaizer/club-portal/internal/events"
	"github.com/maxaizer/club-portal/internal/security"
	"regexp"
)

var contentKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_\-]{0,127}$`)

type contentRepository interface {
	Load(ctx context.Context, key string) (*entities.ContentBlock, error)
	List(ctx context.Context) ([]entities.ContentBlock, error)
	Save(ctx context.Context, key string, body []byte, expectedVersion int, updatedBy string) (*entities.ContentBlock, error)
	Remove(ctx context.Context, key string) error
}

type ContentService struct {
	bus     EventBus.Bus
	content contentRepository
}

func NewContentService(bus EventBus.Bus, content contentRepository) *ContentService {
	return &ContentService{bus: bus, content: content}
}

func (s *ContentService) Get(ctx context.Context, key string) (*entities.ContentBlock, error) {
	return s.content.Load(ctx, key)
}

func (s *ContentService) List(ctx context.Context) ([]entities.ContentBlock, error) {
	return s.content.List(ctx)
}

// Put stores a new body for key. A positive expectedVersion turns the write into compare-and-swap.
func (s *ContentService) Put(ctx context.Context, key string, body json.RawMessage, expectedVersion int,
	actor security.Principal) (*entities.ContentBlock, error) {

	fields := map[string]string{}
	if !contentKeyPattern.MatchString(key) {
		fields["key"] = "must be lowercase letters, digits, dashes or underscores"
	}
	if len(body) == 0 || !json.Valid(body) {
		fields["body"] = "must be valid json"
	}
	if len(fields) > 0 {
		return nil, apperr.Validation("invalid content", fields)
	}

	block, err := s.content.Save(ctx, key, body, expectedVersion, actor.Email)
	if err != nil {
		return nil, err
	}
	s.bus.Publish(events.ContentChangedTopic, events.ContentChanged{Block: *block})
	return block, nil
}

func (s *ContentService) Delete(ctx context.Context, key string) error {
	return s.content.Remove(ctx, key)
}
