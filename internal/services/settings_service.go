package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/club-portal/internal/entities"
	"github.com/maxaizer/club-portal/internal/events"
	"github.com/maxaizer/club-portal/internal/security"
	"strings"
)

type settingsRepository interface {
	List(ctx context.Context) ([]entities.Setting, error)
	Put(ctx context.Context, setting *entities.Setting) error
}

type settingsCache interface {
	Get(ctx context.Context, key string) (*entities.Setting, error)
	Invalidate(key string)
}

type SettingsService struct {
	bus      EventBus.Bus
	settings settingsRepository
	cache    settingsCache
}

// NewSettingsService keeps the cache coherent by dropping entries on every SettingChanged event.
func NewSettingsService(bus EventBus.Bus, settings settingsRepository, cache settingsCache) (*SettingsService, error) {
	s := &SettingsService{bus: bus, settings: settings, cache: cache}
	if err := bus.Subscribe(events.SettingChangedTopic, s.onSettingChanged); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SettingsService) onSettingChanged(event events.SettingChanged) {
	s.cache.Invalidate(event.Setting.Key)
}

func (s *SettingsService) Get(ctx context.Context, key string) (*entities.Setting, error) {
	return s.cache.Get(ctx, key)
}

func (s *SettingsService) List(ctx context.Context) ([]entities.Setting, error) {
	return s.settings.List(ctx)
}

func (s *SettingsService) Put(ctx context.Context, setting entities.Setting, actor security.Principal) (*entities.Setting, error) {
	setting.Key = strings.TrimSpace(setting.Key)
	if setting.Type == entities.SettingBoolean {
		setting.Value = strings.ToLower(strings.TrimSpace(setting.Value))
	}
	setting.UpdatedBy = actor.Email
	if setting.UpdatedBy == "" {
		setting.UpdatedBy = actor.ID
	}
	if err := setting.Validate(); err != nil {
		return nil, err
	}
	if err := s.settings.Put(ctx, &setting); err != nil {
		return nil, err
	}

	s.bus.Publish(events.SettingChangedTopic, events.SettingChanged{Setting: setting})
	return &setting, nil
}
