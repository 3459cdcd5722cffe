package repositories

import (
	"context"
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/entities"
	gocache "github.com/patrickmn/go-cache"
	"time"
)

type settingsRepository interface {
	Get(ctx context.Context, key string) (*entities.Setting, error)
}

// CachedSettings is a read-through cache in front of the settings table.
// A missing key is cached like a value; other errors are never cached.
type CachedSettings struct {
	repo  settingsRepository
	cache *gocache.Cache
}

func NewCachedSettings(repo settingsRepository, ttl time.Duration) *CachedSettings {
	return &CachedSettings{repo: repo, cache: gocache.New(ttl, 2*ttl)}
}

// cachedSetting holds nil when the key is absent from the table.
type cachedSetting struct {
	setting *entities.Setting
}

func (c *CachedSettings) Get(ctx context.Context, key string) (*entities.Setting, error) {
	if value, found := c.cache.Get(key); found {
		entry := value.(cachedSetting)
		if entry.setting == nil {
			return nil, apperr.NotFound("setting")
		}
		setting := *entry.setting
		return &setting, nil
	}

	setting, err := c.repo.Get(ctx, key)
	if apperr.Is(err, apperr.CodeNotFound) {
		c.cache.SetDefault(key, cachedSetting{})
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	stored := *setting
	c.cache.SetDefault(key, cachedSetting{setting: &stored})
	return setting, nil
}

func (c *CachedSettings) Invalidate(key string) {
	c.cache.Delete(key)
}
