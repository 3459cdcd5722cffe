package repositories

import (
	"context"
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/entities"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

type mockSettings struct {
	mock.Mock
}

func (m *mockSettings) Get(ctx context.Context, key string) (*entities.Setting, error) {
	args := m.Called(ctx, key)
	setting, _ := args.Get(0).(*entities.Setting)
	return setting, args.Error(1)
}

func Test_Settings_Put_ShouldUpsertByKey(t *testing.T) {
	repo := NewSettingsRepository(newTestDb(t).DB)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, &entities.Setting{Key: entities.MaintenanceModeKey, Value: "false",
		Type: entities.SettingBoolean}))
	require.NoError(t, repo.Put(ctx, &entities.Setting{Key: entities.MaintenanceModeKey, Value: "true",
		Type: entities.SettingBoolean, UpdatedBy: "admin"}))

	settings, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, settings, 1)
	assert.Equal(t, "true", settings[0].Value)
	assert.Equal(t, "admin", settings[0].UpdatedBy)
}

func Test_CachedSettings_ShouldHitRepositoryOnceUntilInvalidated(t *testing.T) {
	repo := &mockSettings{}
	ctx := context.Background()
	repo.On("Get", ctx, "k").Return(&entities.Setting{Key: "k", Value: "v"}, nil).Twice()

	cached := NewCachedSettings(repo, time.Minute)

	for i := 0; i < 3; i++ {
		setting, err := cached.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v", setting.Value)
	}
	cached.Invalidate("k")
	_, err := cached.Get(ctx, "k")
	require.NoError(t, err)

	repo.AssertNumberOfCalls(t, "Get", 2)
}

func Test_CachedSettings_WhenRepositoryFails_ShouldNotCacheError(t *testing.T) {
	repo := &mockSettings{}
	ctx := context.Background()
	repo.On("Get", ctx, "k").Return(nil, errors.New("database is locked")).Once()
	repo.On("Get", ctx, "k").Return(&entities.Setting{Key: "k", Value: "v"}, nil).Once()

	cached := NewCachedSettings(repo, time.Minute)

	_, err := cached.Get(ctx, "k")
	assert.Error(t, err)
	setting, err := cached.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", setting.Value)
}

func Test_CachedSettings_WhenKeyMissing_ShouldCacheAbsenceUntilInvalidated(t *testing.T) {
	repo := &mockSettings{}
	ctx := context.Background()
	repo.On("Get", ctx, "k").Return(nil, apperr.NotFound("setting")).Once()
	repo.On("Get", ctx, "k").Return(&entities.Setting{Key: "k", Value: "v"}, nil).Once()

	cached := NewCachedSettings(repo, time.Minute)

	for i := 0; i < 3; i++ {
		_, err := cached.Get(ctx, "k")
		assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	}
	repo.AssertNumberOfCalls(t, "Get", 1)

	cached.Invalidate("k")
	setting, err := cached.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", setting.Value)
	repo.AssertNumberOfCalls(t, "Get", 2)
}

func Test_Content_Save_ShouldBumpVersion(t *testing.T) {
	repo := NewContentRepository(newTestDb(t).DB)
	ctx := context.Background()

	first, err := repo.Save(ctx, "member_levels", []byte(`{"levels":[]}`), 0, "admin")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)

	second, err := repo.Save(ctx, "member_levels", []byte(`{"levels":["member"]}`), 1, "admin")
	require.NoError(t, err)
	assert.Equal(t, 2, second.Version)
	assert.JSONEq(t, `{"levels":["member"]}`, string(second.Body))

	_, err = repo.Save(ctx, "member_levels", []byte(`{}`), 1, "admin")
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
}
