package services

import (
	"context"
	"encoding/json"
	"github.com/maxaizer/club-portal/internal/entities"
	"github.com/maxaizer/club-portal/internal/events"
	"github.com/maxaizer/club-portal/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func Test_AuditRecorder_ShouldPersistPublishedEvents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	recorder := NewAuditRecorder(env.bus, env.audit)
	require.NoError(t, recorder.Start())
	defer recorder.Stop()

	cycle, err := env.cycleService().Create(ctx,
		cycleWindow("Fall", testNow.Add(-24 * time.Hour), testNow.Add(24 * time.Hour)), testAdmin)
	require.NoError(t, err)
	application := env.addApplication(t, cycle.ID, "user-1", entities.StageSubmitted, testNow)
	_, err = env.applicationService().Transition(ctx, application.ID, entities.StageRejected, false, testAdmin)
	require.NoError(t, err)
	recorder.Flush()

	entries, err := recorder.List(ctx, repositories.AuditFilter{Subject: application.ID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "application.stage_changed", entries[0].Action)
	assert.Equal(t, testAdmin.ID, entries[0].ActorID)

	var detail map[string]any
	require.NoError(t, json.Unmarshal(entries[0].Detail, &detail))
	assert.Equal(t, string(entities.StageRejected), detail["To"])

	created, err := recorder.List(ctx, repositories.AuditFilter{Action: "cycle.created"})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, cycle.ID, created[0].Subject)
}

func Test_AuditRecorder_WhenStopped_ShouldIgnoreEvents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	recorder := NewAuditRecorder(env.bus, env.audit)
	require.NoError(t, recorder.Start())
	recorder.Stop()

	_, err := env.cycleService().Create(ctx,
		cycleWindow("Fall", testNow.Add(-24 * time.Hour), testNow.Add(24 * time.Hour)), testAdmin)
	require.NoError(t, err)

	entries, err := recorder.List(ctx, repositories.AuditFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

type mockAuditRepository struct {
	mock.Mock
}

func (m *mockAuditRepository) Add(ctx context.Context, entry *entities.AuditEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockAuditRepository) List(ctx context.Context, filter repositories.AuditFilter) ([]entities.AuditEntry, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]entities.AuditEntry), args.Error(1)
}

func Test_AuditRecorder_WhenInsertIsSlow_ShouldNotBlockPublisher(t *testing.T) {
	env := newTestEnv(t)
	release := make(chan struct{})
	audit := &mockAuditRepository{}
	audit.On("Add", mock.Anything, mock.MatchedBy(func(entry *entities.AuditEntry) bool {
		return entry.Action == "setting.changed"
	})).Run(func(mock.Arguments) { <-release }).Return(nil).Once()

	recorder := NewAuditRecorder(env.bus, audit)
	require.NoError(t, recorder.Start())

	published := make(chan struct{})
	go func() {
		env.bus.Publish(events.SettingChangedTopic, events.SettingChanged{
			Setting: entities.Setting{Key: entities.MaintenanceModeKey, Value: "true", UpdatedBy: testAdmin.ID},
		})
		close(published)
	}()

	select {
	case <-published:
	case <-time.After(2 * time.Second):
		t.Fatal("publish waited for the audit insert")
	}

	close(release)
	recorder.Stop()
	audit.AssertExpectations(t)
}
