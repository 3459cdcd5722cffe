package services

import (
	"context"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

type mockCycleCloser struct {
	mock.Mock
}

func (m *mockCycleCloser) SweepExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func Test_NewCycleSweeper_WhenScheduleInvalid_ShouldFail(t *testing.T) {
	_, err := NewCycleSweeper(new(mockCycleCloser), "every minute")
	assert.Error(t, err)

	_, err = NewCycleSweeper(new(mockCycleCloser), "")
	assert.Error(t, err)
}

func Test_CycleSweeper_Sweep_ShouldCloseExpiredCycles(t *testing.T) {
	closer := new(mockCycleCloser)
	closer.On("SweepExpired", mock.Anything).Return(int64(2), nil).Once()
	closer.On("SweepExpired", mock.Anything).Return(int64(0), errors.New("db down")).Once()

	sweeper, err := NewCycleSweeper(closer, "*/5 * * * *")
	require.NoError(t, err)

	sweeper.Sweep()
	sweeper.Sweep()

	closer.AssertNumberOfCalls(t, "SweepExpired", 2)
}

func Test_CycleService_SweepExpired_ShouldCloseOnlyFinishedWindows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	open := env.openCycle(t)
	service := env.cycleService()
	expired, err := service.Create(ctx, cycleWindow("Spring", testNow.Add(-72*time.Hour), testNow.Add(-time.Hour)), testAdmin)
	require.NoError(t, err)

	closed, err := service.SweepExpired(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(1), closed)
	stored, err := service.Get(ctx, expired.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.ClosedAt)
	stored, err = service.Get(ctx, open.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ClosedAt)
}
