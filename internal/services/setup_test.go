package services

import (
	"context"
	"fmt"
	"github.com/asaskevich/EventBus"
	"github.com/google/uuid"
	"github.com/maxaizer/club-portal/internal/config"
	"github.com/maxaizer/club-portal/internal/entities"
	"github.com/maxaizer/club-portal/internal/repositories"
	"github.com/maxaizer/club-portal/internal/security"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

var (
	testAdmin     = security.Principal{ID: "admin-1", Email: "admin@club.org", Admin: true}
	testApplicant = security.Principal{ID: "user-1", Email: "Student@Uni.edu", Name: "Student"}
)

type testEnv struct {
	bus          EventBus.Bus
	cycles       *repositories.Cycles
	applications *repositories.Applications
	questions    *repositories.Questions
	phases       *repositories.Phases
	slots        *repositories.Slots
	audit        *repositories.Audit
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbCtx, err := repositories.NewDbContext(config.DBConfig{
		Driver:           config.DriverSQLite,
		ConnectionString: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns:     1,
		MaxIdleConns:     1,
	})
	require.NoError(t, err)
	require.NoError(t, dbCtx.Migrate())
	t.Cleanup(func() {
		_ = dbCtx.Close()
	})

	return &testEnv{
		bus:          EventBus.New(),
		cycles:       repositories.NewCyclesRepository(dbCtx.DB),
		applications: repositories.NewApplicationsRepository(dbCtx.DB),
		questions:    repositories.NewQuestionsRepository(dbCtx.DB),
		phases:       repositories.NewPhasesRepository(dbCtx.DB),
		slots:        repositories.NewSlotsRepository(dbCtx.DB),
		audit:        repositories.NewAuditRepository(dbCtx.DB),
	}
}

func cycleWindow(name string, openAt, closeAt time.Time) entities.Cycle {
	return entities.Cycle{Name: name, PortalOpenAt: openAt, PortalCloseAt: closeAt}
}

func (env *testEnv) openCycle(t *testing.T) entities.Cycle {
	t.Helper()
	cycle := cycleWindow("Fall 2026", testNow.Add(-24*time.Hour), testNow.Add(24*time.Hour))
	require.NoError(t, env.cycles.Add(context.Background(), &cycle))
	return cycle
}

func (env *testEnv) cycleService() *CycleService {
	s := NewCycleService(env.bus, env.cycles)
	s.now = func() time.Time { return testNow }
	return s
}

func (env *testEnv) applicationService() *ApplicationService {
	s := NewApplicationService(env.bus, env.applications, env.cycleService(),
		NewQuestionService(env.bus, env.questions, env.cycles))
	s.now = func() time.Time { return testNow }
	return s
}

func (env *testEnv) phaseService() *PhaseService {
	s := NewPhaseService(env.bus, env.phases, env.applications, env.cycles)
	s.now = func() time.Time { return testNow }
	return s
}

func (env *testEnv) addApplication(t *testing.T, cycleID, applicantID string, stage entities.Stage,
	submittedAt time.Time) entities.Application {

	t.Helper()
	application := entities.Application{
		CycleID:     cycleID,
		ApplicantID: applicantID,
		Email:       applicantID + "@uni.edu",
		Name:        applicantID,
		Track:       entities.TrackTechnical,
		Stage:       stage,
		SubmittedAt: submittedAt,
	}
	require.NoError(t, env.applications.Add(context.Background(), &application))
	return application
}

func asReviewer(principal security.Principal, id string) security.Principal {
	principal.ID = id
	return principal
}
