package services

import (
	"context"
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/entities"
	"github.com/maxaizer/club-portal/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func Test_Submit_WhenCycleIsOpen_ShouldStoreSubmittedApplication(t *testing.T) {
	env := newTestEnv(t)
	cycle := env.openCycle(t)
	service := env.applicationService()

	var published []events.ApplicationSubmitted
	require.NoError(t, env.bus.Subscribe(events.ApplicationSubmittedTopic, func(e events.ApplicationSubmitted) {
		published = append(published, e)
	}))

	application, err := service.Submit(context.Background(), testApplicant, SubmitApplicationRequest{
		Track: entities.TrackTechnical,
		Name:  "  Student  ",
	})

	require.NoError(t, err)
	assert.Equal(t, cycle.ID, application.CycleID)
	assert.Equal(t, entities.StageSubmitted, application.Stage)
	assert.Equal(t, "student@uni.edu", application.Email)
	assert.Equal(t, "Student", application.Name)
	assert.Equal(t, testNow, application.SubmittedAt)
	require.Len(t, published, 1)
	assert.Equal(t, application.ID, published[0].Application.ID)
}

func Test_Submit_WhenNoCycleIsOpen_ShouldFailValidation(t *testing.T) {
	env := newTestEnv(t)
	service := env.applicationService()

	_, err := service.Submit(context.Background(), testApplicant, SubmitApplicationRequest{
		Track: entities.TrackTechnical,
		Name:  "Student",
	})

	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}

func Test_Submit_WhenDeadlinePassed_ShouldFailValidation(t *testing.T) {
	env := newTestEnv(t)
	due := testNow.Add(-time.Hour)
	cycle := entities.Cycle{
		Name:             "Late",
		PortalOpenAt:     testNow.Add(-24 * time.Hour),
		PortalCloseAt:    testNow.Add(24 * time.Hour),
		ApplicationDueAt: &due,
	}
	require.NoError(t, env.cycles.Add(context.Background(), &cycle))

	_, err := env.applicationService().Submit(context.Background(), testApplicant, SubmitApplicationRequest{
		Track: entities.TrackTechnical,
		Name:  "Student",
	})

	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}

func Test_Submit_WhenAppliedTwiceToSameTrack_ShouldConflict(t *testing.T) {
	env := newTestEnv(t)
	env.openCycle(t)
	service := env.applicationService()
	request := SubmitApplicationRequest{Track: entities.TrackBusiness, Name: "Student"}

	_, err := service.Submit(context.Background(), testApplicant, request)
	require.NoError(t, err)
	_, err = service.Submit(context.Background(), testApplicant, request)

	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))
}

func Test_Submit_WhenRequiredAnswerMissing_ShouldReportField(t *testing.T) {
	env := newTestEnv(t)
	cycle := env.openCycle(t)
	_, err := env.questions.Upsert(context.Background(), entities.QuestionSet{
		CycleID: cycle.ID,
		Track:   entities.TrackBoth,
		Questions: []entities.Question{
			{ID: "why", Prompt: "Why us?", Kind: entities.QuestionLongText, Required: true},
		},
	})
	require.NoError(t, err)

	_, err = env.applicationService().Submit(context.Background(), testApplicant, SubmitApplicationRequest{
		Track:     entities.TrackTechnical,
		Name:      "Student",
		Responses: map[string]any{},
	})

	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Fields, "why")
}

func Test_Transition_WhenMovingToNextStage_ShouldSucceedAndPublish(t *testing.T) {
	env := newTestEnv(t)
	cycle := env.openCycle(t)
	application := env.addApplication(t, cycle.ID, "user-1", entities.StageSubmitted, testNow)

	var changes []events.ApplicationStageChanged
	require.NoError(t, env.bus.Subscribe(events.ApplicationStageChangedTopic, func(e events.ApplicationStageChanged) {
		changes = append(changes, e)
	}))

	updated, err := env.applicationService().Transition(context.Background(), application.ID,
		entities.StagePhase1Review, false, testAdmin)

	require.NoError(t, err)
	assert.Equal(t, entities.StagePhase1Review, updated.Stage)
	require.Len(t, changes, 1)
	assert.Equal(t, entities.StageSubmitted, changes[0].From)
	assert.Equal(t, entities.StagePhase1Review, changes[0].To)
	assert.Equal(t, testAdmin.ID, changes[0].ActorID)
}

func Test_Transition_WhenSkippingStages_ShouldFailValidation(t *testing.T) {
	env := newTestEnv(t)
	cycle := env.openCycle(t)
	application := env.addApplication(t, cycle.ID, "user-1", entities.StageSubmitted, testNow)

	_, err := env.applicationService().Transition(context.Background(), application.ID,
		entities.StageInterview, false, testAdmin)

	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	stored, err := env.applications.GetByID(context.Background(), application.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StageSubmitted, stored.Stage)
}

func Test_Transition_WhenRejectingFromAnyOpenStage_ShouldSucceed(t *testing.T) {
	env := newTestEnv(t)
	cycle := env.openCycle(t)
	application := env.addApplication(t, cycle.ID, "user-1", entities.StagePhase2Review, testNow)

	updated, err := env.applicationService().Transition(context.Background(), application.ID,
		entities.StageRejected, false, testAdmin)

	require.NoError(t, err)
	assert.Equal(t, entities.StageRejected, updated.Stage)
}

func Test_Transition_WhenApplicationIsTerminal_ShouldRequireOverride(t *testing.T) {
	env := newTestEnv(t)
	cycle := env.openCycle(t)
	application := env.addApplication(t, cycle.ID, "user-1", entities.StageRejected, testNow)
	service := env.applicationService()

	_, err := service.Transition(context.Background(), application.ID, entities.StagePhase1Review, false, testAdmin)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	updated, err := service.Transition(context.Background(), application.ID, entities.StagePhase1Review, true, testAdmin)
	require.NoError(t, err)
	assert.Equal(t, entities.StagePhase1Review, updated.Stage)
}

func Test_Transition_WhenOverrideByNonAdmin_ShouldBeForbidden(t *testing.T) {
	env := newTestEnv(t)
	cycle := env.openCycle(t)
	application := env.addApplication(t, cycle.ID, "user-1", entities.StageSubmitted, testNow)

	_, err := env.applicationService().Transition(context.Background(), application.ID,
		entities.StageAccepted, true, testApplicant)

	assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))
}

func Test_Transition_WhenTargetEqualsCurrentStage_ShouldFailValidation(t *testing.T) {
	env := newTestEnv(t)
	cycle := env.openCycle(t)
	application := env.addApplication(t, cycle.ID, "user-1", entities.StageInterview, testNow)

	_, err := env.applicationService().Transition(context.Background(), application.ID,
		entities.StageInterview, true, testAdmin)

	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
}

func Test_Transition_WhenApplicationMissing_ShouldReturnNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.applicationService().Transition(context.Background(), "missing", entities.StageRejected, false, testAdmin)

	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}
