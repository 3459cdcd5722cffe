package services

import (
	"context"
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/entities"
	"github.com/maxaizer/club-portal/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func seedSlot(t *testing.T, service *SlotService, cycleID string, kind entities.SlotKind, capacity int) entities.Slot {
	t.Helper()
	slots, err := service.Seed(context.Background(), cycleID, []entities.Slot{
		{Kind: kind, Date: "2026-09-10", StartTime: "10:00", EndTime: "10:30", Capacity: capacity},
	})
	require.NoError(t, err)
	return slots[0]
}

func Test_Book_WhenInterviewSlotAndApplicantNotInvited_ShouldBeForbidden(t *testing.T) {
	env := newTestEnv(t)
	cycle := env.openCycle(t)
	env.addApplication(t, cycle.ID, testApplicant.ID, entities.StagePhase2Review, testNow)
	service := NewSlotService(env.bus, env.slots, env.applications, env.cycles)
	slot := seedSlot(t, service, cycle.ID, entities.SlotInterview, 2)

	_, err := service.Book(context.Background(), slot.ID, testApplicant)

	assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))
}

func Test_Book_WhenInterviewSlotAndApplicantInvited_ShouldLinkApplication(t *testing.T) {
	env := newTestEnv(t)
	cycle := env.openCycle(t)
	application := env.addApplication(t, cycle.ID, testApplicant.ID, entities.StageInterview, testNow)
	service := NewSlotService(env.bus, env.slots, env.applications, env.cycles)
	slot := seedSlot(t, service, cycle.ID, entities.SlotInterview, 2)

	var booked []events.SlotBooked
	require.NoError(t, env.bus.Subscribe(events.SlotBookedTopic, func(e events.SlotBooked) {
		booked = append(booked, e)
	}))

	booking, err := service.Book(context.Background(), slot.ID, testApplicant)

	require.NoError(t, err)
	assert.Equal(t, application.ID, booking.ApplicationID)
	assert.Len(t, booked, 1)
	stored, err := service.Get(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.BookedCount)
}

func Test_Book_WhenSlotIsFull_ShouldConflict(t *testing.T) {
	env := newTestEnv(t)
	cycle := env.openCycle(t)
	service := NewSlotService(env.bus, env.slots, env.applications, env.cycles)
	slot := seedSlot(t, service, cycle.ID, entities.SlotCoffeeChat, 1)

	_, err := service.Book(context.Background(), slot.ID, testApplicant)
	require.NoError(t, err)
	_, err = service.Book(context.Background(), slot.ID, asReviewer(testApplicant, "user-2"))

	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))
}

func Test_Cancel_WhenNotOwner_ShouldBeForbidden(t *testing.T) {
	env := newTestEnv(t)
	cycle := env.openCycle(t)
	service := NewSlotService(env.bus, env.slots, env.applications, env.cycles)
	slot := seedSlot(t, service, cycle.ID, entities.SlotCoffeeChat, 1)
	booking, err := service.Book(context.Background(), slot.ID, testApplicant)
	require.NoError(t, err)

	_, err = service.Cancel(context.Background(), booking.ID, asReviewer(testApplicant, "user-2"))
	assert.Equal(t, apperr.CodeForbidden, apperr.CodeOf(err))

	_, err = service.Cancel(context.Background(), booking.ID, testAdmin)
	require.NoError(t, err)
	stored, err := service.Get(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.BookedCount)
}

func Test_Seed_WhenOneSlotInvalid_ShouldCreateNone(t *testing.T) {
	env := newTestEnv(t)
	cycle := env.openCycle(t)
	service := NewSlotService(env.bus, env.slots, env.applications, env.cycles)

	_, err := service.Seed(context.Background(), cycle.ID, []entities.Slot{
		{Kind: entities.SlotCoffeeChat, Date: "2026-09-10", StartTime: "10:00", EndTime: "10:30", Capacity: 1},
		{Kind: entities.SlotCoffeeChat, Date: "2026-09-10", StartTime: "11:00", EndTime: "10:30", Capacity: 1},
	})

	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	slots, err := service.List(context.Background(), cycle.ID, "", false)
	require.NoError(t, err)
	assert.Empty(t, slots)
}
