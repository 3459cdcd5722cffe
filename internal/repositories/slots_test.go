package repositories

import (
	"context"
	"fmt"
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
)

func addSlot(t *testing.T, repo *Slots, capacity int) entities.Slot {
	slots := []entities.Slot{{
		CycleID: "c1", Kind: entities.SlotInterview, Date: "2026-09-10",
		StartTime: "10:00", EndTime: "10:30", Capacity: capacity,
	}}
	require.NoError(t, repo.AddMany(context.Background(), slots))
	return slots[0]
}

func Test_Slots_Book_WhenConcurrent_ShouldNeverExceedCapacity(t *testing.T) {
	repo := NewSlotsRepository(newTestDb(t).DB)
	const capacity, requests = 3, 12
	slot := addSlot(t, repo, capacity)

	var wg sync.WaitGroup
	results := make(chan error, requests)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results <- repo.Book(context.Background(), &entities.SlotBooking{
				SlotID: slot.ID, CycleID: slot.CycleID, Kind: slot.Kind, ApplicantID: fmt.Sprintf("u%d", i),
			})
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case apperr.Is(err, apperr.CodeConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, capacity, succeeded)
	assert.Equal(t, requests-capacity, conflicts)

	stored, err := repo.GetByID(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Equal(t, capacity, stored.BookedCount)

	bookings, err := repo.ListBookingsBySlot(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Len(t, bookings, capacity)
}

func Test_Slots_Book_WhenLastSeatTakenAfterRead_ShouldConflict(t *testing.T) {
	dbCtx := newTestDb(t)
	repo := NewSlotsRepository(dbCtx.DB)
	ctx := context.Background()
	slot := addSlot(t, repo, 1)

	raced := interleaveBeforeUpdate(t, dbCtx.DB, "slots",
		"UPDATE slots SET booked_count = capacity WHERE id = ?", slot.ID)

	err := repo.Book(ctx, &entities.SlotBooking{
		SlotID: slot.ID, CycleID: slot.CycleID, Kind: slot.Kind, ApplicantID: "u1",
	})

	assert.True(t, *raced)
	assert.True(t, apperr.Is(err, apperr.CodeConflict), "got %v", err)
	bookings, err := repo.ListBookingsBySlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func Test_Slots_Book_WhenSameApplicantBooksTwice_ShouldConflictAndKeepCount(t *testing.T) {
	repo := NewSlotsRepository(newTestDb(t).DB)
	ctx := context.Background()
	first, second := addSlot(t, repo, 2), addSlot(t, repo, 2)

	require.NoError(t, repo.Book(ctx, &entities.SlotBooking{SlotID: first.ID, CycleID: "c1",
		Kind: entities.SlotInterview, ApplicantID: "u1"}))
	err := repo.Book(ctx, &entities.SlotBooking{SlotID: second.ID, CycleID: "c1",
		Kind: entities.SlotInterview, ApplicantID: "u1"})

	assert.True(t, apperr.Is(err, apperr.CodeConflict))
	stored, _ := repo.GetByID(ctx, second.ID)
	assert.Equal(t, 0, stored.BookedCount)
}

func Test_Slots_Book_WhenSlotMissing_ShouldBeNotFound(t *testing.T) {
	repo := NewSlotsRepository(newTestDb(t).DB)

	err := repo.Book(context.Background(), &entities.SlotBooking{SlotID: "missing", CycleID: "c1",
		Kind: entities.SlotInterview, ApplicantID: "u1"})

	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func Test_Slots_Cancel_ShouldReleaseSeatWithoutPromotion(t *testing.T) {
	repo := NewSlotsRepository(newTestDb(t).DB)
	ctx := context.Background()
	slot := addSlot(t, repo, 1)

	booking := &entities.SlotBooking{SlotID: slot.ID, CycleID: "c1", Kind: entities.SlotInterview, ApplicantID: "u1"}
	require.NoError(t, repo.Book(ctx, booking))
	assert.True(t, apperr.Is(repo.Book(ctx, &entities.SlotBooking{SlotID: slot.ID, CycleID: "c1",
		Kind: entities.SlotInterview, ApplicantID: "u2"}), apperr.CodeConflict))

	_, err := repo.Cancel(ctx, booking.ID)
	require.NoError(t, err)

	stored, _ := repo.GetByID(ctx, slot.ID)
	assert.Equal(t, 0, stored.BookedCount)
	bookings, _ := repo.ListBookingsBySlot(ctx, slot.ID)
	assert.Empty(t, bookings)

	_, err = repo.Cancel(ctx, booking.ID)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func Test_Slots_Update_WhenCapacityBelowBookings_ShouldConflict(t *testing.T) {
	repo := NewSlotsRepository(newTestDb(t).DB)
	ctx := context.Background()
	slot := addSlot(t, repo, 2)
	require.NoError(t, repo.Book(ctx, &entities.SlotBooking{SlotID: slot.ID, CycleID: "c1",
		Kind: entities.SlotInterview, ApplicantID: "u1"}))
	require.NoError(t, repo.Book(ctx, &entities.SlotBooking{SlotID: slot.ID, CycleID: "c1",
		Kind: entities.SlotInterview, ApplicantID: "u2"}))

	slot.Capacity = 1
	assert.True(t, apperr.Is(repo.Update(ctx, slot), apperr.CodeConflict))
	assert.True(t, apperr.Is(repo.Remove(ctx, slot.ID), apperr.CodeConflict))

	slot.Capacity = 4
	assert.NoError(t, repo.Update(ctx, slot))
}
