package repositories

import (
	"context"
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/entities"
	"gorm.io/gorm"
	"time"
)

type SlotFilter struct {
	CycleID       string
	Kind          entities.SlotKind
	AvailableOnly bool
}

type Slots struct {
	db *gorm.DB
}

func NewSlotsRepository(db *gorm.DB) *Slots {
	return &Slots{db: db}
}

func (repo *Slots) AddMany(ctx context.Context, slots []entities.Slot) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return translate(tx.CreateInBatches(&slots, 100).Error, "slot")
	})
}

func (repo *Slots) GetByID(ctx context.Context, id string) (*entities.Slot, error) {
	var slot entities.Slot
	if err := repo.db.WithContext(ctx).First(&slot, "id = ?", id).Error; err != nil {
		return nil, translate(err, "slot")
	}
	return &slot, nil
}

func (repo *Slots) List(ctx context.Context, filter SlotFilter) ([]entities.Slot, error) {
	query := repo.db.WithContext(ctx).Model(&entities.Slot{}).Where("cycle_id = ?", filter.CycleID)
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.AvailableOnly {
		query = query.Where("booked_count < capacity")
	}

	var slots []entities.Slot
	if err := query.Order("date").Order("start_time").Order("id").Find(&slots).Error; err != nil {
		return nil, translate(err, "slot")
	}
	return slots, nil
}

// Update changes slot details. Capacity never drops below the number of existing bookings.
func (repo *Slots) Update(ctx context.Context, slot entities.Slot) error {
	res := repo.db.WithContext(ctx).Model(&entities.Slot{}).
		Where("id = ? AND booked_count <= ?", slot.ID, slot.Capacity).
		Updates(map[string]any{
			"date":       slot.Date,
			"start_time": slot.StartTime,
			"end_time":   slot.EndTime,
			"room":       slot.Room,
			"host":       slot.Host,
			"capacity":   slot.Capacity,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return translate(res.Error, "slot")
	}
	if res.RowsAffected == 0 {
		if _, err := repo.GetByID(ctx, slot.ID); err != nil {
			return err
		}
		return apperr.Conflict("capacity is below the number of bookings")
	}
	return nil
}

func (repo *Slots) Remove(ctx context.Context, id string) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bookings int64
		if err := tx.Model(&entities.SlotBooking{}).Where("slot_id = ?", id).Count(&bookings).Error; err != nil {
			return translate(err, "booking")
		}
		if bookings > 0 {
			return apperr.Conflict("slot has bookings")
		}

		res := tx.Delete(&entities.Slot{}, "id = ?", id)
		if res.Error != nil {
			return translate(res.Error, "slot")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("slot")
		}
		return nil
	})
}

// Book claims a seat with a conditional increment and records the booking in the same transaction.
func (repo *Slots) Book(ctx context.Context, booking *entities.SlotBooking) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entities.Slot{}).
			Where("id = ? AND booked_count < capacity", booking.SlotID).
			UpdateColumn("booked_count", gorm.Expr("booked_count + ?", 1))
		if res.Error != nil {
			return translate(res.Error, "slot")
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&entities.Slot{}).Where("id = ?", booking.SlotID).Count(&count).Error; err != nil {
				return translate(err, "slot")
			}
			if count == 0 {
				return apperr.NotFound("slot")
			}
			return apperr.Conflict("slot is full")
		}

		if err := tx.Create(booking).Error; err != nil {
			if isUniqueViolation(err) {
				return apperr.Conflict("a slot of this kind is already booked")
			}
			return translate(err, "booking")
		}
		return nil
	})
}

func (repo *Slots) GetBooking(ctx context.Context, id string) (*entities.SlotBooking, error) {
	var booking entities.SlotBooking
	if err := repo.db.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		return nil, translate(err, "booking")
	}
	return &booking, nil
}

// Cancel deletes the booking and gives its seat back. Nobody is promoted into the freed seat.
func (repo *Slots) Cancel(ctx context.Context, id string) (*entities.SlotBooking, error) {
	var booking entities.SlotBooking
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&booking, "id = ?", id).Error; err != nil {
			return translate(err, "booking")
		}
		return releaseBooking(tx, booking)
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (repo *Slots) ListBookingsBySlot(ctx context.Context, slotID string) ([]entities.SlotBooking, error) {
	var bookings []entities.SlotBooking
	if err := repo.db.WithContext(ctx).Order("created_at").Find(&bookings, "slot_id = ?", slotID).Error; err != nil {
		return nil, translate(err, "booking")
	}
	return bookings, nil
}

func (repo *Slots) ListBookingsByApplicant(ctx context.Context, applicantID string) ([]entities.SlotBooking, error) {
	var bookings []entities.SlotBooking
	err := repo.db.WithContext(ctx).Order("created_at").Find(&bookings, "applicant_id = ?", applicantID).Error
	if err != nil {
		return nil, translate(err, "booking")
	}
	return bookings, nil
}

func releaseBooking(tx *gorm.DB, booking entities.SlotBooking) error {
	res := tx.Delete(&entities.SlotBooking{}, "id = ?", booking.ID)
	if res.Error != nil {
		return translate(res.Error, "booking")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("booking")
	}
	return translate(tx.Model(&entities.Slot{}).
		Where("id = ? AND booked_count > 0", booking.SlotID).
		UpdateColumn("booked_count", gorm.Expr("booked_count - ?", 1)).Error, "slot")
}
