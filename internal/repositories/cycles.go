package repositories

import (
	"context"
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/entities"
	"gorm.io/gorm"
	"time"
)

type Cycles struct {
	db *gorm.DB
}

func NewCyclesRepository(db *gorm.DB) *Cycles {
	return &Cycles{db: db}
}

func (repo *Cycles) Add(ctx context.Context, cycle *entities.Cycle) error {
	return translate(repo.db.WithContext(ctx).Create(cycle).Error, "cycle")
}

func (repo *Cycles) Update(ctx context.Context, cycle entities.Cycle) error {
	res := repo.db.WithContext(ctx).Model(&entities.Cycle{}).Where("id = ?", cycle.ID).
		Updates(map[string]any{
			"name":               cycle.Name,
			"portal_open_at":     cycle.PortalOpenAt,
			"portal_close_at":    cycle.PortalCloseAt,
			"application_due_at": cycle.ApplicationDueAt,
			"updated_at":         time.Now().UTC(),
		})
	if res.Error != nil {
		return translate(res.Error, "cycle")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("cycle")
	}
	return nil
}

func (repo *Cycles) GetByID(ctx context.Context, id string) (*entities.Cycle, error) {
	var cycle entities.Cycle
	if err := repo.db.WithContext(ctx).First(&cycle, "id = ?", id).Error; err != nil {
		return nil, translate(err, "cycle")
	}
	return &cycle, nil
}

func (repo *Cycles) List(ctx context.Context) ([]entities.Cycle, error) {
	var cycles []entities.Cycle
	if err := repo.db.WithContext(ctx).Order("portal_open_at DESC").Find(&cycles).Error; err != nil {
		return nil, translate(err, "cycle")
	}
	return cycles, nil
}

// GetActive returns the open cycle for now. The flagged cycle wins, then the most recently opened one.
func (repo *Cycles) GetActive(ctx context.Context, now time.Time) (*entities.Cycle, error) {
	var cycle entities.Cycle
	err := repo.db.WithContext(ctx).
		Where("portal_open_at <= ? AND portal_close_at > ? AND closed_at IS NULL", now, now).
		Order("active DESC").
		Order("portal_open_at DESC").
		First(&cycle).Error
	if err != nil {
		return nil, translate(err, "active cycle")
	}
	return &cycle, nil
}

func (repo *Cycles) GetUpcoming(ctx context.Context, now time.Time) (*entities.Cycle, error) {
	var cycle entities.Cycle
	err := repo.db.WithContext(ctx).
		Where("portal_open_at > ? AND closed_at IS NULL", now).
		Order("portal_open_at ASC").
		First(&cycle).Error
	if err != nil {
		return nil, translate(err, "upcoming cycle")
	}
	return &cycle, nil
}

// Activate flags one cycle as active and clears the flag everywhere else.
func (repo *Cycles) Activate(ctx context.Context, id string) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entities.Cycle{}).Where("id = ?", id).Update("active", true)
		if res.Error != nil {
			return translate(res.Error, "cycle")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("cycle")
		}
		return tx.Model(&entities.Cycle{}).Where("id <> ? AND active = ?", id, true).
			Update("active", false).Error
	})
}

func (repo *Cycles) Close(ctx context.Context, id string, now time.Time) error {
	res := repo.db.WithContext(ctx).Model(&entities.Cycle{}).
		Where("id = ? AND closed_at IS NULL", id).
		Updates(map[string]any{"closed_at": now, "active": false})
	if res.Error != nil {
		return translate(res.Error, "cycle")
	}
	if res.RowsAffected == 0 {
		_, err := repo.GetByID(ctx, id)
		return err
	}
	return nil
}

func (repo *Cycles) CloseExpired(ctx context.Context, now time.Time) (int64, error) {
	res := repo.db.WithContext(ctx).Model(&entities.Cycle{}).
		Where("closed_at IS NULL AND portal_close_at <= ?", now).
		Updates(map[string]any{"closed_at": now, "active": false})
	return res.RowsAffected, translate(res.Error, "cycle")
}

// Remove deletes a cycle with everything configured for it. Cycles with applications or bookings stay.
func (repo *Cycles) Remove(ctx context.Context, id string) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var applications, bookings int64
		if err := tx.Model(&entities.Application{}).Where("cycle_id = ?", id).Count(&applications).Error; err != nil {
			return translate(err, "application")
		}
		if err := tx.Model(&entities.SlotBooking{}).Where("cycle_id = ?", id).Count(&bookings).Error; err != nil {
			return translate(err, "booking")
		}
		if applications > 0 || bookings > 0 {
			return apperr.Conflict("cycle has applications or bookings")
		}

		for _, model := range []any{&entities.QuestionSet{}, &entities.PhaseConfig{}, &entities.PhaseRanking{},
			&entities.DecisionRecord{}, &entities.Slot{}} {
			if err := tx.Where("cycle_id = ?", id).Delete(model).Error; err != nil {
				return translate(err, "cycle")
			}
		}

		res := tx.Delete(&entities.Cycle{}, "id = ?", id)
		if res.Error != nil {
			return translate(res.Error, "cycle")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("cycle")
		}
		return nil
	})
}
