package repositories

import (
	"context"
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/entities"
	"gorm.io/gorm"
	"time"
)

type ApplicationFilter struct {
	CycleID string
	Track   entities.Track
	Stage   entities.Stage
}

type Applications struct {
	db *gorm.DB
}

func NewApplicationsRepository(db *gorm.DB) *Applications {
	return &Applications{db: db}
}

func (repo *Applications) Add(ctx context.Context, application *entities.Application) error {
	err := repo.db.WithContext(ctx).Create(application).Error
	if err != nil && isUniqueViolation(err) {
		return apperr.Conflict("application already submitted for this cycle and track")
	}
	return translate(err, "application")
}

func (repo *Applications) GetByID(ctx context.Context, id string) (*entities.Application, error) {
	var application entities.Application
	if err := repo.db.WithContext(ctx).First(&application, "id = ?", id).Error; err != nil {
		return nil, translate(err, "application")
	}
	return &application, nil
}

func (repo *Applications) List(ctx context.Context, filter ApplicationFilter) ([]entities.Application, error) {
	query := repo.db.WithContext(ctx).Model(&entities.Application{})
	if filter.CycleID != "" {
		query = query.Where("cycle_id = ?", filter.CycleID)
	}
	if filter.Track != "" && filter.Track != entities.TrackBoth {
		query = query.Where("track = ?", filter.Track)
	}
	if filter.Stage != "" {
		query = query.Where("stage = ?", filter.Stage)
	}

	var applications []entities.Application
	if err := query.Order("submitted_at ASC").Order("id ASC").Find(&applications).Error; err != nil {
		return nil, translate(err, "application")
	}
	return applications, nil
}

func (repo *Applications) ListByApplicant(ctx context.Context, applicantID string) ([]entities.Application, error) {
	var applications []entities.Application
	err := repo.db.WithContext(ctx).Order("submitted_at DESC").
		Find(&applications, "applicant_id = ?", applicantID).Error
	if err != nil {
		return nil, translate(err, "application")
	}
	return applications, nil
}

// FindInStage returns the applicant's application in the cycle that currently sits in stage.
func (repo *Applications) FindInStage(ctx context.Context, cycleID, applicantID string,
	stage entities.Stage) (*entities.Application, error) {

	var application entities.Application
	err := repo.db.WithContext(ctx).
		Where("cycle_id = ? AND applicant_id = ? AND stage = ?", cycleID, applicantID, stage).
		First(&application).Error
	if err != nil {
		return nil, translate(err, "application")
	}
	return &application, nil
}

// TransitionStage moves the application only if it is still in from. Losing a race yields Conflict.
func (repo *Applications) TransitionStage(ctx context.Context, id string, from, to entities.Stage,
	now time.Time) error {

	res := repo.db.WithContext(ctx).Model(&entities.Application{}).
		Where("id = ? AND stage = ?", id, from).
		Updates(map[string]any{"stage": to, "stage_changed_at": now, "updated_at": now})
	if res.Error != nil {
		return translate(res.Error, "application")
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("application stage changed concurrently")
	}
	return nil
}

// Remove deletes the application with its scores and releases any slot it booked.
func (repo *Applications) Remove(ctx context.Context, id string) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bookings []entities.SlotBooking
		if err := tx.Find(&bookings, "application_id = ?", id).Error; err != nil {
			return translate(err, "booking")
		}
		for _, booking := range bookings {
			if err := releaseBooking(tx, booking); err != nil {
				return err
			}
		}

		if err := tx.Delete(&entities.PhaseScore{}, "application_id = ?", id).Error; err != nil {
			return translate(err, "phase score")
		}

		res := tx.Delete(&entities.Application{}, "id = ?", id)
		if res.Error != nil {
			return translate(res.Error, "application")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("application")
		}
		return nil
	})
}
