package repositories

import (
	"context"
	"github.com/maxaizer/club-portal/internal/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"time"
)

type Questions struct {
	db *gorm.DB
}

func NewQuestionsRepository(db *gorm.DB) *Questions {
	return &Questions{db: db}
}

// Upsert replaces the question set of a (cycle, track) pair.
func (repo *Questions) Upsert(ctx context.Context, set entities.QuestionSet) (*entities.QuestionSet, error) {
	set.ID = ""
	set.UpdatedAt = time.Now().UTC()
	err := repo.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cycle_id"}, {Name: "track"}},
		DoUpdates: clause.AssignmentColumns([]string{"questions", "updated_at"}),
	}).Create(&set).Error
	if err != nil {
		return nil, translate(err, "question set")
	}
	return repo.Get(ctx, set.CycleID, set.Track)
}

func (repo *Questions) Get(ctx context.Context, cycleID string, track entities.Track) (*entities.QuestionSet, error) {
	var set entities.QuestionSet
	err := repo.db.WithContext(ctx).First(&set, "cycle_id = ? AND track = ?", cycleID, track).Error
	if err != nil {
		return nil, translate(err, "question set")
	}
	return &set, nil
}

func (repo *Questions) ListByCycle(ctx context.Context, cycleID string) ([]entities.QuestionSet, error) {
	var sets []entities.QuestionSet
	if err := repo.db.WithContext(ctx).Order("track").Find(&sets, "cycle_id = ?", cycleID).Error; err != nil {
		return nil, translate(err, "question set")
	}
	return sets, nil
}

func (repo *Questions) Remove(ctx context.Context, cycleID string, track entities.Track) error {
	return translate(repo.db.WithContext(ctx).
		Delete(&entities.QuestionSet{}, "cycle_id = ? AND track = ?", cycleID, track).Error, "question set")
}
