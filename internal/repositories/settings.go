package repositories

import (
	"context"
	"github.com/maxaizer/club-portal/internal/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"time"
)

// key is reserved in MySQL, so it is always referenced through quoted clauses.
var byKey = clause.OrderByColumn{Column: clause.Column{Name: "key"}}

type Settings struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *Settings {
	return &Settings{db: db}
}

func (repo *Settings) Get(ctx context.Context, key string) (*entities.Setting, error) {
	var setting entities.Setting
	if err := repo.db.WithContext(ctx).Where(map[string]any{"key": key}).First(&setting).Error; err != nil {
		return nil, translate(err, "setting")
	}
	return &setting, nil
}

func (repo *Settings) List(ctx context.Context) ([]entities.Setting, error) {
	var settings []entities.Setting
	if err := repo.db.WithContext(ctx).Order(byKey).Find(&settings).Error; err != nil {
		return nil, translate(err, "setting")
	}
	return settings, nil
}

func (repo *Settings) Put(ctx context.Context, setting *entities.Setting) error {
	setting.UpdatedAt = time.Now().UTC()
	err := repo.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "type", "updated_by", "updated_at"}),
	}).Create(setting).Error
	return translate(err, "setting")
}
