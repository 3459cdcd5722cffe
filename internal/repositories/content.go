package repositories

import (
	"context"
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/entities"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"time"
)

type Content struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) *Content {
	return &Content{db: db}
}

func (repo *Content) Load(ctx context.Context, key string) (*entities.ContentBlock, error) {
	block := &entities.ContentBlock{}
	if err := repo.db.WithContext(ctx).Where(map[string]any{"key": key}).First(block).Error; err != nil {
		return nil, translate(err, "content")
	}
	return block, nil
}

func (repo *Content) List(ctx context.Context) ([]entities.ContentBlock, error) {
	var blocks []entities.ContentBlock
	if err := repo.db.WithContext(ctx).Order(byKey).Find(&blocks).Error; err != nil {
		return nil, translate(err, "content")
	}
	return blocks, nil
}

// Save replaces the body and bumps the version. When expectedVersion is positive the write
// only succeeds if the stored version still matches it.
func (repo *Content) Save(ctx context.Context, key string, body []byte, expectedVersion int,
	updatedBy string) (*entities.ContentBlock, error) {

	var block entities.ContentBlock
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		query := tx.Model(&entities.ContentBlock{}).Where(map[string]any{"key": key})
		if expectedVersion > 0 {
			query = query.Where("version = ?", expectedVersion)
		}
		res := query.Updates(map[string]any{
			"body":       datatypes.JSON(body),
			"version":    gorm.Expr("version + ?", 1),
			"updated_by": updatedBy,
			"updated_at": now,
		})
		if res.Error != nil {
			return translate(res.Error, "content")
		}

		if res.RowsAffected == 0 {
			if expectedVersion > 0 {
				return apperr.Conflict("content was modified by someone else")
			}
			block = entities.ContentBlock{Key: key, Body: body, Version: 1, UpdatedBy: updatedBy, UpdatedAt: now}
			if err := tx.Create(&block).Error; err != nil {
				return translate(err, "content")
			}
			return nil
		}

		return translate(tx.Where(map[string]any{"key": key}).First(&block).Error, "content")
	})
	if err != nil {
		return nil, err
	}
	return &block, nil
}

func (repo *Content) Remove(ctx context.Context, key string) error {
	res := repo.db.WithContext(ctx).Where(map[string]any{"key": key}).Delete(&entities.ContentBlock{})
	if res.Error != nil {
		return translate(res.Error, "content")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("content")
	}
	return nil
}
