package repositories

import (
	"context"
	"github.com/maxaizer/club-portal/internal/entities"
	"gorm.io/gorm"
)

type AuditFilter struct {
	Action  string
	Subject string
	Limit   int
	Offset  int
}

type Audit struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *Audit {
	return &Audit{db: db}
}

func (repo *Audit) Add(ctx context.Context, entry *entities.AuditEntry) error {
	return translate(repo.db.WithContext(ctx).Create(entry).Error, "audit entry")
}

func (repo *Audit) List(ctx context.Context, filter AuditFilter) ([]entities.AuditEntry, error) {
	query := repo.db.WithContext(ctx).Model(&entities.AuditEntry{})
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}

	var entries []entities.AuditEntry
	err := query.Order("created_at DESC").Limit(filter.Limit).Offset(filter.Offset).Find(&entries).Error
	if err != nil {
		return nil, translate(err, "audit entry")
	}
	return entries, nil
}
