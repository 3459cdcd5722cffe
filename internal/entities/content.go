package entities

import (
	"gorm.io/datatypes"
	"time"
)

// ContentBlock is an editable piece of site content, e.g. the member levels table.
type ContentBlock struct {
	Key       string         `gorm:"primaryKey;size:128" json:"key"`
	Body      datatypes.JSON `json:"body"`
	Version   int            `gorm:"not null" json:"version"`
	UpdatedBy string         `gorm:"size:255" json:"updatedBy,omitempty"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
