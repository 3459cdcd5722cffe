package entities

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"time"
)

type AuditEntry struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Action    string         `gorm:"size:64;not null;index" json:"action"`
	ActorID   string         `gorm:"size:64" json:"actorId,omitempty"`
	Subject   string         `gorm:"size:64;index" json:"subject"`
	Detail    datatypes.JSON `json:"detail"`
	CreatedAt time.Time      `gorm:"index" json:"createdAt"`
}

func (e *AuditEntry) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	return nil
}
