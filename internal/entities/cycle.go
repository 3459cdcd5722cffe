package entities

import (
	"gorm.io/gorm"
	"time"
)

type CycleStatus string

const (
	CycleUpcoming CycleStatus = "upcoming"
	CycleOpen     CycleStatus = "open"
	CycleClosed   CycleStatus = "closed"
)

type Cycle struct {
	ID               string     `gorm:"primaryKey;size:36" json:"id"`
	Name             string     `gorm:"size:128;not null" json:"name"`
	PortalOpenAt     time.Time  `gorm:"not null;index" json:"portalOpenAt"`
	PortalCloseAt    time.Time  `gorm:"not null;index" json:"portalCloseAt"`
	ApplicationDueAt *time.Time `json:"applicationDueAt,omitempty"`
	Active           bool       `gorm:"not null" json:"active"`
	ClosedAt         *time.Time `json:"closedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func (c *Cycle) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// StatusAt reports the cycle state at the given moment. A manually closed cycle stays closed.
func (c Cycle) StatusAt(now time.Time) CycleStatus {
	switch {
	case c.ClosedAt != nil && !c.ClosedAt.After(now):
		return CycleClosed
	case now.Before(c.PortalOpenAt):
		return CycleUpcoming
	case now.Before(c.PortalCloseAt):
		return CycleOpen
	default:
		return CycleClosed
	}
}

// AcceptsApplicationsAt is false once the application deadline has passed, even inside the portal window.
func (c Cycle) AcceptsApplicationsAt(now time.Time) bool {
	if c.StatusAt(now) != CycleOpen {
		return false
	}
	return c.ApplicationDueAt == nil || !now.After(*c.ApplicationDueAt)
}

func (c Cycle) Validate() error {
	fields := map[string]string{}
	if c.Name == "" {
		fields["name"] = "required"
	}
	if c.PortalOpenAt.IsZero() {
		fields["portalOpenAt"] = "required"
	}
	if c.PortalCloseAt.IsZero() {
		fields["portalCloseAt"] = "required"
	}
	if !c.PortalOpenAt.IsZero() && !c.PortalCloseAt.IsZero() && !c.PortalOpenAt.Before(c.PortalCloseAt) {
		fields["portalCloseAt"] = "must be after portalOpenAt"
	}
	if c.ApplicationDueAt != nil &&
		(c.ApplicationDueAt.Before(c.PortalOpenAt) || c.ApplicationDueAt.After(c.PortalCloseAt)) {
		fields["applicationDueAt"] = "must be within the portal window"
	}
	return validationError("invalid cycle", fields)
}
