package entities

import (
	"gorm.io/gorm"
	"time"
)

type Event struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description,omitempty"`
	Location      string    `gorm:"size:255" json:"location,omitempty"`
	StartsAt      time.Time `gorm:"not null;index" json:"startsAt"`
	EndsAt        time.Time `gorm:"not null" json:"endsAt"`
	Capacity      int       `gorm:"not null" json:"capacity"`
	AttendeeCount int       `gorm:"not null;default:0" json:"attendeeCount"`
	Published     bool      `gorm:"not null;index" json:"published"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	return nil
}

func (e Event) Validate() error {
	fields := map[string]string{}
	if e.Title == "" {
		fields["title"] = "required"
	}
	if e.StartsAt.IsZero() {
		fields["startsAt"] = "required"
	}
	if !e.EndsAt.After(e.StartsAt) {
		fields["endsAt"] = "must be after startsAt"
	}
	if e.Capacity < 1 {
		fields["capacity"] = "must be at least 1"
	}
	return validationError("invalid event", fields)
}

type AttendanceStatus string

const (
	AttendanceRegistered AttendanceStatus = "registered"
	AttendanceWaitlisted AttendanceStatus = "waitlisted"
	AttendanceCancelled  AttendanceStatus = "cancelled"
	AttendanceAttended   AttendanceStatus = "attended"
)

type Attendance struct {
	ID          string           `gorm:"primaryKey;size:36" json:"id"`
	EventID     string           `gorm:"size:36;not null;uniqueIndex:idx_attendances_event_user,priority:1" json:"eventId"`
	UserID      string           `gorm:"size:64;not null;uniqueIndex:idx_attendances_event_user,priority:2" json:"userId"`
	Email       string           `gorm:"size:255" json:"email"`
	Status      AttendanceStatus `gorm:"size:16;not null;index" json:"status"`
	QueuedAt    time.Time        `gorm:"not null;index" json:"queuedAt"`
	CheckedInAt *time.Time       `json:"checkedInAt,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func (a *Attendance) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}
