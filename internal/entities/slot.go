package entities

import (
	"gorm.io/gorm"
	"time"
)

type SlotKind string

const (
	SlotInterview  SlotKind = "interview"
	SlotCoffeeChat SlotKind = "coffee_chat"
)

func (k SlotKind) Valid() bool {
	return k == SlotInterview || k == SlotCoffeeChat
}

const (
	slotDateLayout = "2006-01-02"
	slotTimeLayout = "15:04"
)

type Slot struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	CycleID     string    `gorm:"size:36;not null;index:idx_slots_cycle_kind,priority:1" json:"cycleId"`
	Kind        SlotKind  `gorm:"size:16;not null;index:idx_slots_cycle_kind,priority:2" json:"kind"`
	Date        string    `gorm:"size:10;not null" json:"date"`
	StartTime   string    `gorm:"size:5;not null" json:"startTime"`
	EndTime     string    `gorm:"size:5;not null" json:"endTime"`
	Room        string    `gorm:"size:128" json:"room,omitempty"`
	Host        string    `gorm:"size:128" json:"host,omitempty"`
	Capacity    int       `gorm:"not null" json:"capacity"`
	BookedCount int       `gorm:"not null;default:0" json:"bookedCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (s *Slot) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}

func (s Slot) Available() bool {
	return s.BookedCount < s.Capacity
}

func (s Slot) Validate() error {
	fields := map[string]string{}
	if s.CycleID == "" {
		fields["cycleId"] = "required"
	}
	if !s.Kind.Valid() {
		fields["kind"] = "must be interview or coffee_chat"
	}
	if _, err := time.Parse(slotDateLayout, s.Date); err != nil {
		fields["date"] = "must be YYYY-MM-DD"
	}
	start, startErr := time.Parse(slotTimeLayout, s.StartTime)
	if startErr != nil {
		fields["startTime"] = "must be HH:MM"
	}
	end, endErr := time.Parse(slotTimeLayout, s.EndTime)
	if endErr != nil {
		fields["endTime"] = "must be HH:MM"
	}
	if startErr == nil && endErr == nil && !start.Before(end) {
		fields["endTime"] = "must be after startTime"
	}
	if s.Capacity < 1 {
		fields["capacity"] = "must be at least 1"
	}
	return validationError("invalid slot", fields)
}

type SlotBooking struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	SlotID        string    `gorm:"size:36;not null;index" json:"slotId"`
	CycleID       string    `gorm:"size:36;not null;uniqueIndex:idx_slot_bookings_applicant_kind,priority:1" json:"cycleId"`
	ApplicantID   string    `gorm:"size:64;not null;uniqueIndex:idx_slot_bookings_applicant_kind,priority:2" json:"applicantId"`
	Kind          SlotKind  `gorm:"size:16;not null;uniqueIndex:idx_slot_bookings_applicant_kind,priority:3" json:"kind"`
	ApplicationID string    `gorm:"size:36" json:"applicationId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (b *SlotBooking) BeforeCreate(*gorm.DB) error {
	assignID(&b.ID)
	return nil
}
