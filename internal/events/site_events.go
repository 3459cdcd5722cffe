package events

import "github.com/maxaizer/club-portal/internal/entities"

var SettingChangedTopic = "SettingChangedEvent"

type SettingChanged struct {
	Setting entities.Setting
}

var ContentChangedTopic = "ContentChangedEvent"

type ContentChanged struct {
	Block entities.ContentBlock
}

var RSVPChangedTopic = "RSVPChangedEvent"

type RSVPChanged struct {
	Attendance entities.Attendance
	// Promoted is the waitlisted attendance moved to registered by this change, if any.
	Promoted *entities.Attendance
}

var CycleChangedTopic = "CycleChangedEvent"

type CycleChanged struct {
	Cycle   entities.Cycle
	Action  string
	ActorID string
}
