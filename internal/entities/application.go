package entities

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"time"
)

type Track string

const (
	TrackTechnical Track = "technical"
	TrackBusiness  Track = "business"
	// TrackBoth is a wildcard for question sets and phase configs. Applications always carry a concrete track.
	TrackBoth Track = "both"
)

func (t Track) Valid() bool {
	return t == TrackTechnical || t == TrackBusiness || t == TrackBoth
}

func (t Track) Concrete() bool {
	return t == TrackTechnical || t == TrackBusiness
}

type Stage string

const (
	StageSubmitted    Stage = "submitted"
	StagePhase1Review Stage = "phase1_review"
	StagePhase2Review Stage = "phase2_review"
	StageInterview    Stage = "interview"
	StageAccepted     Stage = "accepted"
	StageRejected     Stage = "rejected"
)

var stageSequence = []Stage{StageSubmitted, StagePhase1Review, StagePhase2Review, StageInterview, StageAccepted}

func (s Stage) Valid() bool {
	return s == StageRejected || s.position() >= 0
}

func (s Stage) Terminal() bool {
	return s == StageAccepted || s == StageRejected
}

func (s Stage) position() int {
	for i, stage := range stageSequence {
		if stage == s {
			return i
		}
	}
	return -1
}

// Next returns the immediate successor in the forward sequence.
func (s Stage) Next() (Stage, bool) {
	pos := s.position()
	if pos < 0 || pos == len(stageSequence)-1 {
		return "", false
	}
	return stageSequence[pos+1], true
}

// CanAdvance reports whether to is a legal move from s without an admin override:
// the immediate successor, or a rejection of a non-terminal application.
func (s Stage) CanAdvance(to Stage) bool {
	if s.Terminal() {
		return false
	}
	if to == StageRejected {
		return true
	}
	next, ok := s.Next()
	return ok && next == to
}

type Application struct {
	ID             string            `gorm:"primaryKey;size:36" json:"id"`
	CycleID        string            `gorm:"size:36;not null;uniqueIndex:idx_applications_cycle_applicant_track,priority:1" json:"cycleId"`
	ApplicantID    string            `gorm:"size:64;not null;uniqueIndex:idx_applications_cycle_applicant_track,priority:2;index" json:"applicantId"`
	Track          Track             `gorm:"size:16;not null;uniqueIndex:idx_applications_cycle_applicant_track,priority:3" json:"track"`
	Email          string            `gorm:"size:255;not null" json:"email"`
	Name           string            `gorm:"size:255" json:"name"`
	Stage          Stage             `gorm:"size:32;not null;index" json:"stage"`
	Responses      datatypes.JSONMap `json:"responses"`
	SubmittedAt    time.Time         `gorm:"not null" json:"submittedAt"`
	StageChangedAt time.Time         `json:"stageChangedAt"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

func (a *Application) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}
