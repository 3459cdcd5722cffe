package entities

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"time"
)

type Phase string

const (
	PhasePhase1    Phase = "phase1"
	PhasePhase2    Phase = "phase2"
	PhaseInterview Phase = "interview"
)

func (p Phase) Valid() bool {
	return p == PhasePhase1 || p == PhasePhase2 || p == PhaseInterview
}

// ReviewStage is the stage applications sit in while the phase is being reviewed.
func (p Phase) ReviewStage() Stage {
	switch p {
	case PhasePhase1:
		return StagePhase1Review
	case PhasePhase2:
		return StagePhase2Review
	case PhaseInterview:
		return StageInterview
	}
	return ""
}

// AdvanceStage is where qualified applications move once a decision is applied.
func (p Phase) AdvanceStage() Stage {
	next, _ := p.ReviewStage().Next()
	return next
}

type CutoffMode string

const (
	CutoffTopN     CutoffMode = "top_n"
	CutoffMinScore CutoffMode = "min_score"
)

type CutoffCriteria struct {
	Mode       CutoffMode `json:"mode"`
	TopN       int        `json:"topN,omitempty"`
	MinScore   float64    `json:"minScore,omitempty"`
	MinReviews int        `json:"minReviews,omitempty"`
}

func (c CutoffCriteria) Validate() error {
	fields := map[string]string{}
	switch c.Mode {
	case CutoffTopN:
		if c.TopN < 1 {
			fields["criteria.topN"] = "must be at least 1"
		}
	case CutoffMinScore:
		if c.MinScore < 0 {
			fields["criteria.minScore"] = "must not be negative"
		}
	default:
		fields["criteria.mode"] = "must be top_n or min_score"
	}
	if c.MinReviews < 0 {
		fields["criteria.minReviews"] = "must not be negative"
	}
	return validationError("invalid cutoff criteria", fields)
}

type PhaseConfig struct {
	ID        string                             `gorm:"primaryKey;size:36" json:"id"`
	CycleID   string                             `gorm:"size:36;not null;uniqueIndex:idx_phase_configs_cycle_phase_track,priority:1" json:"cycleId"`
	Phase     Phase                              `gorm:"size:16;not null;uniqueIndex:idx_phase_configs_cycle_phase_track,priority:2" json:"phase"`
	Track     Track                              `gorm:"size:16;not null;uniqueIndex:idx_phase_configs_cycle_phase_track,priority:3" json:"track"`
	Criteria  datatypes.JSONType[CutoffCriteria] `json:"criteria"`
	Reviewers datatypes.JSONSlice[string]        `json:"reviewers"`
	CreatedAt time.Time                          `json:"createdAt"`
	UpdatedAt time.Time                          `json:"updatedAt"`
}

func (c *PhaseConfig) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

func (c PhaseConfig) Validate() error {
	fields := map[string]string{}
	if c.CycleID == "" {
		fields["cycleId"] = "required"
	}
	if !c.Phase.Valid() {
		fields["phase"] = "must be phase1, phase2 or interview"
	}
	if !c.Track.Valid() {
		fields["track"] = "must be technical, business or both"
	}
	if len(fields) > 0 {
		return validationError("invalid phase config", fields)
	}
	return c.Criteria.Data().Validate()
}

type PhaseScore struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	ApplicationID string    `gorm:"size:36;not null;uniqueIndex:idx_phase_scores_reviewer,priority:1" json:"applicationId"`
	Phase         Phase     `gorm:"size:16;not null;uniqueIndex:idx_phase_scores_reviewer,priority:2" json:"phase"`
	ReviewerID    string    `gorm:"size:64;not null;uniqueIndex:idx_phase_scores_reviewer,priority:3" json:"reviewerId"`
	CycleID       string    `gorm:"size:36;not null;index" json:"cycleId"`
	Score         float64   `gorm:"not null" json:"score"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (s *PhaseScore) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}

type RankingEntry struct {
	Rank          int       `json:"rank"`
	ApplicationID string    `json:"applicationId"`
	ApplicantID   string    `json:"applicantId"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Track         Track     `json:"track"`
	Score         float64   `json:"score"`
	Reviews       int       `json:"reviews"`
	SubmittedAt   time.Time `json:"submittedAt"`
	Qualified     bool      `json:"qualified"`
}

type PhaseRanking struct {
	ID         string                             `gorm:"primaryKey;size:36" json:"id"`
	CycleID    string                             `gorm:"size:36;not null;uniqueIndex:idx_phase_rankings_cycle_phase_track,priority:1" json:"cycleId"`
	Phase      Phase                              `gorm:"size:16;not null;uniqueIndex:idx_phase_rankings_cycle_phase_track,priority:2" json:"phase"`
	Track      Track                              `gorm:"size:16;not null;uniqueIndex:idx_phase_rankings_cycle_phase_track,priority:3" json:"track"`
	Version    int                                `gorm:"not null" json:"version"`
	Criteria   datatypes.JSONType[CutoffCriteria] `json:"criteria"`
	Entries    datatypes.JSONSlice[RankingEntry]  `json:"entries"`
	ComputedAt time.Time                          `json:"computedAt"`
}

func (r *PhaseRanking) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	return nil
}

// DecisionRecord marks a ranking version as applied. Its unique key makes replays detectable.
type DecisionRecord struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	CycleID        string    `gorm:"size:36;not null;uniqueIndex:idx_decision_records_version,priority:1" json:"cycleId"`
	Phase          Phase     `gorm:"size:16;not null;uniqueIndex:idx_decision_records_version,priority:2" json:"phase"`
	Track          Track     `gorm:"size:16;not null;uniqueIndex:idx_decision_records_version,priority:3" json:"track"`
	RankingVersion int       `gorm:"not null;uniqueIndex:idx_decision_records_version,priority:4" json:"rankingVersion"`
	Advanced       int       `json:"advanced"`
	Rejected       int       `json:"rejected"`
	DecidedBy      string    `gorm:"size:64" json:"decidedBy"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (r *DecisionRecord) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	return nil
}
