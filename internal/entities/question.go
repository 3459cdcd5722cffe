package entities

import (
	"fmt"
	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"net/url"
	"time"
	"unicode/utf8"
)

type QuestionKind string

const (
	QuestionShortText QuestionKind = "short_text"
	QuestionLongText  QuestionKind = "long_text"
	QuestionChoice    QuestionKind = "choice"
	QuestionURL       QuestionKind = "url"
)

type Question struct {
	ID        string       `json:"id"`
	Prompt    string       `json:"prompt"`
	Kind      QuestionKind `json:"kind"`
	Required  bool         `json:"required"`
	MaxLength int          `json:"maxLength,omitempty"`
	Options   []string     `json:"options,omitempty"`
}

type QuestionSet struct {
	ID        string                        `gorm:"primaryKey;size:36" json:"id"`
	CycleID   string                        `gorm:"size:36;not null;uniqueIndex:idx_question_sets_cycle_track,priority:1" json:"cycleId"`
	Track     Track                         `gorm:"size:16;not null;uniqueIndex:idx_question_sets_cycle_track,priority:2" json:"track"`
	Questions datatypes.JSONSlice[Question] `json:"questions"`
	UpdatedAt time.Time                     `json:"updatedAt"`
}

func (s *QuestionSet) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}

func (s QuestionSet) Validate() error {
	fields := map[string]string{}
	if s.CycleID == "" {
		fields["cycleId"] = "required"
	}
	if !s.Track.Valid() {
		fields["track"] = "must be technical, business or both"
	}

	seen := map[string]bool{}
	for i, q := range s.Questions {
		key := fmt.Sprintf("questions[%d]", i)
		switch {
		case q.ID == "":
			fields[key] = "id is required"
		case seen[q.ID]:
			fields[key] = "duplicate id " + q.ID
		case q.Prompt == "":
			fields[key] = "prompt is required"
		case q.Kind == QuestionChoice && len(q.Options) == 0:
			fields[key] = "choice question needs options"
		case q.Kind != QuestionShortText && q.Kind != QuestionLongText && q.Kind != QuestionChoice && q.Kind != QuestionURL:
			fields[key] = "unknown kind"
		}
		seen[q.ID] = true
	}
	return validationError("invalid question set", fields)
}

// ValidateResponses checks answers keyed by question id against the set.
func (s QuestionSet) ValidateResponses(responses map[string]any) error {
	fields := map[string]string{}
	known := map[string]Question{}
	for _, q := range s.Questions {
		known[q.ID] = q
	}

	for key := range responses {
		if _, ok := known[key]; !ok {
			fields[key] = "unknown question"
		}
	}

	for _, q := range s.Questions {
		raw, present := responses[q.ID]
		answer, isString := raw.(string)
		if present && !isString {
			fields[q.ID] = "must be a string"
			continue
		}
		if answer == "" {
			if q.Required {
				fields[q.ID] = "required"
			}
			continue
		}
		if q.MaxLength > 0 && utf8.RuneCountInString(answer) > q.MaxLength {
			fields[q.ID] = fmt.Sprintf("must be at most %d characters", q.MaxLength)
			continue
		}
		switch q.Kind {
		case QuestionChoice:
			if !lo.Contains(q.Options, answer) {
				fields[q.ID] = "must be one of the options"
			}
		case QuestionURL:
			if u, err := url.ParseRequestURI(answer); err != nil || u.Host == "" {
				fields[q.ID] = "must be a valid url"
			}
		}
	}
	return validationError("invalid responses", fields)
}
