package entities

import (
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/stretchr/testify/assert"
	"testing"
)

func testQuestionSet() QuestionSet {
	return QuestionSet{
		CycleID: "c1",
		Track:   TrackTechnical,
		Questions: []Question{
			{ID: "why", Prompt: "Why us?", Kind: QuestionLongText, Required: true, MaxLength: 20},
			{ID: "year", Prompt: "Year", Kind: QuestionChoice, Options: []string{"1", "2", "3", "4"}},
			{ID: "github", Prompt: "GitHub", Kind: QuestionURL},
		},
	}
}

func Test_QuestionSet_ValidateResponses_WhenValid_ShouldPass(t *testing.T) {
	err := testQuestionSet().ValidateResponses(map[string]any{
		"why":    "I like building",
		"year":   "2",
		"github": "https://github.com/someone",
	})
	assert.NoError(t, err)
}

func Test_QuestionSet_ValidateResponses_ShouldReportEachField(t *testing.T) {
	err := testQuestionSet().ValidateResponses(map[string]any{
		"year":   "9",
		"github": "not a url",
		"extra":  "x",
	})

	appErr, ok := apperr.As(err)
	assert.True(t, ok)
	assert.Equal(t, "required", appErr.Fields["why"])
	assert.Contains(t, appErr.Fields, "year")
	assert.Contains(t, appErr.Fields, "github")
	assert.Equal(t, "unknown question", appErr.Fields["extra"])
}

func Test_QuestionSet_ValidateResponses_WhenTooLong_ShouldFail(t *testing.T) {
	err := testQuestionSet().ValidateResponses(map[string]any{"why": "this answer is definitely too long"})
	assert.True(t, apperr.Is(err, apperr.CodeValidation))
}

func Test_QuestionSet_Validate_WhenDuplicateIds_ShouldFail(t *testing.T) {
	set := testQuestionSet()
	set.Questions = append(set.Questions, Question{ID: "why", Prompt: "again", Kind: QuestionShortText})
	assert.Error(t, set.Validate())
}
