package events

import "github.com/maxaizer/club-portal/internal/entities"

var ApplicationSubmittedTopic = "ApplicationSubmittedEvent"

type ApplicationSubmitted struct {
	Application entities.Application
}

var ApplicationStageChangedTopic = "ApplicationStageChangedEvent"

type ApplicationStageChanged struct {
	ApplicationID string
	CycleID       string
	From          entities.Stage
	To            entities.Stage
	Override      bool
	ActorID       string
}

var DecisionAppliedTopic = "DecisionAppliedEvent"

type DecisionApplied struct {
	Record entities.DecisionRecord
}

var QuestionsChangedTopic = "QuestionsChangedEvent"

type QuestionsChanged struct {
	Set     entities.QuestionSet
	ActorID string
}
