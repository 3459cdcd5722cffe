package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/entities"
	"github.com/maxaizer/club-portal/internal/events"
	"github.com/maxaizer/club-portal/internal/metrics"
	"github.com/maxaizer/club-portal/internal/repositories"
	"github.com/maxaizer/club-portal/internal/security"
	"github.com/samber/lo"
	"gorm.io/datatypes"
	"sort"
	"strings"
	"time"
)

const maxScore = 10

type phaseRepository interface {
	AddConfig(ctx context.Context, cfg *entities.PhaseConfig) error
	UpdateConfig(ctx context.Context, cfg entities.PhaseConfig) error
	GetConfig(ctx context.Context, id string) (*entities.PhaseConfig, error)
	FindConfig(ctx context.Context, cycleID string, phase entities.Phase, track entities.Track) (*entities.PhaseConfig, error)
	ListConfigs(ctx context.Context, cycleID string) ([]entities.PhaseConfig, error)
	RemoveConfig(ctx context.Context, id string) error
	UpsertScore(ctx context.Context, score *entities.PhaseScore) error
	ListScores(ctx context.Context, cycleID string, phase entities.Phase) ([]entities.PhaseScore, error)
	SaveRanking(ctx context.Context, ranking *entities.PhaseRanking) error
	GetRanking(ctx context.Context, cycleID string, phase entities.Phase, track entities.Track) (*entities.PhaseRanking, error)
	ApplyDecision(ctx context.Context, plan repositories.DecisionPlan) (*entities.DecisionRecord, bool, error)
	ListDecisions(ctx context.Context, cycleID string) ([]entities.DecisionRecord, error)
}

type applicationLister interface {
	GetByID(ctx context.Context, id string) (*entities.Application, error)
	List(ctx context.Context, filter repositories.ApplicationFilter) ([]entities.Application, error)
}

type ScoreRequest struct {
	ApplicationID string         `json:"applicationId" validate:"required"`
	Phase         entities.Phase `json:"phase" validate:"required,oneof=phase1 phase2 interview"`
	Score         float64        `json:"score" validate:"gte=0,lte=10"`
	Comment       string         `json:"comment" validate:"max=4000"`
}

type PhaseDecisionAction struct {
	CycleID        string         `json:"cycleId" validate:"required"`
	Phase          entities.Phase `json:"phase" validate:"required,oneof=phase1 phase2 interview"`
	Track          entities.Track `json:"track" validate:"required,oneof=technical business both"`
	RankingVersion int            `json:"rankingVersion" validate:"required,gte=1"`
	RejectRest     bool           `json:"rejectRest"`
}

type PhaseService struct {
	bus          EventBus.Bus
	phases       phaseRepository
	applications applicationLister
	cycles       cycleGetter
	now          func() time.Time
}

func NewPhaseService(bus EventBus.Bus, phases phaseRepository, applications applicationLister,
	cycles cycleGetter) *PhaseService {

	return &PhaseService{bus: bus, phases: phases, applications: applications, cycles: cycles, now: utcNow}
}

func (s *PhaseService) CreateConfig(ctx context.Context, cfg entities.PhaseConfig) (*entities.PhaseConfig, error) {
	cfg.ID = ""
	cfg.Reviewers = normalizeReviewers(cfg.Reviewers)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.cycles.GetByID(ctx, cfg.CycleID); err != nil {
		return nil, err
	}
	if err := s.phases.AddConfig(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *PhaseService) UpdateConfig(ctx context.Context, id string, criteria entities.CutoffCriteria,
	reviewers []string) (*entities.PhaseConfig, error) {

	cfg, err := s.phases.GetConfig(ctx, id)
	if err != nil {
		return nil, err
	}
	cfg.Criteria = datatypes.NewJSONType(criteria)
	cfg.Reviewers = normalizeReviewers(reviewers)
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	if err = s.phases.UpdateConfig(ctx, *cfg); err != nil {
		return nil, err
	}
	return s.phases.GetConfig(ctx, id)
}

func (s *PhaseService) GetConfig(ctx context.Context, id string) (*entities.PhaseConfig, error) {
	return s.phases.GetConfig(ctx, id)
}

func (s *PhaseService) ListConfigs(ctx context.Context, cycleID string) ([]entities.PhaseConfig, error) {
	return s.phases.ListConfigs(ctx, cycleID)
}

func (s *PhaseService) DeleteConfig(ctx context.Context, id string) error {
	return s.phases.RemoveConfig(ctx, id)
}

func normalizeReviewers(reviewers []string) []string {
	cleaned := lo.FilterMap(reviewers, func(reviewer string, _ int) (string, bool) {
		reviewer = strings.ToLower(strings.TrimSpace(reviewer))
		return reviewer, reviewer != ""
	})
	return lo.Uniq(cleaned)
}

// resolveConfig prefers the track's own config over the shared one.
func (s *PhaseService) resolveConfig(ctx context.Context, cycleID string, phase entities.Phase,
	track entities.Track) (*entities.PhaseConfig, error) {

	cfg, err := s.phases.FindConfig(ctx, cycleID, phase, track)
	if err == nil || !apperr.Is(err, apperr.CodeNotFound) || track == entities.TrackBoth {
		return cfg, err
	}
	return s.phases.FindConfig(ctx, cycleID, phase, entities.TrackBoth)
}

// SubmitScore records the reviewer's score. Only admins and assigned reviewers may score.
func (s *PhaseService) SubmitScore(ctx context.Context, reviewer security.Principal,
	request ScoreRequest) (*entities.PhaseScore, error) {

	if !request.Phase.Valid() {
		return nil, apperr.Validation("invalid phase", map[string]string{"phase": "unknown phase"})
	}
	if request.Score < 0 || request.Score > maxScore {
		return nil, apperr.Validation("invalid score", map[string]string{"score": "must be between 0 and 10"})
	}

	application, err := s.applications.GetByID(ctx, request.ApplicationID)
	if err != nil {
		return nil, err
	}
	if application.Stage != request.Phase.ReviewStage() {
		return nil, apperr.Validation("application is not under review in "+string(request.Phase), nil)
	}

	cfg, err := s.resolveConfig(ctx, application.CycleID, request.Phase, application.Track)
	if err != nil && !apperr.Is(err, apperr.CodeNotFound) {
		return nil, err
	}
	if !reviewer.IsAdmin() && (cfg == nil || !isReviewer(*cfg, reviewer)) {
		return nil, apperr.New(apperr.CodeForbidden, "not a reviewer of this phase")
	}

	score := entities.PhaseScore{
		ApplicationID: application.ID,
		CycleID:       application.CycleID,
		Phase:         request.Phase,
		ReviewerID:    reviewer.ID,
		Score:         request.Score,
		Comment:       request.Comment,
	}
	if err = s.phases.UpsertScore(ctx, &score); err != nil {
		return nil, err
	}
	return &score, nil
}

func isReviewer(cfg entities.PhaseConfig, principal security.Principal) bool {
	return lo.Contains(cfg.Reviewers, strings.ToLower(principal.ID)) ||
		(principal.Email != "" && lo.Contains(cfg.Reviewers, strings.ToLower(principal.Email)))
}

// Rank orders entries by score, then by earlier submission, then by id, and marks the ones passing the cutoff.
// Entries below MinReviews never qualify.
func Rank(entries []entities.RankingEntry, criteria entities.CutoffCriteria) []entities.RankingEntry {
	ranked := lo.UniqBy(entries, func(entry entities.RankingEntry) string {
		return entry.ApplicationID
	})

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.SubmittedAt.Equal(b.SubmittedAt) {
			return a.SubmittedAt.Before(b.SubmittedAt)
		}
		return a.ApplicationID < b.ApplicationID
	})

	qualified := 0
	for i := range ranked {
		ranked[i].Rank = i + 1
		ranked[i].Qualified = false
		if ranked[i].Reviews < criteria.MinReviews {
			continue
		}
		switch criteria.Mode {
		case entities.CutoffTopN:
			ranked[i].Qualified = qualified < criteria.TopN
		case entities.CutoffMinScore:
			ranked[i].Qualified = ranked[i].Score >= criteria.MinScore
		}
		if ranked[i].Qualified {
			qualified++
		}
	}
	return ranked
}

// Recompute rebuilds the ranking of everyone currently under review in the phase.
func (s *PhaseService) Recompute(ctx context.Context, cycleID string, phase entities.Phase,
	track entities.Track) (*entities.PhaseRanking, error) {

	start := time.Now()
	defer func() {
		metrics.RankingRecomputeDuration.Observe(time.Since(start).Seconds())
	}()

	if !phase.Valid() || !track.Valid() {
		return nil, apperr.Validation("invalid phase or track", nil)
	}

	cfg, err := s.resolveConfig(ctx, cycleID, phase, track)
	if err != nil {
		return nil, err
	}
	criteria := cfg.Criteria.Data()

	applications, err := s.applications.List(ctx, repositories.ApplicationFilter{
		CycleID: cycleID,
		Track:   track,
		Stage:   phase.ReviewStage(),
	})
	if err != nil {
		return nil, err
	}

	scores, err := s.phases.ListScores(ctx, cycleID, phase)
	if err != nil {
		return nil, err
	}
	byApplication := lo.GroupBy(scores, func(score entities.PhaseScore) string {
		return score.ApplicationID
	})

	entries := lo.Map(applications, func(application entities.Application, _ int) entities.RankingEntry {
		appScores := byApplication[application.ID]
		average := 0.0
		if len(appScores) > 0 {
			average = lo.SumBy(appScores, func(score entities.PhaseScore) float64 { return score.Score }) /
				float64(len(appScores))
		}
		return entities.RankingEntry{
			ApplicationID: application.ID,
			ApplicantID:   application.ApplicantID,
			Name:          application.Name,
			Email:         application.Email,
			Track:         application.Track,
			Score:         average,
			Reviews:       len(appScores),
			SubmittedAt:   application.SubmittedAt,
		}
	})

	ranking := entities.PhaseRanking{
		CycleID:    cycleID,
		Phase:      phase,
		Track:      track,
		Criteria:   datatypes.NewJSONType(criteria),
		Entries:    Rank(entries, criteria),
		ComputedAt: s.now(),
	}
	if err = s.phases.SaveRanking(ctx, &ranking); err != nil {
		return nil, err
	}
	return &ranking, nil
}

func (s *PhaseService) GetRanking(ctx context.Context, cycleID string, phase entities.Phase,
	track entities.Track) (*entities.PhaseRanking, error) {

	return s.phases.GetRanking(ctx, cycleID, phase, track)
}

// ApplyDecision applies a ranking version atomically. Replaying the same version returns the original record.
func (s *PhaseService) ApplyDecision(ctx context.Context, action PhaseDecisionAction,
	actor security.Principal) (*entities.DecisionRecord, error) {

	if !action.Phase.Valid() || !action.Track.Valid() {
		return nil, apperr.Validation("invalid phase or track", nil)
	}

	record, replayed, err := s.phases.ApplyDecision(ctx, repositories.DecisionPlan{
		CycleID:        action.CycleID,
		Phase:          action.Phase,
		Track:          action.Track,
		RankingVersion: action.RankingVersion,
		RejectRest:     action.RejectRest,
		DecidedBy:      actor.ID,
		Now:            s.now(),
	})
	if err != nil {
		return nil, err
	}

	if !replayed {
		from := string(action.Phase.ReviewStage())
		metrics.StageTransitionsCounter.WithLabelValues(from, string(action.Phase.AdvanceStage())).
			Add(float64(record.Advanced))
		metrics.StageTransitionsCounter.WithLabelValues(from, string(entities.StageRejected)).
			Add(float64(record.Rejected))
		s.bus.Publish(events.DecisionAppliedTopic, events.DecisionApplied{Record: *record})
	}
	return record, nil
}

func (s *PhaseService) ListDecisions(ctx context.Context, cycleID string) ([]entities.DecisionRecord, error) {
	return s.phases.ListDecisions(ctx, cycleID)
}
