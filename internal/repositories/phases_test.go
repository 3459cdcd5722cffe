package repositories

import (
	"context"
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"testing"
	"time"
)

func phaseConfig(track entities.Track) *entities.PhaseConfig {
	return &entities.PhaseConfig{
		CycleID:  "c1",
		Phase:    entities.PhasePhase1,
		Track:    track,
		Criteria: datatypes.NewJSONType(entities.CutoffCriteria{Mode: entities.CutoffTopN, TopN: 1}),
	}
}

func Test_Phases_AddConfig_WhenTripleExists_ShouldConflict(t *testing.T) {
	repo := NewPhasesRepository(newTestDb(t).DB)
	ctx := context.Background()

	require.NoError(t, repo.AddConfig(ctx, phaseConfig(entities.TrackTechnical)))

	err := repo.AddConfig(ctx, phaseConfig(entities.TrackTechnical))
	assert.True(t, apperr.Is(err, apperr.CodeConflict))

	assert.NoError(t, repo.AddConfig(ctx, phaseConfig(entities.TrackBusiness)))
}

func Test_Phases_UpsertScore_ShouldKeepOneScorePerReviewer(t *testing.T) {
	repo := NewPhasesRepository(newTestDb(t).DB)
	ctx := context.Background()

	score := entities.PhaseScore{ApplicationID: "a1", CycleID: "c1", Phase: entities.PhasePhase1, ReviewerID: "r1", Score: 3}
	require.NoError(t, repo.UpsertScore(ctx, &score))
	score2 := score
	score2.ID, score2.Score = "", 5
	require.NoError(t, repo.UpsertScore(ctx, &score2))

	scores, err := repo.ListScores(ctx, "c1", entities.PhasePhase1)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 5.0, scores[0].Score)
}

func Test_Phases_SaveRanking_ShouldIncrementVersion(t *testing.T) {
	repo := NewPhasesRepository(newTestDb(t).DB)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		ranking := &entities.PhaseRanking{CycleID: "c1", Phase: entities.PhasePhase1, Track: entities.TrackBoth,
			ComputedAt: testNow}
		require.NoError(t, repo.SaveRanking(ctx, ranking))
		assert.Equal(t, i, ranking.Version)
	}

	stored, err := repo.GetRanking(ctx, "c1", entities.PhasePhase1, entities.TrackBoth)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Version)
}

func seedDecision(t *testing.T, dbCtx *DbContext) (*Phases, *Applications, []entities.Application) {
	ctx := context.Background()
	apps := NewApplicationsRepository(dbCtx.DB)
	phases := NewPhasesRepository(dbCtx.DB)

	var seeded []entities.Application
	for i, id := range []string{"u1", "u2", "u3"} {
		app := entities.Application{CycleID: "c1", ApplicantID: id, Email: id + "@club.org",
			Track: entities.TrackTechnical, Stage: entities.StagePhase1Review,
			SubmittedAt: testNow.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, apps.Add(ctx, &app))
		seeded = append(seeded, app)
	}

	ranking := &entities.PhaseRanking{CycleID: "c1", Phase: entities.PhasePhase1, Track: entities.TrackTechnical,
		ComputedAt: testNow, Entries: []entities.RankingEntry{
			{Rank: 1, ApplicationID: seeded[0].ID, Qualified: true},
			{Rank: 2, ApplicationID: seeded[1].ID, Qualified: true},
			{Rank: 3, ApplicationID: seeded[2].ID, Qualified: false},
		}}
	require.NoError(t, phases.SaveRanking(ctx, ranking))
	return phases, apps, seeded
}

func Test_Phases_ApplyDecision_WhenReplayed_ShouldApplyOnce(t *testing.T) {
	dbCtx := newTestDb(t)
	phases, apps, seeded := seedDecision(t, dbCtx)
	ctx := context.Background()
	plan := DecisionPlan{CycleID: "c1", Phase: entities.PhasePhase1, Track: entities.TrackTechnical,
		RankingVersion: 1, RejectRest: true, DecidedBy: "admin", Now: testNow}

	record, replayed, err := phases.ApplyDecision(ctx, plan)
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Equal(t, 2, record.Advanced)
	assert.Equal(t, 1, record.Rejected)

	again, replayed, err := phases.ApplyDecision(ctx, plan)
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, record.ID, again.ID)

	stages := map[string]entities.Stage{}
	for _, app := range seeded {
		stored, err := apps.GetByID(ctx, app.ID)
		require.NoError(t, err)
		stages[app.ApplicantID] = stored.Stage
	}
	assert.Equal(t, entities.StagePhase2Review, stages["u1"])
	assert.Equal(t, entities.StagePhase2Review, stages["u2"])
	assert.Equal(t, entities.StageRejected, stages["u3"])
}

func Test_Phases_ApplyDecision_WhenOneApplicationMoved_ShouldRollBackAll(t *testing.T) {
	dbCtx := newTestDb(t)
	phases, apps, seeded := seedDecision(t, dbCtx)
	ctx := context.Background()

	require.NoError(t, apps.TransitionStage(ctx, seeded[1].ID, entities.StagePhase1Review,
		entities.StageRejected, testNow))

	_, _, err := phases.ApplyDecision(ctx, DecisionPlan{CycleID: "c1", Phase: entities.PhasePhase1,
		Track: entities.TrackTechnical, RankingVersion: 1, Now: testNow})
	assert.True(t, apperr.Is(err, apperr.CodeConflict))

	first, err := apps.GetByID(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StagePhase1Review, first.Stage)

	decisions, err := phases.ListDecisions(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, decisions)
}

func Test_Phases_ApplyDecision_WhenVersionOutdated_ShouldConflict(t *testing.T) {
	dbCtx := newTestDb(t)
	phases, _, _ := seedDecision(t, dbCtx)

	_, _, err := phases.ApplyDecision(context.Background(), DecisionPlan{CycleID: "c1", Phase: entities.PhasePhase1,
		Track: entities.TrackTechnical, RankingVersion: 7, Now: testNow})

	assert.True(t, apperr.Is(err, apperr.CodeConflict))
}
