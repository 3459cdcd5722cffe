package repositories

import (
	"context"
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"time"
)

type Phases struct {
	db *gorm.DB
}

func NewPhasesRepository(db *gorm.DB) *Phases {
	return &Phases{db: db}
}

func (repo *Phases) AddConfig(ctx context.Context, cfg *entities.PhaseConfig) error {
	err := repo.db.WithContext(ctx).Create(cfg).Error
	if err != nil && isUniqueViolation(err) {
		return apperr.Conflict("phase config already exists for this cycle, phase and track")
	}
	return translate(err, "phase config")
}

func (repo *Phases) UpdateConfig(ctx context.Context, cfg entities.PhaseConfig) error {
	res := repo.db.WithContext(ctx).Model(&entities.PhaseConfig{}).Where("id = ?", cfg.ID).
		Updates(map[string]any{
			"criteria":   cfg.Criteria,
			"reviewers":  cfg.Reviewers,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return translate(res.Error, "phase config")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("phase config")
	}
	return nil
}

func (repo *Phases) GetConfig(ctx context.Context, id string) (*entities.PhaseConfig, error) {
	var cfg entities.PhaseConfig
	if err := repo.db.WithContext(ctx).First(&cfg, "id = ?", id).Error; err != nil {
		return nil, translate(err, "phase config")
	}
	return &cfg, nil
}

func (repo *Phases) FindConfig(ctx context.Context, cycleID string, phase entities.Phase,
	track entities.Track) (*entities.PhaseConfig, error) {

	var cfg entities.PhaseConfig
	err := repo.db.WithContext(ctx).
		First(&cfg, "cycle_id = ? AND phase = ? AND track = ?", cycleID, phase, track).Error
	if err != nil {
		return nil, translate(err, "phase config")
	}
	return &cfg, nil
}

func (repo *Phases) ListConfigs(ctx context.Context, cycleID string) ([]entities.PhaseConfig, error) {
	var configs []entities.PhaseConfig
	err := repo.db.WithContext(ctx).Order("phase").Order("track").Find(&configs, "cycle_id = ?", cycleID).Error
	if err != nil {
		return nil, translate(err, "phase config")
	}
	return configs, nil
}

func (repo *Phases) RemoveConfig(ctx context.Context, id string) error {
	res := repo.db.WithContext(ctx).Delete(&entities.PhaseConfig{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "phase config")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("phase config")
	}
	return nil
}

// UpsertScore keeps one score per reviewer, application and phase.
func (repo *Phases) UpsertScore(ctx context.Context, score *entities.PhaseScore) error {
	score.UpdatedAt = time.Now().UTC()
	err := repo.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "application_id"}, {Name: "phase"}, {Name: "reviewer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "comment", "updated_at"}),
	}).Create(score).Error
	return translate(err, "phase score")
}

func (repo *Phases) ListScores(ctx context.Context, cycleID string, phase entities.Phase) ([]entities.PhaseScore, error) {
	var scores []entities.PhaseScore
	err := repo.db.WithContext(ctx).Order("application_id").Order("reviewer_id").
		Find(&scores, "cycle_id = ? AND phase = ?", cycleID, phase).Error
	if err != nil {
		return nil, translate(err, "phase score")
	}
	return scores, nil
}

// SaveRanking stores a freshly computed ranking as the next version for its (cycle, phase, track).
func (repo *Phases) SaveRanking(ctx context.Context, ranking *entities.PhaseRanking) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current entities.PhaseRanking
		err := tx.Where("cycle_id = ? AND phase = ? AND track = ?", ranking.CycleID, ranking.Phase, ranking.Track).
			Limit(1).Find(&current).Error
		if err != nil {
			return translate(err, "ranking")
		}

		if current.ID == "" {
			ranking.Version = 1
			if err = tx.Create(ranking).Error; err != nil && isUniqueViolation(err) {
				return apperr.Conflict("ranking was recomputed concurrently")
			}
			return translate(err, "ranking")
		}

		ranking.ID = current.ID
		ranking.Version = current.Version + 1
		res := tx.Model(&entities.PhaseRanking{}).
			Where("id = ? AND version = ?", current.ID, current.Version).
			Updates(map[string]any{
				"version":     ranking.Version,
				"criteria":    ranking.Criteria,
				"entries":     ranking.Entries,
				"computed_at": ranking.ComputedAt,
			})
		if res.Error != nil {
			return translate(res.Error, "ranking")
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("ranking was recomputed concurrently")
		}
		return nil
	})
}

func (repo *Phases) GetRanking(ctx context.Context, cycleID string, phase entities.Phase,
	track entities.Track) (*entities.PhaseRanking, error) {

	var ranking entities.PhaseRanking
	err := repo.db.WithContext(ctx).
		First(&ranking, "cycle_id = ? AND phase = ? AND track = ?", cycleID, phase, track).Error
	if err != nil {
		return nil, translate(err, "ranking")
	}
	return &ranking, nil
}

type DecisionPlan struct {
	CycleID        string
	Phase          entities.Phase
	Track          entities.Track
	RankingVersion int
	RejectRest     bool
	DecidedBy      string
	Now            time.Time
}

// ApplyDecision moves every qualified entry of the ranking version forward in one transaction.
// A record for the same version is returned untouched, so replays do not apply twice.
// The bool result reports whether the decision had been applied before.
func (repo *Phases) ApplyDecision(ctx context.Context, plan DecisionPlan) (*entities.DecisionRecord, bool, error) {
	var record entities.DecisionRecord
	replayed := false

	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("cycle_id = ? AND phase = ? AND track = ? AND ranking_version = ?",
			plan.CycleID, plan.Phase, plan.Track, plan.RankingVersion).Limit(1).Find(&record).Error
		if err != nil {
			return translate(err, "decision")
		}
		if record.ID != "" {
			replayed = true
			return nil
		}

		var ranking entities.PhaseRanking
		err = tx.First(&ranking, "cycle_id = ? AND phase = ? AND track = ?", plan.CycleID, plan.Phase, plan.Track).Error
		if err != nil {
			return translate(err, "ranking")
		}
		if ranking.Version != plan.RankingVersion {
			return apperr.Conflict("ranking version is outdated")
		}

		from, advance := plan.Phase.ReviewStage(), plan.Phase.AdvanceStage()
		record = entities.DecisionRecord{
			CycleID:        plan.CycleID,
			Phase:          plan.Phase,
			Track:          plan.Track,
			RankingVersion: plan.RankingVersion,
			DecidedBy:      plan.DecidedBy,
		}

		for _, entry := range ranking.Entries {
			to := advance
			if !entry.Qualified {
				if !plan.RejectRest {
					continue
				}
				to = entities.StageRejected
			}

			res := tx.Model(&entities.Application{}).
				Where("id = ? AND stage = ?", entry.ApplicationID, from).
				Updates(map[string]any{"stage": to, "stage_changed_at": plan.Now, "updated_at": plan.Now})
			if res.Error != nil {
				return translate(res.Error, "application")
			}
			if res.RowsAffected == 0 {
				return apperr.Newf(apperr.CodeConflict, "application %s is no longer in %s", entry.ApplicationID, from)
			}

			if entry.Qualified {
				record.Advanced++
			} else {
				record.Rejected++
			}
		}

		if err = tx.Create(&record).Error; err != nil && isUniqueViolation(err) {
			return apperr.Conflict("decision was applied concurrently")
		}
		return translate(err, "decision")
	})
	if err != nil {
		return nil, false, err
	}
	return &record, replayed, nil
}

func (repo *Phases) ListDecisions(ctx context.Context, cycleID string) ([]entities.DecisionRecord, error) {
	var records []entities.DecisionRecord
	if err := repo.db.WithContext(ctx).Order("created_at").Find(&records, "cycle_id = ?", cycleID).Error; err != nil {
		return nil, translate(err, "decision")
	}
	return records, nil
}
