package handlers

import (
	"github.com/maxaizer/club-portal/internal/entities"
	"github.com/maxaizer/club-portal/internal/http/response"
	"github.com/maxaizer/club-portal/internal/services"
	"gorm.io/datatypes"
	"net/http"
)

type PhaseHandler struct {
	phases *services.PhaseService
}

func NewPhaseHandler(phases *services.PhaseService) *PhaseHandler {
	return &PhaseHandler{phases: phases}
}

type phaseConfigRequest struct {
	CycleID   string                  `json:"cycleId" validate:"required"`
	Phase     entities.Phase          `json:"phase" validate:"required,oneof=phase1 phase2 interview"`
	Track     entities.Track          `json:"track" validate:"required,oneof=technical business both"`
	Criteria  entities.CutoffCriteria `json:"criteria"`
	Reviewers []string                `json:"reviewers" validate:"dive,max=255"`
}

type phaseConfigUpdateRequest struct {
	Criteria  entities.CutoffCriteria `json:"criteria"`
	Reviewers []string                `json:"reviewers" validate:"dive,max=255"`
}

type rankingRequest struct {
	CycleID string         `json:"cycleId" validate:"required"`
	Phase   entities.Phase `json:"phase" validate:"required,oneof=phase1 phase2 interview"`
	Track   entities.Track `json:"track" validate:"required,oneof=technical business both"`
}

func (h *PhaseHandler) ListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := h.phases.ListConfigs(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, configs)
}

func (h *PhaseHandler) CreateConfig(w http.ResponseWriter, r *http.Request) {
	var req phaseConfigRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	cfg, err := h.phases.CreateConfig(r.Context(), entities.PhaseConfig{
		CycleID:   req.CycleID,
		Phase:     req.Phase,
		Track:     req.Track,
		Criteria:  datatypes.NewJSONType(req.Criteria),
		Reviewers: req.Reviewers,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, cfg)
}

func (h *PhaseHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.phases.GetConfig(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, cfg)
}

func (h *PhaseHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req phaseConfigUpdateRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	cfg, err := h.phases.UpdateConfig(r.Context(), r.PathValue("id"), req.Criteria, req.Reviewers)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, cfg)
}

func (h *PhaseHandler) DeleteConfig(w http.ResponseWriter, r *http.Request) {
	if err := h.phases.DeleteConfig(r.Context(), r.PathValue("id")); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}

func (h *PhaseHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var req services.ScoreRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	score, err := h.phases.SubmitScore(r.Context(), principalFrom(r), req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, score)
}

func (h *PhaseHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	var req rankingRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	ranking, err := h.phases.Recompute(r.Context(), req.CycleID, req.Phase, req.Track)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, ranking)
}

func (h *PhaseHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := rankingRequest{
		CycleID: query.Get("cycleId"),
		Phase:   entities.Phase(query.Get("phase")),
		Track:   entities.Track(query.Get("track")),
	}
	if err := validateStruct(req); err != nil {
		response.Error(w, err)
		return
	}
	ranking, err := h.phases.GetRanking(r.Context(), req.CycleID, req.Phase, req.Track)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, ranking)
}

func (h *PhaseHandler) ApplyDecision(w http.ResponseWriter, r *http.Request) {
	var req services.PhaseDecisionAction
	if err := decodeAndValidate(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	record, err := h.phases.ApplyDecision(r.Context(), req, principalFrom(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, record)
}

func (h *PhaseHandler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	records, err := h.phases.ListDecisions(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, records)
}
