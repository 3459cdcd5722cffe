package handlers

import (
	"github.com/maxaizer/club-portal/internal/entities"
	"github.com/maxaizer/club-portal/internal/http/response"
	"github.com/maxaizer/club-portal/internal/services"
	"net/http"
	"time"
)

type CycleHandler struct {
	cycles    *services.CycleService
	questions *services.QuestionService
}

func NewCycleHandler(cycles *services.CycleService, questions *services.QuestionService) *CycleHandler {
	return &CycleHandler{cycles: cycles, questions: questions}
}

type cycleRequest struct {
	Name             string     `json:"name" validate:"required,max=128"`
	PortalOpenAt     time.Time  `json:"portalOpenAt"`
	PortalCloseAt    time.Time  `json:"portalCloseAt"`
	ApplicationDueAt *time.Time `json:"applicationDueAt"`
}

func (req cycleRequest) toEntity(id string) entities.Cycle {
	return entities.Cycle{
		ID:               id,
		Name:             req.Name,
		PortalOpenAt:     req.PortalOpenAt,
		PortalCloseAt:    req.PortalCloseAt,
		ApplicationDueAt: req.ApplicationDueAt,
	}
}

type questionSetRequest struct {
	Questions []entities.Question `json:"questions"`
}

func (h *CycleHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.cycles.PortalStatus(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, status)
}

func (h *CycleHandler) Active(w http.ResponseWriter, r *http.Request) {
	cycle, err := h.cycles.GetActive(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, cycle)
}

func (h *CycleHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	cycle, err := h.cycles.GetUpcoming(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, cycle)
}

func (h *CycleHandler) Questions(w http.ResponseWriter, r *http.Request) {
	set, err := h.questions.GetByCycle(r.Context(), r.PathValue("id"), entities.Track(r.URL.Query().Get("track")))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, set)
}

func (h *CycleHandler) List(w http.ResponseWriter, r *http.Request) {
	cycles, err := h.cycles.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, cycles)
}

func (h *CycleHandler) Get(w http.ResponseWriter, r *http.Request) {
	cycle, err := h.cycles.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, cycle)
}

func (h *CycleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req cycleRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	cycle, err := h.cycles.Create(r.Context(), req.toEntity(""), principalFrom(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, cycle)
}

func (h *CycleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req cycleRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	cycle, err := h.cycles.Update(r.Context(), req.toEntity(r.PathValue("id")), principalFrom(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, cycle)
}

func (h *CycleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.cycles.Delete(r.Context(), r.PathValue("id"), principalFrom(r)); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}

func (h *CycleHandler) Activate(w http.ResponseWriter, r *http.Request) {
	cycle, err := h.cycles.Activate(r.Context(), r.PathValue("id"), principalFrom(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, cycle)
}

func (h *CycleHandler) Close(w http.ResponseWriter, r *http.Request) {
	cycle, err := h.cycles.Close(r.Context(), r.PathValue("id"), principalFrom(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, cycle)
}

func (h *CycleHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	sets, err := h.questions.List(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, sets)
}

func (h *CycleHandler) PutQuestions(w http.ResponseWriter, r *http.Request) {
	var req questionSetRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	set, err := h.questions.Upsert(r.Context(), entities.QuestionSet{
		CycleID:   r.PathValue("id"),
		Track:     entities.Track(r.PathValue("track")),
		Questions: req.Questions,
	}, principalFrom(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, set)
}

func (h *CycleHandler) DeleteQuestions(w http.ResponseWriter, r *http.Request) {
	if err := h.questions.Delete(r.Context(), r.PathValue("id"), entities.Track(r.PathValue("track"))); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}
