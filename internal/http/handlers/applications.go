package handlers

import (
	"github.com/maxaizer/club-portal/internal/entities"
	"github.com/maxaizer/club-portal/internal/http/response"
	"github.com/maxaizer/club-portal/internal/repositories"
	"github.com/maxaizer/club-portal/internal/services"
	"net/http"
)

type ApplicationHandler struct {
	applications *services.ApplicationService
}

func NewApplicationHandler(applications *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

type transitionRequest struct {
	Stage    entities.Stage `json:"stage" validate:"required"`
	Override bool           `json:"override"`
}

func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req services.SubmitApplicationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	application, err := h.applications.Submit(r.Context(), principalFrom(r), req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, application)
}

func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	applications, err := h.applications.ListMine(r.Context(), principalFrom(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, applications)
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	applications, err := h.applications.List(r.Context(), repositories.ApplicationFilter{
		CycleID: query.Get("cycleId"),
		Track:   entities.Track(query.Get("track")),
		Stage:   entities.Stage(query.Get("stage")),
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, applications)
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	application, err := h.applications.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, application)
}

func (h *ApplicationHandler) Transition(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	application, err := h.applications.Transition(r.Context(), r.PathValue("id"), req.Stage, req.Override,
		principalFrom(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, application)
}

func (h *ApplicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.applications.Delete(r.Context(), r.PathValue("id")); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}
