package handlers

import (
	"github.com/maxaizer/club-portal/internal/entities"
	"github.com/maxaizer/club-portal/internal/http/response"
	"github.com/maxaizer/club-portal/internal/services"
	"net/http"
	"time"
)

type EventHandler struct {
	events *services.EventService
}

func NewEventHandler(events *services.EventService) *EventHandler {
	return &EventHandler{events: events}
}

type eventRequest struct {
	Title       string    `json:"title" validate:"required,max=255"`
	Description string    `json:"description" validate:"max=20000"`
	Location    string    `json:"location" validate:"max=255"`
	StartsAt    time.Time `json:"startsAt"`
	EndsAt      time.Time `json:"endsAt"`
	Capacity    int       `json:"capacity" validate:"gte=1"`
	Published   bool      `json:"published"`
}

func (req eventRequest) toEntity(id string) entities.Event {
	return entities.Event{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt.UTC(),
		EndsAt:      req.EndsAt.UTC(),
		Capacity:    req.Capacity,
		Published:   req.Published,
	}
}

type checkInRequest struct {
	UserID string `json:"userId" validate:"required"`
}

func (h *EventHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List(r.Context(), true)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, events)
}

func (h *EventHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List(r.Context(), false)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, events)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.Get(r.Context(), r.PathValue("id"), principalFrom(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, event)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	event, err := h.events.Create(r.Context(), req.toEntity(""))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, event)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	event, err := h.events.Update(r.Context(), req.toEntity(r.PathValue("id")))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, event)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.events.Delete(r.Context(), r.PathValue("id")); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}

func (h *EventHandler) RSVP(w http.ResponseWriter, r *http.Request) {
	attendance, err := h.events.RSVP(r.Context(), r.PathValue("id"), principalFrom(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, attendance)
}

func (h *EventHandler) CancelRSVP(w http.ResponseWriter, r *http.Request) {
	attendance, err := h.events.CancelRSVP(r.Context(), r.PathValue("id"), principalFrom(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, attendance)
}

func (h *EventHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	attendances, err := h.events.ListMine(r.Context(), principalFrom(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, attendances)
}

func (h *EventHandler) Attendance(w http.ResponseWriter, r *http.Request) {
	attendances, err := h.events.ListAttendance(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, attendances)
}

func (h *EventHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if err := h.events.CheckIn(r.Context(), r.PathValue("id"), req.UserID); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}
