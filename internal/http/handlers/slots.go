package handlers

import (
	"github.com/maxaizer/club-portal/internal/entities"
	"github.com/maxaizer/club-portal/internal/http/response"
	"github.com/maxaizer/club-portal/internal/services"
	"github.com/samber/lo"
	"net/http"
)

type SlotHandler struct {
	slots *services.SlotService
}

func NewSlotHandler(slots *services.SlotService) *SlotHandler {
	return &SlotHandler{slots: slots}
}

type slotRequest struct {
	Kind      entities.SlotKind `json:"kind" validate:"required,oneof=interview coffee_chat"`
	Date      string            `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string            `json:"startTime" validate:"required,datetime=15:04"`
	EndTime   string            `json:"endTime" validate:"required,datetime=15:04"`
	Room      string            `json:"room" validate:"max=128"`
	Host      string            `json:"host" validate:"max=128"`
	Capacity  int               `json:"capacity" validate:"gte=1"`
}

func (req slotRequest) toEntity() entities.Slot {
	return entities.Slot{
		Kind:      req.Kind,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Room:      req.Room,
		Host:      req.Host,
		Capacity:  req.Capacity,
	}
}

type seedSlotsRequest struct {
	Slots []slotRequest `json:"slots" validate:"required,min=1,dive"`
}

func (h *SlotHandler) List(w http.ResponseWriter, r *http.Request) {
	slots, err := h.slots.List(r.Context(), r.PathValue("id"), entities.SlotKind(r.URL.Query().Get("kind")),
		!queryBool(r, "all"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, slots)
}

func (h *SlotHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	slots, err := h.slots.List(r.Context(), r.PathValue("id"), entities.SlotKind(r.URL.Query().Get("kind")), false)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, slots)
}

func (h *SlotHandler) Seed(w http.ResponseWriter, r *http.Request) {
	var req seedSlotsRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	slots := lo.Map(req.Slots, func(slot slotRequest, _ int) entities.Slot { return slot.toEntity() })
	created, err := h.slots.Seed(r.Context(), r.PathValue("id"), slots)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *SlotHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req slotRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	slot := req.toEntity()
	slot.ID = r.PathValue("id")
	updated, err := h.slots.Update(r.Context(), slot)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *SlotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.slots.Delete(r.Context(), r.PathValue("id")); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}

func (h *SlotHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.slots.ListBookings(r.Context(), r.PathValue("id"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, bookings)
}

func (h *SlotHandler) Book(w http.ResponseWriter, r *http.Request) {
	booking, err := h.slots.Book(r.Context(), r.PathValue("id"), principalFrom(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, booking)
}

func (h *SlotHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.slots.ListMine(r.Context(), principalFrom(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, bookings)
}

func (h *SlotHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if _, err := h.slots.Cancel(r.Context(), r.PathValue("id"), principalFrom(r)); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}
