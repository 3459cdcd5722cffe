package handlers

import (
	"encoding/json"
	"github.com/maxaizer/club-portal/internal/entities"
	"github.com/maxaizer/club-portal/internal/http/response"
	"github.com/maxaizer/club-portal/internal/services"
	"net/http"
	"strconv"
)

type SettingsHandler struct {
	settings    *services.SettingsService
	content     *services.ContentService
	maintenance *services.MaintenanceGate
}

func NewSettingsHandler(settings *services.SettingsService, content *services.ContentService,
	maintenance *services.MaintenanceGate) *SettingsHandler {

	return &SettingsHandler{settings: settings, content: content, maintenance: maintenance}
}

type settingRequest struct {
	Value string               `json:"value" validate:"max=65536"`
	Type  entities.SettingType `json:"type" validate:"required,oneof=boolean string number json"`
}

type contentRequest struct {
	Body            json.RawMessage `json:"body" validate:"required"`
	ExpectedVersion int             `json:"expectedVersion" validate:"gte=0"`
}

// MaintenancePage is what redirected visitors land on.
func (h *SettingsHandler) MaintenancePage(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"maintenance": h.maintenance.Enabled(r.Context()),
		"message":     "The portal is temporarily down for maintenance.",
	})
}

func (h *SettingsHandler) List(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	setting, err := h.settings.Get(r.Context(), r.PathValue("key"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, setting)
}

func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req settingRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	setting, err := h.settings.Put(r.Context(), entities.Setting{
		Key:   r.PathValue("key"),
		Value: req.Value,
		Type:  req.Type,
	}, principalFrom(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, setting)
}

func (h *SettingsHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	block, err := h.content.Get(r.Context(), r.PathValue("key"))
	if err != nil {
		response.Error(w, err)
		return
	}
	w.Header().Set("ETag", strconv.Quote(strconv.Itoa(block.Version)))
	response.JSON(w, http.StatusOK, block)
}

func (h *SettingsHandler) ListContent(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.content.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, blocks)
}

func (h *SettingsHandler) PutContent(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	block, err := h.content.Put(r.Context(), r.PathValue("key"), req.Body, req.ExpectedVersion, principalFrom(r))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, block)
}

func (h *SettingsHandler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	if err := h.content.Delete(r.Context(), r.PathValue("key")); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}
