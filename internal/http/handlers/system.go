package handlers

import (
	"context"
	"github.com/maxaizer/club-portal/internal/http/response"
	"github.com/maxaizer/club-portal/internal/logger"
	"github.com/maxaizer/club-portal/internal/repositories"
	"github.com/maxaizer/club-portal/internal/services"
	log "github.com/sirupsen/logrus"
	"net/http"
	"strconv"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type SystemHandler struct {
	db    pinger
	audit *services.AuditRecorder
}

func NewSystemHandler(db pinger, audit *services.AuditRecorder) *SystemHandler {
	return &SystemHandler{db: db, audit: audit}
}

func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("health check failed: %v", err)
		response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SystemHandler) Audit(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	entries, err := h.audit.List(r.Context(), repositories.AuditFilter{
		Action:  query.Get("action"),
		Subject: query.Get("subject"),
		Limit:   limit,
		Offset:  max(offset, 0),
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, entries)
}
