package services

import (
	"context"
	"encoding/json"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/club-portal/internal/entities"
	"github.com/maxaizer/club-portal/internal/events"
	"github.com/maxaizer/club-portal/internal/logger"
	"github.com/maxaizer/club-portal/internal/repositories"
	log "github.com/sirupsen/logrus"
	"time"
)

type auditRepository interface {
	Add(ctx context.Context, entry *entities.AuditEntry) error
	List(ctx context.Context, filter repositories.AuditFilter) ([]entities.AuditEntry, error)
}

// AuditRecorder persists every domain event published on the bus.
type AuditRecorder struct {
	bus      EventBus.Bus
	audit    auditRepository
	timeout  time.Duration
	handlers map[string]any
}

func NewAuditRecorder(bus EventBus.Bus, audit auditRepository) *AuditRecorder {
	r := &AuditRecorder{bus: bus, audit: audit, timeout: 5 * time.Second}
	r.handlers = map[string]any{
		events.ApplicationSubmittedTopic: func(e events.ApplicationSubmitted) {
			r.record("application.submitted", e.Application.ApplicantID, e.Application.ID, map[string]any{
				"cycleId": e.Application.CycleID, "track": e.Application.Track,
			})
		},
		events.ApplicationStageChangedTopic: func(e events.ApplicationStageChanged) {
			r.record("application.stage_changed", e.ActorID, e.ApplicationID, e)
		},
		events.DecisionAppliedTopic: func(e events.DecisionApplied) {
			r.record("phase.decision_applied", e.Record.DecidedBy, e.Record.CycleID, e.Record)
		},
		events.QuestionsChangedTopic: func(e events.QuestionsChanged) {
			r.record("questions.changed", e.ActorID, e.Set.CycleID, map[string]any{
				"track": e.Set.Track, "questions": len(e.Set.Questions),
			})
		},
		events.SlotBookedTopic: func(e events.SlotBooked) {
			r.record("slot.booked", e.Booking.ApplicantID, e.Booking.SlotID, e.Booking)
		},
		events.BookingCancelledTopic: func(e events.BookingCancelled) {
			r.record("slot.booking_cancelled", e.ActorID, e.Booking.SlotID, e.Booking)
		},
		events.SettingChangedTopic: func(e events.SettingChanged) {
			r.record("setting.changed", e.Setting.UpdatedBy, e.Setting.Key, e.Setting)
		},
		events.ContentChangedTopic: func(e events.ContentChanged) {
			r.record("content.changed", e.Block.UpdatedBy, e.Block.Key, map[string]any{"version": e.Block.Version})
		},
		events.RSVPChangedTopic: func(e events.RSVPChanged) {
			r.record("event.rsvp_"+string(e.Attendance.Status), e.Attendance.UserID, e.Attendance.EventID, e)
		},
		events.CycleChangedTopic: func(e events.CycleChanged) {
			r.record("cycle."+e.Action, e.ActorID, e.Cycle.ID, map[string]any{"name": e.Cycle.Name})
		},
	}
	return r
}

// Start subscribes asynchronously so publishers never wait on the audit insert.
// Entries of one topic are written in publish order.
func (r *AuditRecorder) Start() error {
	for topic, handler := range r.handlers {
		if err := r.bus.SubscribeAsync(topic, handler, true); err != nil {
			return err
		}
	}
	return nil
}

// Flush waits until every event published so far has been written.
func (r *AuditRecorder) Flush() {
	r.bus.WaitAsync()
}

func (r *AuditRecorder) Stop() {
	for topic, handler := range r.handlers {
		_ = r.bus.Unsubscribe(topic, handler)
	}
	r.Flush()
}

func (r *AuditRecorder) List(ctx context.Context, filter repositories.AuditFilter) ([]entities.AuditEntry, error) {
	return r.audit.List(ctx, filter)
}

func (r *AuditRecorder) record(action, actorID, subject string, detail any) {
	body, err := json.Marshal(detail)
	if err != nil {
		log.Errorf("failed to encode audit detail for %s: %v", action, err)
		body = []byte("{}")
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	entry := entities.AuditEntry{Action: action, ActorID: actorID, Subject: subject, Detail: body}
	if err = r.audit.Add(ctx, &entry); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to record %s: %v", action, err)
	}
}
