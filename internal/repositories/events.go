package repositories

import (
	"context"
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/entities"
	"gorm.io/gorm"
	"time"
)

type Events struct {
	db *gorm.DB
}

func NewEventsRepository(db *gorm.DB) *Events {
	return &Events{db: db}
}

func (repo *Events) Add(ctx context.Context, event *entities.Event) error {
	return translate(repo.db.WithContext(ctx).Create(event).Error, "event")
}

// Update never lets capacity drop below the registered attendee count. Seats added by a larger capacity
// go to the waitlist in queue order before any new RSVP can take them.
func (repo *Events) Update(ctx context.Context, event entities.Event) ([]entities.Attendance, error) {
	var promoted []entities.Attendance
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.Model(&entities.Event{}).
			Where("id = ? AND attendee_count <= ?", event.ID, event.Capacity).
			Updates(map[string]any{
				"title":       event.Title,
				"description": event.Description,
				"location":    event.Location,
				"starts_at":   event.StartsAt,
				"ends_at":     event.EndsAt,
				"capacity":    event.Capacity,
				"published":   event.Published,
				"updated_at":  now,
			})
		if res.Error != nil {
			return translate(res.Error, "event")
		}
		if res.RowsAffected == 0 {
			var stored entities.Event
			if err := tx.First(&stored, "id = ?", event.ID).Error; err != nil {
				return translate(err, "event")
			}
			return apperr.Conflict("capacity is below the number of registered attendees")
		}

		var err error
		promoted, err = promoteWaitlisted(tx, event.ID, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return promoted, nil
}

// promoteWaitlisted fills free seats from the waitlist, earliest queued first.
func promoteWaitlisted(tx *gorm.DB, eventID string, now time.Time) ([]entities.Attendance, error) {
	var stored entities.Event
	if err := tx.First(&stored, "id = ?", eventID).Error; err != nil {
		return nil, translate(err, "event")
	}
	free := stored.Capacity - stored.AttendeeCount
	if free <= 0 {
		return nil, nil
	}

	var waiting []entities.Attendance
	err := tx.Where("event_id = ? AND status = ?", eventID, entities.AttendanceWaitlisted).
		Order("queued_at ASC").Order("id ASC").Limit(free).Find(&waiting).Error
	if err != nil {
		return nil, translate(err, "attendance")
	}
	if len(waiting) == 0 {
		return nil, nil
	}

	for i := range waiting {
		res := tx.Model(&entities.Attendance{}).
			Where("id = ? AND status = ?", waiting[i].ID, entities.AttendanceWaitlisted).
			Updates(map[string]any{"status": entities.AttendanceRegistered, "updated_at": now})
		if res.Error != nil {
			return nil, translate(res.Error, "attendance")
		}
		if res.RowsAffected == 0 {
			return nil, apperr.Conflict("waitlist changed concurrently")
		}
		waiting[i].Status = entities.AttendanceRegistered
	}

	res := tx.Model(&entities.Event{}).
		Where("id = ? AND attendee_count + ? <= capacity", eventID, len(waiting)).
		UpdateColumn("attendee_count", gorm.Expr("attendee_count + ?", len(waiting)))
	if res.Error != nil {
		return nil, translate(res.Error, "event")
	}
	if res.RowsAffected == 0 {
		return nil, apperr.Conflict("event seats changed concurrently")
	}
	return waiting, nil
}

func (repo *Events) GetByID(ctx context.Context, id string) (*entities.Event, error) {
	var event entities.Event
	if err := repo.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, translate(err, "event")
	}
	return &event, nil
}

func (repo *Events) List(ctx context.Context, publishedOnly bool) ([]entities.Event, error) {
	query := repo.db.WithContext(ctx).Model(&entities.Event{})
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	var events []entities.Event
	if err := query.Order("starts_at").Find(&events).Error; err != nil {
		return nil, translate(err, "event")
	}
	return events, nil
}

func (repo *Events) Remove(ctx context.Context, id string) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entities.Attendance{}, "event_id = ?", id).Error; err != nil {
			return translate(err, "attendance")
		}
		res := tx.Delete(&entities.Event{}, "id = ?", id)
		if res.Error != nil {
			return translate(res.Error, "event")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("event")
		}
		return nil
	})
}

// RSVP registers the user while seats are left and puts them on the waitlist otherwise.
func (repo *Events) RSVP(ctx context.Context, eventID, userID, email string, now time.Time) (*entities.Attendance, error) {
	var attendance entities.Attendance
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ? AND user_id = ?", eventID, userID).Limit(1).Find(&attendance).Error; err != nil {
			return translate(err, "attendance")
		}
		if attendance.ID != "" && attendance.Status != entities.AttendanceCancelled {
			return apperr.Conflict("already registered for this event")
		}

		res := tx.Model(&entities.Event{}).
			Where("id = ? AND attendee_count < capacity", eventID).
			UpdateColumn("attendee_count", gorm.Expr("attendee_count + ?", 1))
		if res.Error != nil {
			return translate(res.Error, "event")
		}

		status := entities.AttendanceRegistered
		if res.RowsAffected == 0 {
			status = entities.AttendanceWaitlisted
		}

		if attendance.ID == "" {
			attendance = entities.Attendance{EventID: eventID, UserID: userID, Email: email, Status: status, QueuedAt: now}
			if err := tx.Create(&attendance).Error; err != nil {
				if isUniqueViolation(err) {
					return apperr.Conflict("already registered for this event")
				}
				return translate(err, "attendance")
			}
			return nil
		}

		attendance.Status, attendance.QueuedAt, attendance.Email = status, now, email
		res = tx.Model(&entities.Attendance{}).
			Where("id = ? AND status = ?", attendance.ID, entities.AttendanceCancelled).
			Updates(map[string]any{"status": status, "queued_at": now, "email": email, "updated_at": now})
		if res.Error != nil {
			return translate(res.Error, "attendance")
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("already registered for this event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &attendance, nil
}

// CancelRSVP frees the seat of a registered attendee and hands it to the earliest waitlisted one.
func (repo *Events) CancelRSVP(ctx context.Context, eventID, userID string,
	now time.Time) (*entities.Attendance, *entities.Attendance, error) {

	var cancelled entities.Attendance
	var promoted *entities.Attendance

	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("event_id = ? AND user_id = ? AND status IN ?", eventID, userID,
			[]entities.AttendanceStatus{entities.AttendanceRegistered, entities.AttendanceWaitlisted}).
			First(&cancelled).Error
		if err != nil {
			return translate(err, "attendance")
		}

		wasRegistered := cancelled.Status == entities.AttendanceRegistered
		res := tx.Model(&entities.Attendance{}).Where("id = ? AND status = ?", cancelled.ID, cancelled.Status).
			Updates(map[string]any{"status": entities.AttendanceCancelled, "updated_at": now})
		if res.Error != nil {
			return translate(res.Error, "attendance")
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("attendance changed concurrently")
		}
		cancelled.Status = entities.AttendanceCancelled

		if !wasRegistered {
			return nil
		}

		var next entities.Attendance
		err = tx.Where("event_id = ? AND status = ?", eventID, entities.AttendanceWaitlisted).
			Order("queued_at ASC").Order("id ASC").Limit(1).Find(&next).Error
		if err != nil {
			return translate(err, "attendance")
		}

		if next.ID == "" {
			return translate(tx.Model(&entities.Event{}).
				Where("id = ? AND attendee_count > 0", eventID).
				UpdateColumn("attendee_count", gorm.Expr("attendee_count - ?", 1)).Error, "event")
		}

		res = tx.Model(&entities.Attendance{}).Where("id = ? AND status = ?", next.ID, entities.AttendanceWaitlisted).
			Updates(map[string]any{"status": entities.AttendanceRegistered, "updated_at": now})
		if res.Error != nil {
			return translate(res.Error, "attendance")
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("waitlist changed concurrently")
		}
		next.Status = entities.AttendanceRegistered
		promoted = &next
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &cancelled, promoted, nil
}

func (repo *Events) CheckIn(ctx context.Context, eventID, userID string, now time.Time) error {
	res := repo.db.WithContext(ctx).Model(&entities.Attendance{}).
		Where("event_id = ? AND user_id = ? AND status = ?", eventID, userID, entities.AttendanceRegistered).
		Updates(map[string]any{"status": entities.AttendanceAttended, "checked_in_at": now, "updated_at": now})
	if res.Error != nil {
		return translate(res.Error, "attendance")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("registered attendance")
	}
	return nil
}

func (repo *Events) ListAttendance(ctx context.Context, eventID string) ([]entities.Attendance, error) {
	var attendances []entities.Attendance
	err := repo.db.WithContext(ctx).Order("queued_at").Order("id").Find(&attendances, "event_id = ?", eventID).Error
	if err != nil {
		return nil, translate(err, "attendance")
	}
	return attendances, nil
}

func (repo *Events) ListAttendanceByUser(ctx context.Context, userID string) ([]entities.Attendance, error) {
	var attendances []entities.Attendance
	err := repo.db.WithContext(ctx).Order("queued_at").Find(&attendances, "user_id = ?", userID).Error
	if err != nil {
		return nil, translate(err, "attendance")
	}
	return attendances, nil
}
