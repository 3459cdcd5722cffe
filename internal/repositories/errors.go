package repositories

import (
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"strings"
)

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}

// translate maps driver errors onto the application error taxonomy.
func translate(err error, entity string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(entity)
	}
	if isUniqueViolation(err) {
		return apperr.Conflict(entity + " already exists")
	}
	return errors.Wrap(err, entity)
}
