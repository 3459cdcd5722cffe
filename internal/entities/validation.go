package entities

import "github.com/maxaizer/club-portal/internal/apperr"

func validationError(message string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return apperr.Validation(message, fields)
}
