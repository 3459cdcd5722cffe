package response

import (
	"encoding/json"
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/maxaizer/club-portal/internal/logger"
	log "github.com/sirupsen/logrus"
	"net/http"
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeHttp).Errorf("failed to encode response: %v", err)
	}
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func StatusOf(code apperr.Code) int {
	switch code {
	case apperr.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperr.CodeForbidden:
		return http.StatusForbidden
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeConflict:
		return http.StatusConflict
	case apperr.CodeValidation:
		return http.StatusBadRequest
	case apperr.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err in the public error shape. Internal errors are logged and replaced by a generic message.
func Error(w http.ResponseWriter, err error) {
	appErr, ok := apperr.As(err)
	if !ok || appErr.Code == apperr.CodeInternal {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeHttp).Errorf("request failed: %v", err)
		JSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}
	JSON(w, StatusOf(appErr.Code), errorBody{Error: appErr.Message, Fields: appErr.Fields})
}
