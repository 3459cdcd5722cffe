package response

import (
	"encoding/json"
	"github.com/maxaizer/club-portal/internal/apperr"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
)

func Test_Error_ShouldMapCodesToStatuses(t *testing.T) {
	cases := map[apperr.Code]int{
		apperr.CodeUnauthorized: http.StatusUnauthorized,
		apperr.CodeForbidden:    http.StatusForbidden,
		apperr.CodeNotFound:     http.StatusNotFound,
		apperr.CodeConflict:     http.StatusConflict,
		apperr.CodeValidation:   http.StatusBadRequest,
		apperr.CodeRateLimited:  http.StatusTooManyRequests,
	}
	for code, status := range cases {
		recorder := httptest.NewRecorder()
		Error(recorder, apperr.New(code, "boom"))
		assert.Equal(t, status, recorder.Code, string(code))
	}
}

func Test_Error_WhenValidation_ShouldIncludeFields(t *testing.T) {
	recorder := httptest.NewRecorder()

	Error(recorder, apperr.Validation("invalid cycle", map[string]string{"name": "required"}))

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "invalid cycle", body["error"])
	assert.Equal(t, map[string]any{"name": "required"}, body["fields"])
}

func Test_Error_WhenUnexpected_ShouldNotLeakDetails(t *testing.T) {
	recorder := httptest.NewRecorder()

	Error(recorder, errors.New("pq: password authentication failed for user portal"))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, recorder.Body.String())
}
