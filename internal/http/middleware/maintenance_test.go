package middleware

import (
	"context"
	"github.com/maxaizer/club-portal/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"net/http"
	"net/http/httptest"
	"testing"
)

type mockGate struct {
	mock.Mock
}

func (m *mockGate) Enabled(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

var exemptPrefixes = []string{"/api/admin", "/api/auth", "/health", "/_next"}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serve(handler http.Handler, path string, principal *security.Principal) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, path, nil)
	if principal != nil {
		request = request.WithContext(security.WithPrincipal(request.Context(), *principal))
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func Test_Maintenance_WhenEnabled_ShouldRedirectNonExemptPaths(t *testing.T) {
	gate := new(mockGate)
	gate.On("Enabled", mock.Anything).Return(true)
	handler := Maintenance(gate, exemptPrefixes, "/maintenance")(okHandler())

	recorder := serve(handler, "/api/recruitment/status", nil)

	assert.Equal(t, http.StatusTemporaryRedirect, recorder.Code)
	assert.Equal(t, "/maintenance", recorder.Header().Get("Location"))
}

func Test_Maintenance_WhenEnabled_ShouldPassExemptPathsUnchanged(t *testing.T) {
	gate := new(mockGate)
	gate.On("Enabled", mock.Anything).Return(true)
	handler := Maintenance(gate, exemptPrefixes, "/maintenance")(okHandler())

	for _, path := range []string{"/api/admin/cycles", "/health", "/_next/static/app.js", "/maintenance"} {
		assert.Equal(t, http.StatusOK, serve(handler, path, nil).Code, path)
	}
	gate.AssertNotCalled(t, "Enabled", mock.Anything)
}

func Test_Maintenance_WhenEnabled_ShouldLetAdminsThrough(t *testing.T) {
	gate := new(mockGate)
	gate.On("Enabled", mock.Anything).Return(true)
	handler := Maintenance(gate, exemptPrefixes, "/maintenance")(okHandler())

	recorder := serve(handler, "/apply", &security.Principal{ID: "a", Admin: true})

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func Test_Maintenance_WhenDisabled_ShouldServeNormally(t *testing.T) {
	gate := new(mockGate)
	gate.On("Enabled", mock.Anything).Return(false)
	handler := Maintenance(gate, exemptPrefixes, "/maintenance")(okHandler())

	recorder := serve(handler, "/apply", &security.Principal{ID: "u"})

	assert.Equal(t, http.StatusOK, recorder.Code)
	gate.AssertNumberOfCalls(t, "Enabled", 1)
}
