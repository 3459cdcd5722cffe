package security

import (
	"github.com/maxaizer/club-portal/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testVerifier() *SessionVerifier {
	return NewSessionVerifier(config.AuthConfig{
		JWTSecret:     "test-secret",
		SessionCookie: "portal_session",
		AdminEmails:   []string{"Chair@Club.org"},
	})
}

func Test_SessionVerifier_FromRequest_BearerAndCookie(t *testing.T) {
	verifier := testVerifier()
	token, err := verifier.Sign(Principal{ID: "u1", Email: "u1@club.org"}, time.Hour)
	require.NoError(t, err)

	bearer := httptest.NewRequest(http.MethodGet, "/", nil)
	bearer.Header.Set("Authorization", "Bearer "+token)
	principal, err := verifier.FromRequest(bearer)
	require.NoError(t, err)
	assert.Equal(t, "u1", principal.ID)
	assert.False(t, principal.IsAdmin())

	cookie := httptest.NewRequest(http.MethodGet, "/", nil)
	cookie.AddCookie(&http.Cookie{Name: "portal_session", Value: token})
	principal, err = verifier.FromRequest(cookie)
	require.NoError(t, err)
	assert.Equal(t, "u1@club.org", principal.Email)
}

func Test_SessionVerifier_AdminByRoleOrEmail(t *testing.T) {
	verifier := testVerifier()

	byRole, _ := verifier.Sign(Principal{ID: "a1", Roles: []string{"super_admin"}}, time.Hour)
	principal, err := verifier.Parse(byRole)
	require.NoError(t, err)
	assert.True(t, principal.IsAdmin())

	byEmail, _ := verifier.Sign(Principal{ID: "a2", Email: "chair@club.org"}, time.Hour)
	principal, err = verifier.Parse(byEmail)
	require.NoError(t, err)
	assert.True(t, principal.IsAdmin())
}

func Test_SessionVerifier_WhenExpiredOrForeign_ShouldFail(t *testing.T) {
	verifier := testVerifier()

	expired, _ := verifier.Sign(Principal{ID: "u1"}, -time.Minute)
	_, err := verifier.Parse(expired)
	assert.Error(t, err)

	other := NewSessionVerifier(config.AuthConfig{JWTSecret: "other"})
	foreign, _ := other.Sign(Principal{ID: "u1"}, time.Hour)
	_, err = verifier.Parse(foreign)
	assert.Error(t, err)

	_, err = verifier.FromRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrNoSession)
}
