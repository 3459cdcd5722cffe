package security

import (
	"errors"
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	"github.com/maxaizer/club-portal/internal/config"
	"github.com/samber/lo"
	"net/http"
	"strings"
	"time"
)

var ErrNoSession = errors.New("no session")

type Claims struct {
	Email string   `json:"email"`
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// SessionVerifier resolves the caller from an HS256 session token issued by the auth provider.
type SessionVerifier struct {
	secret      []byte
	cookieName  string
	adminEmails map[string]bool
}

func NewSessionVerifier(cfg config.AuthConfig) *SessionVerifier {
	emails := lo.SliceToMap(cfg.AdminEmails, func(email string) (string, bool) {
		return strings.ToLower(strings.TrimSpace(email)), true
	})
	return &SessionVerifier{secret: []byte(cfg.JWTSecret), cookieName: cfg.SessionCookie, adminEmails: emails}
}

func (v *SessionVerifier) Sign(principal Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: principal.Email,
		Name:  principal.Name,
		Roles: principal.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func (v *SessionVerifier) Parse(token string) (*Principal, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	principal := &Principal{ID: claims.Subject, Email: claims.Email, Name: claims.Name, Roles: claims.Roles}
	principal.Admin = principal.HasRole(RoleAdmin) || principal.HasRole(RoleSuperAdmin) ||
		v.adminEmails[strings.ToLower(claims.Email)]
	return principal, nil
}

// FromRequest reads the bearer header first and falls back to the session cookie.
// ErrNoSession means the request carries no credentials at all.
func (v *SessionVerifier) FromRequest(r *http.Request) (*Principal, error) {
	token := ""
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, value, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "bearer") {
			return nil, errors.New("invalid authorization header")
		}
		token = strings.TrimSpace(value)
	} else if cookie, err := r.Cookie(v.cookieName); err == nil {
		token = cookie.Value
	}

	if token == "" {
		return nil, ErrNoSession
	}
	return v.Parse(token)
}
