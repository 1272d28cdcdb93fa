package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nekrasovv/web_store/pkg/tokens"
)

var testSecret = []byte("test-jwt-secret")

func newGuardedEcho(roles ...string) *echo.Echo {
	e := echo.New()

	mws := []echo.MiddlewareFunc{RequireAuth(testSecret)}
	if len(roles) > 0 {
		mws = append(mws, RequireRole(roles...))
	}

	e.GET("/protected", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"user_id":  c.Get(CtxUserID),
			"username": c.Get(CtxUsername),
			"role":     c.Get(CtxRole),
		})
	}, mws...)

	return e
}

func doRequest(e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func signedToken(t *testing.T, role string) string {
	t.Helper()

	token, _, err := tokens.NewAccessToken(7, "alice", role, testSecret, time.Now())
	require.NoError(t, err)
	return token
}

func TestRequireAuth_HeaderValidation(t *testing.T) {
	t.Parallel()

	e := newGuardedEcho()
	valid := signedToken(t, "user")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "no header", header: "", want: http.StatusUnauthorized},
		{name: "no bearer prefix", header: valid, want: http.StatusUnauthorized},
		{name: "lowercase prefix", header: "bearer " + valid, want: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", want: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", want: http.StatusForbidden},
		{name: "valid", header: "Bearer " + valid, want: http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := doRequest(e, tt.header)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireAuth_RejectsExpiredAndForeignTokens(t *testing.T) {
	t.Parallel()

	e := newGuardedEcho()

	expired, _, err := tokens.NewAccessToken(7, "alice", "user", testSecret,
		time.Now().Add(-tokens.AccessTTL-time.Second))
	require.NoError(t, err)
	rec := doRequest(e, "Bearer "+expired)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	foreign, _, err := tokens.NewAccessToken(7, "alice", "user", []byte("other-secret"), time.Now())
	require.NoError(t, err)
	rec = doRequest(e, "Bearer "+foreign)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		allowed []string
		role    string
		want    int
	}{
		{name: "admin route denies user", allowed: []string{"admin"}, role: "user", want: http.StatusForbidden},
		{name: "admin route admits admin", allowed: []string{"admin"}, role: "admin", want: http.StatusOK},
		{name: "shared route admits user", allowed: []string{"user", "admin"}, role: "user", want: http.StatusOK},
		{name: "shared route admits admin", allowed: []string{"user", "admin"}, role: "admin", want: http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := newGuardedEcho(tt.allowed...)
			rec := doRequest(e, "Bearer "+signedToken(t, tt.role))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireRole_WithoutAuthenticatedContext(t *testing.T) {
	t.Parallel()

	// misconfigured route: RequireRole without RequireAuth in front
	e := echo.New()
	e.GET("/broken", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RequireRole("admin"))

	req := httptest.NewRequest(http.MethodGet, "/broken", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
