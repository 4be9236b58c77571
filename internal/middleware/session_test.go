package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rental-service/internal/view"
	"rental-service/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessions(ttl time.Duration) *Sessions {
	return NewSessions(config.SessionConfig{SigningKey: "test-key", TTL: ttl})
}

func issueCookie(t *testing.T, s *Sessions, p Principal) *http.Cookie {
	t.Helper()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, s.Issue(c, p))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func newGatedServer(s *Sessions) *echo.Echo {
	e := echo.New()
	e.Use(view.FlashMiddleware())
	e.GET("/admin/dashboard", func(c echo.Context) error {
		p := PrincipalFrom(c)
		return c.String(http.StatusOK, string(p.Kind)+":"+p.Name)
	}, s.RequireAdmin())
	e.GET("/tenant/dashboard", func(c echo.Context) error {
		return c.String(http.StatusOK, PrincipalFrom(c).Name)
	}, s.RequireTenant())
	return e
}

func TestIssueSetsHardenedCookie(t *testing.T) {
	cookie := issueCookie(t, newSessions(time.Hour), Principal{Kind: KindAdmin, ID: 1, Name: "admin"})

	assert.Equal(t, "admin_session", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 3600, cookie.MaxAge)
	assert.NotEmpty(t, cookie.Value)
}

func TestRequireAdminAllowsValidSession(t *testing.T) {
	s := newSessions(time.Hour)
	e := newGatedServer(s)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(issueCookie(t, s, Principal{Kind: KindAdmin, ID: 1, Name: "admin"}))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin:admin", rec.Body.String())
}

func TestRequireRedirectsWithoutSession(t *testing.T) {
	e := newGatedServer(newSessions(time.Hour))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tenant/dashboard", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/tenant/login", rec.Header().Get(echo.HeaderLocation))

	var flash *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "flash" {
			flash = ck
		}
	}
	require.NotNil(t, flash, "login prompt is carried to the login page")
}

func TestTenantSessionDoesNotOpenAdminPages(t *testing.T) {
	s := newSessions(time.Hour)
	e := newGatedServer(s)

	tenantCookie := issueCookie(t, s, Principal{Kind: KindTenant, ID: 7, Name: "Alice"})

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "admin_session", Value: tenantCookie.Value})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get(echo.HeaderLocation))
}

func TestRequireRejectsTamperedAndExpiredTokens(t *testing.T) {
	s := newSessions(time.Hour)
	e := newGatedServer(s)

	forged := issueCookie(t, NewSessions(config.SessionConfig{SigningKey: "other-key", TTL: time.Hour}),
		Principal{Kind: KindAdmin, ID: 1, Name: "admin"})
	expired := issueCookie(t, newSessions(-time.Minute), Principal{Kind: KindAdmin, ID: 1, Name: "admin"})

	for name, cookie := range map[string]*http.Cookie{"forged": forged, "expired": expired} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
			req.AddCookie(&http.Cookie{Name: "admin_session", Value: cookie.Value})
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/admin/login", rec.Header().Get(echo.HeaderLocation))
		})
	}
}

func TestClearExpiresCookie(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	newSessions(time.Hour).Clear(c, KindTenant)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "tenant_session", cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestPrincipalFromWithoutSession(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	assert.Nil(t, PrincipalFrom(c))
	assert.False(t, PrincipalFrom(c).IsAdmin())
}
