package middleware

import (
	"errors"
	"net/http"
	"time"

	"rental-service/internal/view"
	"rental-service/pkg/config"
	"rental-service/pkg/jwtutil"
	"rental-service/pkg/logger"
	"rental-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Kind distinguishes the two kinds of signed-in principal
type Kind string

const (
	KindAdmin  Kind = "admin"
	KindTenant Kind = "tenant"
)

// CookieName is the session cookie of a principal kind
func (k Kind) CookieName() string {
	return string(k) + "_session"
}

// LoginPath is where an unauthenticated request of this kind is sent
func (k Kind) LoginPath() string {
	return "/" + string(k) + "/login"
}

func (k Kind) loginRequiredMessage() string {
	if k == KindAdmin {
		return "Please login as admin to access this page"
	}
	return "Please login to access this page"
}

// Principal is the authenticated identity of a request
type Principal struct {
	Kind Kind
	ID   uint
	Name string
}

// IsAdmin reports whether the principal is an administrator
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Kind == KindAdmin
}

// PrincipalFrom returns the principal set by RequireAdmin or RequireTenant, or nil
func PrincipalFrom(c echo.Context) *Principal {
	p, _ := c.Get(view.PrincipalContextKey).(*Principal)
	return p
}

var errNoSession = errors.New("no session cookie")

// Sessions issues and verifies signed session cookies
type Sessions struct {
	jwt    *jwtutil.JWTUtil
	ttl    time.Duration
	secure bool
}

// NewSessions creates a session manager from configuration
func NewSessions(cfg config.SessionConfig) *Sessions {
	return &Sessions{
		jwt:    jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: cfg.SigningKey, TTL: cfg.TTL}),
		ttl:    cfg.TTL,
		secure: cfg.Secure,
	}
}

// Issue signs a session for p and sets its cookie
func (s *Sessions) Issue(c echo.Context, p Principal) error {
	token, err := s.jwt.GenerateToken(string(p.Kind), p.ID, p.Name)
	if err != nil {
		return err
	}

	cookie := s.cookie(p.Kind, token)
	if s.ttl > 0 {
		cookie.MaxAge = int(s.ttl / time.Second)
	}
	c.SetCookie(cookie)
	return nil
}

// Clear removes the session cookie of kind
func (s *Sessions) Clear(c echo.Context, kind Kind) {
	cookie := s.cookie(kind, "")
	cookie.MaxAge = -1
	c.SetCookie(cookie)
}

// Load verifies the session cookie of kind and returns its principal
func (s *Sessions) Load(c echo.Context, kind Kind) (*Principal, error) {
	ck, err := c.Cookie(kind.CookieName())
	if err != nil || ck.Value == "" {
		return nil, errNoSession
	}

	claims, err := s.jwt.ValidateToken(ck.Value, string(kind))
	if err != nil {
		return nil, err
	}
	return &Principal{Kind: kind, ID: claims.PrincipalID, Name: claims.Name}, nil
}

// Require only lets requests with a valid session of kind through.
// Others are redirected to the login page of that kind with an error message.
func (s *Sessions) Require(kind Kind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := s.Load(c, kind)
			if err != nil {
				if !errors.Is(err, errNoSession) {
					logger.FromContext(c).Warn("Rejected session cookie",
						zap.String("kind", string(kind)), zap.Error(err))
					prometheus.RecordError("invalid_session")
					s.Clear(c, kind)
				}
				view.Error(c, kind.loginRequiredMessage())
				return c.Redirect(http.StatusFound, kind.LoginPath())
			}

			c.Set(view.PrincipalContextKey, p)
			return next(c)
		}
	}
}

// RequireAdmin gates administrator pages
func (s *Sessions) RequireAdmin() echo.MiddlewareFunc {
	return s.Require(KindAdmin)
}

// RequireTenant gates tenant pages
func (s *Sessions) RequireTenant() echo.MiddlewareFunc {
	return s.Require(KindTenant)
}

func (s *Sessions) cookie(kind Kind, value string) *http.Cookie {
	return &http.Cookie{
		Name:     kind.CookieName(),
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
