// Package session owns the browser session cookie: a single host-scoped
// cookie carrying the opaque token the auth service resolves to a user.
package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vendly/vendly/internal/config"
)

// DefaultCookieName is the session cookie issued on sign-in.
const DefaultCookieName = "vendly_sid"

// Manager writes and reads the session cookie with one shared policy:
// HttpOnly, SameSite=Lax, Secure in production.
type Manager struct {
	cookieName string
	domain     string
	secure     bool
}

func NewManager(cfg config.Config) *Manager {
	return &Manager{
		cookieName: DefaultCookieName,
		domain:     cfg.AuthCookieDomain,
		secure:     cfg.AuthCookieSecure,
	}
}

func (m *Manager) CookieName() string {
	return m.cookieName
}

// ReadToken returns the raw session token, treating blank cookies the
// same as absent ones.
func (m *Manager) ReadToken(c *gin.Context) (string, bool) {
	token, err := c.Cookie(m.cookieName)
	if err != nil {
		return "", false
	}
	if strings.TrimSpace(token) == "" {
		return "", false
	}
	return token, true
}

// Set issues the cookie with a max-age matching the session expiry, so
// the browser and the sessions table agree on the lifetime.
func (m *Manager) Set(c *gin.Context, value string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, value, maxAge, "/", m.domain, m.secure, true)
}

// Clear expires the cookie immediately on sign-out.
func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, "", -1, "/", m.domain, m.secure, true)
}
