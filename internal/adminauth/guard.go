package adminauth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// SessionCookieValue is the sentinel an authenticated admin cookie must
	// equal exactly. There is no server-side session store: every admin
	// endpoint re-validates the cookie per request, which keeps the check
	// stateless.
	SessionCookieValue = "authenticated"

	sessionCookieMaxAge = 60 * 60 // 1 hour, seconds
)

var (
	errMissingCredentials = errors.New("adminauth: admin email and password are required")
	errMissingCookieName  = errors.New("adminauth: cookie name is required")
)

// GuardConfig describes the configured admin credential pair and cookie shape.
type GuardConfig struct {
	Email        string
	Password     string
	CookieName   string
	SecureCookie bool
}

// Guard validates the single admin credential pair and the session cookie.
type Guard struct {
	email        string
	password     string
	cookieName   string
	secureCookie bool
}

// NewGuard validates the configuration and constructs the guard.
func NewGuard(cfg GuardConfig) (*Guard, error) {
	if strings.TrimSpace(cfg.Email) == "" || strings.TrimSpace(cfg.Password) == "" {
		return nil, errMissingCredentials
	}
	if strings.TrimSpace(cfg.CookieName) == "" {
		return nil, errMissingCookieName
	}
	return &Guard{
		email:        cfg.Email,
		password:     cfg.Password,
		cookieName:   cfg.CookieName,
		secureCookie: cfg.SecureCookie,
	}, nil
}

// Authenticate compares both fields against the configured pair. Both
// comparisons always run so a mismatch never reveals which field failed.
func (g *Guard) Authenticate(email, password string) bool {
	emailMatch := subtle.ConstantTimeCompare([]byte(email), []byte(g.email))
	passwordMatch := subtle.ConstantTimeCompare([]byte(password), []byte(g.password))
	return emailMatch&passwordMatch == 1
}

// IsAuthenticated reports whether the request carries the exact session cookie.
func (g *Guard) IsAuthenticated(c *gin.Context) bool {
	value, err := c.Cookie(g.cookieName)
	return err == nil && value == SessionCookieValue
}

// SetSessionCookie issues the one-hour admin session cookie.
func (g *Guard) SetSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(g.cookieName, SessionCookieValue, sessionCookieMaxAge, "/", "", g.secureCookie, true)
}

// ClearSessionCookie logs the admin out by zeroing the cookie.
func (g *Guard) ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(g.cookieName, "", -1, "/", "", g.secureCookie, true)
}

// Middleware gates an admin-surface route group. Requests without the exact
// cookie are rejected with a generic 401 before any data access.
func (g *Guard) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.IsAuthenticated(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
