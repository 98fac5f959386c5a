package tracking

import (
	"context"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	sessionCookieMaxAge = 30 * 24 * 60 * 60 // 30 days, seconds
	logWriteTimeout     = 5 * time.Second
)

var skippedPrefixes = []string{"/api/", "/assets/", "/static/", "/_next/"}

var skippedExtensions = map[string]struct{}{
	".css": {}, ".js": {}, ".map": {}, ".ico": {}, ".png": {}, ".jpg": {},
	".jpeg": {}, ".svg": {}, ".webp": {}, ".woff": {}, ".woff2": {}, ".txt": {},
}

// MiddlewareConfig wires the visitor-logging middleware.
type MiddlewareConfig struct {
	Service      *Service
	CookieName   string
	SecureCookie bool
	Logger       *zap.Logger
}

// Middleware issues the session cookie when absent and records one visitor row
// per page view. The write is fire-and-forget: it runs off the request
// goroutine and its errors are logged and swallowed, never surfaced to the
// page response.
func Middleware(cfg MiddlewareConfig) gin.HandlerFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = "session_id"
	}

	return func(c *gin.Context) {
		sessionID, err := c.Cookie(cookieName)
		if err != nil || sessionID == "" {
			sessionID = GenerateSessionID()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookieName, sessionID, sessionCookieMaxAge, "/", "", cfg.SecureCookie, true)
		}
		c.Set(SessionContextKey, sessionID)

		if cfg.Service != nil && shouldLogPath(c.Request.URL.Path) {
			visitor := visitorFromRequest(c.Request, sessionID)
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), logWriteTimeout)
				defer cancel()
				if err := cfg.Service.LogVisitor(ctx, visitor); err != nil {
					logger.Warn("visitor log write failed",
						zap.String("page_path", visitor.PagePath),
						zap.Error(err))
				}
			}()
		}

		c.Next()
	}
}

// SessionContextKey is the gin context key under which the middleware stores
// the resolved session identifier.
const SessionContextKey = "listingshield_session_id"

// SessionFromContext returns the session identifier resolved by Middleware,
// or the empty string when the middleware did not run.
func SessionFromContext(c *gin.Context) string {
	return c.GetString(SessionContextKey)
}

func visitorFromRequest(request *http.Request, sessionID string) Visitor {
	info := GetRequestInfo(request)
	campaign := GetCampaign(request)
	return Visitor{
		IPAddress:   info.IPAddress,
		UserAgent:   info.UserAgent,
		Referer:     info.Referer,
		PagePath:    request.URL.Path,
		SessionID:   sessionID,
		UTMSource:   campaign.UTMSource,
		UTMMedium:   campaign.UTMMedium,
		UTMCampaign: campaign.UTMCampaign,
		UTMTerm:     campaign.UTMTerm,
		UTMContent:  campaign.UTMContent,
		GTMFrom:     campaign.GTMFrom,
	}
}

func shouldLogPath(requestPath string) bool {
	for _, prefix := range skippedPrefixes {
		if strings.HasPrefix(requestPath, prefix) {
			return false
		}
	}
	if _, ok := skippedExtensions[strings.ToLower(path.Ext(requestPath))]; ok {
		return false
	}
	return true
}
