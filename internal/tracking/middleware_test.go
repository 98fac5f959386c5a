package tracking

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newMiddlewareRouter(cfg MiddlewareConfig) (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware(cfg))
	var captured string
	router.GET("/pricing", func(c *gin.Context) {
		captured = SessionFromContext(c)
		c.Status(http.StatusOK)
	})
	return router, &captured
}

func TestMiddlewareIssuesSessionCookieWhenAbsent(t *testing.T) {
	router, captured := newMiddlewareRouter(MiddlewareConfig{CookieName: "ls_session"})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/pricing", nil))

	cookies := recorder.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one session cookie, got %d", len(cookies))
	}
	cookie := cookies[0]
	if cookie.Name != "ls_session" {
		t.Fatalf("unexpected cookie name %q", cookie.Name)
	}
	if !strings.HasPrefix(cookie.Value, "sess_") {
		t.Fatalf("unexpected session value %q", cookie.Value)
	}
	if cookie.MaxAge != sessionCookieMaxAge {
		t.Fatalf("unexpected max age %d", cookie.MaxAge)
	}
	if !cookie.HttpOnly {
		t.Fatal("session cookie must be http-only")
	}
	if *captured != cookie.Value {
		t.Fatalf("handler saw session %q, cookie carries %q", *captured, cookie.Value)
	}
}

func TestMiddlewareReusesExistingSessionCookie(t *testing.T) {
	router, captured := newMiddlewareRouter(MiddlewareConfig{CookieName: "ls_session"})

	request := httptest.NewRequest(http.MethodGet, "/pricing", nil)
	request.AddCookie(&http.Cookie{Name: "ls_session", Value: "sess_existing"})
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	if cookies := recorder.Result().Cookies(); len(cookies) != 0 {
		t.Fatalf("expected no Set-Cookie for returning visitor, got %d", len(cookies))
	}
	if *captured != "sess_existing" {
		t.Fatalf("expected existing session to be reused, got %q", *captured)
	}
}

func TestShouldLogPath(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"/", true},
		{"/pricing", true},
		{"/usuwanie-wizytowki-google", true},
		{"/api/gmb-search", false},
		{"/assets/logo.png", false},
		{"/static/app.js", false},
		{"/_next/chunk.js", false},
		{"/favicon.ico", false},
		{"/styles/main.CSS", false},
		{"/robots.txt", false},
	}
	for _, testCase := range cases {
		if got := shouldLogPath(testCase.path); got != testCase.want {
			t.Errorf("shouldLogPath(%q) = %v, want %v", testCase.path, got, testCase.want)
		}
	}
}
