package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vendly/vendly/internal/config"
)

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestSetIssuesScopedCookie(t *testing.T) {
	m := NewManager(config.Config{AuthCookieDomain: "shop.example"})

	c, rec := testContext()
	m.Set(c, "token-1", time.Now().Add(time.Hour))

	header := rec.Header().Get("Set-Cookie")
	if !strings.HasPrefix(header, DefaultCookieName+"=token-1") {
		t.Fatalf("unexpected cookie header %q", header)
	}
	for _, want := range []string{"Path=/", "Domain=shop.example", "HttpOnly", "SameSite=Lax"} {
		if !strings.Contains(header, want) {
			t.Fatalf("cookie header %q missing %q", header, want)
		}
	}
}

func TestReadTokenIgnoresBlankCookie(t *testing.T) {
	m := NewManager(config.Config{})

	c, _ := testContext()
	c.Request.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "   "})

	if _, ok := m.ReadToken(c); ok {
		t.Fatal("expected a blank cookie to read as absent")
	}
}

func TestClearExpiresCookie(t *testing.T) {
	m := NewManager(config.Config{})

	c, rec := testContext()
	m.Clear(c)

	header := rec.Header().Get("Set-Cookie")
	if !strings.Contains(header, "Max-Age=0") {
		t.Fatalf("expected an expired cookie, got %q", header)
	}
}
