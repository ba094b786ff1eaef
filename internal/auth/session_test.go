package auth

import (
	"net/http"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func newSessionRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	sessionStore := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions(SessionCookieName, sessionStore))
	return router
}

func TestTakeFlashConsumesExactlyOnce(t *testing.T) {
	router := newSessionRouter(t)
	router.POST("/flash", func(c *gin.Context) {
		if err := SetFlash(c, FlashSuccess, "hello"); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	router.GET("/flash", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"flash": TakeFlash(c)})
	})

	client := newTestClient(t, router)

	rec := client.do(http.MethodPost, "/flash", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	rec = client.do(http.MethodGet, "/flash", nil)
	body := decodeBody(t, rec)
	flash, ok := body["flash"].(map[string]any)
	if !ok {
		t.Fatalf("expected flash on first read, got %#v", body)
	}
	if flash["kind"] != FlashSuccess || flash["text"] != "hello" {
		t.Fatalf("unexpected flash: %#v", flash)
	}

	// 二度目の読み出しでは空になっていること
	rec = client.do(http.MethodGet, "/flash", nil)
	body = decodeBody(t, rec)
	if body["flash"] != nil {
		t.Fatalf("expected no flash on second read, got %#v", body["flash"])
	}
}

func TestSetFlashOverwritesPrevious(t *testing.T) {
	router := newSessionRouter(t)
	router.POST("/two", func(c *gin.Context) {
		_ = SetFlash(c, FlashError, "first")
		_ = SetFlash(c, FlashSuccess, "second")
		c.Status(http.StatusNoContent)
	})
	router.GET("/flash", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"flash": TakeFlash(c)})
	})

	client := newTestClient(t, router)
	client.do(http.MethodPost, "/two", nil)

	rec := client.do(http.MethodGet, "/flash", nil)
	flash, ok := decodeBody(t, rec)["flash"].(map[string]any)
	if !ok {
		t.Fatal("expected flash")
	}
	if flash["kind"] != FlashSuccess || flash["text"] != "second" {
		t.Fatalf("expected the later flash to win, got %#v", flash)
	}
}

func TestDestroyClearsUser(t *testing.T) {
	router := newSessionRouter(t)
	router.POST("/user", func(c *gin.Context) {
		if err := SetUser(c, UserSummary{ID: 7, Email: "a@x.com", Phone: "111"}); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	router.POST("/destroy", func(c *gin.Context) {
		if err := Destroy(c); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	router.GET("/user", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": CurrentUser(c)})
	})

	client := newTestClient(t, router)
	client.do(http.MethodPost, "/user", nil)

	rec := client.do(http.MethodGet, "/user", nil)
	user, ok := decodeBody(t, rec)["user"].(map[string]any)
	if !ok {
		t.Fatal("expected user before destroy")
	}
	if user["email"] != "a@x.com" {
		t.Fatalf("unexpected user: %#v", user)
	}

	client.do(http.MethodPost, "/destroy", nil)

	rec = client.do(http.MethodGet, "/user", nil)
	if got := decodeBody(t, rec)["user"]; got != nil {
		t.Fatalf("expected no user after destroy, got %#v", got)
	}
}
