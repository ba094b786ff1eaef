package auth

import (
	"net/http"
	"strings"
	"testing"
)

func TestRequireLoginRedirectsAnonymous(t *testing.T) {
	router, _, _ := newTestServer(t)
	client := newTestClient(t, router)

	rec := client.do(http.MethodGet, "/", nil)
	assertRedirect(t, rec, "/login")

	// 保護されたハンドラーの出力が漏れていないこと
	if strings.Contains(rec.Body.String(), "storeName") {
		t.Fatalf("protected content rendered for anonymous request: %q", rec.Body.String())
	}

	rec = client.do(http.MethodGet, "/login", nil)
	kind, text := flashOf(t, decodeBody(t, rec))
	if kind != FlashError || text != "You must log in or register to access the store." {
		t.Fatalf("unexpected flash: kind=%q text=%q", kind, text)
	}
}
