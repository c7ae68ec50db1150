package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"giftfinder/internal/apiclient/apitest"
	"giftfinder/internal/http/handlers"
)

func TestLoginSuccessStoresSealedToken(t *testing.T) {
	env := newEnv(t)
	b := env.browser(t)

	var resp *http.Response
	entries := captureLogs(t, func() {
		resp = b.post("/admin/login", url.Values{"username": {apitest.Username}, "password": {apitest.Password}})
	})
	expectRedirect(t, resp, "/admin/dashboard")

	sid := b.cookies["sid"]
	if sid == "" {
		t.Fatal("login must issue a session cookie")
	}
	var stored string
	if err := env.db.Get(&stored, `SELECT token FROM sessions WHERE id=?`, sid); err != nil {
		t.Fatalf("select token: %v", err)
	}
	if stored == "" || strings.Contains(stored, apitest.Token) {
		t.Fatalf("token must be stored sealed, got %q", stored)
	}

	e, ok := findLog(entries, "auth.login.success")
	if !ok || !e.Audit || e.Fields["username"] != apitest.Username {
		t.Fatalf("expected audited login, got %+v", entries)
	}

	body := readBody(t, b.get("/admin/dashboard"))
	if !strings.Contains(body, "Dashboard") {
		t.Fatalf("expected dashboard, got %s", body)
	}
	calls := env.backend.Requests(http.MethodGet, "/admin/stats")
	if len(calls) != 1 || calls[0].Auth != "Bearer "+apitest.Token {
		t.Fatalf("expected bearer token on stats call, got %+v", calls)
	}
}

func TestLoginFailureShowsServerMessage(t *testing.T) {
	env := newEnv(t)
	b := env.browser(t)

	var resp *http.Response
	entries := captureLogs(t, func() {
		resp = b.post("/admin/login", url.Values{"username": {apitest.Username}, "password": {"wrong"}})
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Invalid credentials") {
		t.Fatalf("expected server message, got %s", body)
	}
	if strings.Contains(body, "wrong") {
		t.Fatal("password echoed back")
	}
	e, ok := findLog(entries, "auth.login.fail")
	if !ok || e.Level != "warning" {
		t.Fatalf("expected auth.login.fail warning, got %+v", entries)
	}
	if _, leaked := e.Fields["password"]; leaked {
		t.Fatal("password must never be logged")
	}
}

func TestLoginRejectsMalformedInputWithoutCallingAPI(t *testing.T) {
	env := newEnv(t)
	b := env.browser(t)

	resp := b.post("/admin/login", url.Values{"username": {"bad user!"}, "password": {"x"}})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "Login failed") {
		t.Fatalf("expected generic failure, got %s", body)
	}
	if n := len(env.backend.Requests(http.MethodPost, "/admin/login")); n != 0 {
		t.Fatalf("expected no API call, got %d", n)
	}
}

func TestLoginThrottle(t *testing.T) {
	env := newEnv(t, func(o *handlers.AppOptions) { o.LoginMax = 2 })
	b := env.browser(t)
	bad := func() url.Values {
		return url.Values{"username": {apitest.Username}, "password": {"nope"}}
	}

	for i := 0; i < 2; i++ {
		if resp := b.post("/admin/login", bad()); resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i, resp.StatusCode)
		}
	}
	var resp *http.Response
	entries := captureLogs(t, func() { resp = b.post("/admin/login", bad()) })
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "Too many attempts") {
		t.Fatalf("expected throttle message, got %s", body)
	}
	if _, ok := findLog(entries, "rate.login.hit"); !ok {
		t.Fatalf("expected rate.login.hit, got %+v", entries)
	}
}

func TestLogoutClearsTokenEvenWhenAPIFails(t *testing.T) {
	env := newEnv(t)
	b := env.browser(t)
	b.login()

	env.backend.Fail("POST /admin/logout", http.StatusInternalServerError)
	var resp *http.Response
	entries := captureLogs(t, func() { resp = b.post("/admin/logout", nil) })
	expectRedirect(t, resp, "/admin/login")
	if _, ok := findLog(entries, "auth.logout"); !ok {
		t.Fatalf("expected auth.logout audit, got %+v", entries)
	}

	before := len(env.backend.Requests(http.MethodGet, "/admin/stats"))
	expectRedirect(t, b.get("/admin/dashboard"), "/admin/login")
	if after := len(env.backend.Requests(http.MethodGet, "/admin/stats")); after != before {
		t.Fatal("guard must not call the API after logout")
	}
}
