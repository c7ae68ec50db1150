package handlers_test

import (
	"net/http"
	"testing"
)

func TestAdminScreensRequireToken(t *testing.T) {
	env := newEnv(t)

	for _, path := range []string{"/admin", "/admin/dashboard", "/admin/stores", "/admin/gifts", "/admin/gifts/1/delete"} {
		b := env.browser(t)
		var resp *http.Response
		entries := captureLogs(t, func() { resp = b.get(path) })
		expectRedirect(t, resp, "/admin/login")
		e, ok := findLog(entries, "access.denied.admin")
		if !ok || e.Level != "warning" || e.Path != path {
			t.Fatalf("%s: expected access.denied.admin, got %+v", path, entries)
		}
	}
	if n := len(env.backend.Requests("", "")); n != 0 {
		t.Fatalf("guard must stop before the API, got %d calls", n)
	}
}

func TestAdminFetchFailureSendsToLogin(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusInternalServerError} {
		env := newEnv(t)
		b := env.browser(t)
		b.login()

		env.backend.Fail("GET /admin/stats", status)
		var resp *http.Response
		entries := captureLogs(t, func() { resp = b.get("/admin/dashboard") })
		expectRedirect(t, resp, "/admin/login")
		e, ok := findLog(entries, "admin.stats.fail")
		if !ok || e.Fields["upstream_status"] != float64(status) {
			t.Fatalf("status %d: expected admin.stats.fail, got %+v", status, entries)
		}
	}
}

func TestAdminRootRedirectsToDashboard(t *testing.T) {
	env := newEnv(t)
	b := env.browser(t)
	b.login()
	expectRedirect(t, b.get("/admin"), "/admin/dashboard")
	expectRedirect(t, b.get("/admin/unknown"), "/admin/dashboard")
}
