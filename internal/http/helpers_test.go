package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"giftfinder/internal/apiclient"
	"giftfinder/internal/apiclient/apitest"
	"giftfinder/internal/events"
	"giftfinder/internal/http/handlers"
	"giftfinder/internal/i18n"
	applog "giftfinder/internal/log"
	"giftfinder/internal/repos"
	"giftfinder/internal/secure"
)

type testEnv struct {
	app     *fiber.App
	backend *apitest.Backend
	db      *sqlx.DB
}

// newEnv wires the real app against an in-memory API and database. The
// default language is English so assertions read naturally.
func newEnv(t *testing.T, tweak ...func(*handlers.AppOptions)) *testEnv {
	t.Helper()
	backend := apitest.New()
	t.Cleanup(backend.Close)

	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	sessions := repos.NewSessionRepo(db, secure.NewSealer("test-secret"))
	reg := prometheus.NewRegistry()
	client := apiclient.New(backend.URL(),
		apiclient.WithTimeout(5*time.Second),
		apiclient.WithMetrics(apiclient.NewMetrics(reg)),
		apiclient.WithLogger(applog.Logger()),
	)
	dict := i18n.MustLoad()
	provider := i18n.NewProvider(dict, i18n.EN)
	pub := events.NewLogPublisher(applog.Logger())

	opts := handlers.AppOptions{
		Deps:      handlers.NewDeps(client, sessions, provider, pub, applog.Logger()),
		Dict:      dict,
		Templates: "../../web/templates",
		StaticDir: "../../web/static",
		Gatherer:  reg,
	}
	for _, fn := range tweak {
		fn(&opts)
	}
	return &testEnv{app: handlers.NewApp(opts), backend: backend, db: db}
}

// browser replays cookies between requests like a real client.
type browser struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func (e *testEnv) browser(t *testing.T) *browser {
	return &browser{t: t, app: e.app, cookies: map[string]string{}}
}

func (b *browser) do(req *http.Request) *http.Response {
	b.t.Helper()
	for k, v := range b.cookies {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	resp, err := b.app.Test(req, -1)
	if err != nil {
		b.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	for _, c := range resp.Cookies() {
		if c.Value == "" || (!c.Expires.IsZero() && c.Expires.Before(time.Now())) {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c.Value
	}
	return resp
}

func (b *browser) get(path string) *http.Response {
	b.t.Helper()
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// csrf returns the token cookie, fetching a page first when needed.
func (b *browser) csrf() string {
	b.t.Helper()
	if tok := b.cookies["csrf_"]; tok != "" {
		return tok
	}
	b.get("/")
	tok := b.cookies["csrf_"]
	if tok == "" {
		b.t.Fatal("csrf token missing")
	}
	return tok
}

func (b *browser) post(path string, form url.Values) *http.Response {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if form.Get("csrf") == "" {
		form.Set("csrf", b.csrf())
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

type upload struct {
	field, name string
	data        []byte
}

func (b *browser) postMultipart(path string, fields map[string]string, files ...upload) *http.Response {
	b.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("csrf", b.csrf())
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			b.t.Fatal(err)
		}
		_, _ = fw.Write(f.data)
	}
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return b.do(req)
}

// login signs the browser in with the backend's admin account.
func (b *browser) login() {
	b.t.Helper()
	resp := b.post("/admin/login", url.Values{"username": {apitest.Username}, "password": {apitest.Password}})
	if resp.StatusCode != http.StatusFound {
		b.t.Fatalf("login: expected 302, got %d body=%s", resp.StatusCode, readBody(b.t, resp))
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func expectRedirect(t *testing.T, resp *http.Response, to string) {
	t.Helper()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302 to %s, got %d", to, resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != to {
		t.Fatalf("expected redirect to %s, got %q", to, loc)
	}
}

// ---------- log capture ----------

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Path   string         `json:"path"`
	Audit  bool           `json:"audit"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuf) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	old := applog.SetOutput(buf)
	defer applog.SetOutput(old)

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		entries = append(entries, e)
	}
	return entries
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
