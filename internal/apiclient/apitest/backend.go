// Package apitest provides an in-memory Gift Finder API for tests.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"giftfinder/internal/domain"
)

const (
	Username = "admin"
	Password = "admin123"
	Token    = "tok-admin"
)

// Request is one call received by the backend.
type Request struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   []byte
}

type Backend struct {
	*httptest.Server

	mu       sync.Mutex
	stores   map[int64]domain.Store
	gifts    map[int64]domain.Gift
	nextID   int64
	recs     []domain.Recommendation
	fail     map[string]int
	requests []Request
	searches int
}

// New starts a backend seeded with two stores and three gifts.
func New() *Backend {
	b := &Backend{
		stores: map[int64]domain.Store{},
		gifts:  map[int64]domain.Gift{},
		nextID: 100,
		fail:   map[string]int{},
	}
	b.stores[1] = domain.Store{ID: 1, NameAR: "متجر الألعاب", NameEN: "Game Hub", LocationURL: "https://maps.example/1"}
	b.stores[2] = domain.Store{ID: 2, NameAR: "بيت الكتب", NameEN: "Book House", LocationURL: "https://maps.example/2"}
	b.gifts[1] = domain.Gift{ID: 1, StoreID: 1, NameAR: "جهاز ألعاب", NameEN: "Game Console", Category: "Electronics", MinAge: 10, MaxAge: 40, MinBudget: 200, MaxBudget: 500, Interests: []string{"Gaming", "Technology"}}
	b.gifts[2] = domain.Gift{ID: 2, StoreID: 2, NameAR: "رواية", NameEN: "Novel", Category: "Books", MinAge: 12, MaxAge: 99, MinBudget: 10, MaxBudget: 40, Interests: []string{"Art"}}
	b.gifts[3] = domain.Gift{ID: 3, StoreID: 1, NameAR: "سماعات", NameEN: "Headphones", Category: "Electronics", MinAge: 8, MaxAge: 99, MinBudget: 50, MaxBudget: 150, Interests: []string{"Music"}}
	b.recs = []domain.Recommendation{
		{Gift: b.gifts[1], Score: 0.91},
		{Gift: b.gifts[3], Score: 0.55},
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	return b
}

// URL of the API root, ready for apiclient.New.
func (b *Backend) URL() string { return b.Server.URL + "/api/v1" }

// Fail makes every request whose "METHOD /path" starts with prefix answer
// with status.
func (b *Backend) Fail(prefix string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[prefix] = status
}

func (b *Backend) SetRecommendations(rs []domain.Recommendation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recs = rs
}

// Requests returns the calls received so far, optionally only those
// matching method and path.
func (b *Backend) Requests(method, path string) []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Request
	for _, r := range b.requests {
		if (method == "" || r.Method == method) && (path == "" || r.Path == path) {
			out = append(out, r)
		}
	}
	return out
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")

	b.mu.Lock()
	b.requests = append(b.requests, Request{Method: r.Method, Path: path, Query: r.URL.RawQuery, Auth: r.Header.Get("Authorization"), Body: body})
	for prefix, status := range b.fail {
		if strings.HasPrefix(r.Method+" "+path, prefix) {
			b.mu.Unlock()
			writeJSON(w, status, map[string]string{"error": "forced failure"})
			return
		}
	}
	b.mu.Unlock()

	if strings.HasPrefix(path, "/admin/") && path != "/admin/login" {
		if r.Header.Get("Authorization") != "Bearer "+Token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authentication required"})
			return
		}
	}

	switch {
	case r.Method == http.MethodGet && path == "/health":
		writeJSON(w, 200, map[string]string{"status": "ok", "message": "Gift Finder API is running"})
	case r.Method == http.MethodGet && (path == "/stores" || path == "/admin/stores"):
		writeJSON(w, 200, b.storeList())
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/stores/"):
		b.getStore(w, strings.TrimPrefix(path, "/stores/"))
	case r.Method == http.MethodGet && (path == "/gifts" || path == "/admin/gifts"):
		writeJSON(w, 200, b.giftList(r.URL.Query().Get("category")))
	case r.Method == http.MethodGet && path == "/categories":
		writeJSON(w, 200, []string{"Books", "Electronics"})
	case r.Method == http.MethodGet && path == "/interests":
		writeJSON(w, 200, []string{"Art", "Gaming", "Music", "Technology"})
	case r.Method == http.MethodPost && path == "/gifts/recommend":
		b.mu.Lock()
		b.searches++
		recs := b.recs
		b.mu.Unlock()
		writeJSON(w, 200, recs)
	case r.Method == http.MethodPost && path == "/admin/login":
		b.login(w, body)
	case r.Method == http.MethodPost && path == "/admin/logout":
		writeJSON(w, 200, map[string]string{"message": "Logout successful"})
	case r.Method == http.MethodGet && path == "/admin/check":
		writeJSON(w, 200, map[string]any{"authenticated": true, "admin": domain.AdminInfo{ID: 1, Username: Username}})
	case r.Method == http.MethodGet && path == "/admin/stats":
		b.stats(w)
	case r.Method == http.MethodPost && path == "/admin/stores":
		b.saveStore(w, 0, body)
	case r.Method == http.MethodPost && path == "/admin/gifts":
		b.saveGift(w, 0, body)
	case strings.HasPrefix(path, "/admin/stores/"):
		b.storeByID(w, r.Method, strings.TrimPrefix(path, "/admin/stores/"), body)
	case strings.HasPrefix(path, "/admin/gifts/"):
		b.giftByID(w, r.Method, strings.TrimPrefix(path, "/admin/gifts/"), body)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	}
}

func (b *Backend) storeList() []domain.Store {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Store, 0, len(b.stores))
	for _, s := range b.stores {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (b *Backend) giftList(category string) []domain.Gift {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Gift, 0, len(b.gifts))
	for _, g := range b.gifts {
		if category != "" && g.Category != category {
			continue
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (b *Backend) getStore(w http.ResponseWriter, raw string) {
	id, _ := strconv.ParseInt(raw, 10, 64)
	b.mu.Lock()
	s, ok := b.stores[id]
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Store not found"})
		return
	}
	writeJSON(w, 200, s)
}

func (b *Backend) login(w http.ResponseWriter, body []byte) {
	var c struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	_ = json.Unmarshal(body, &c)
	if c.Username == "" || c.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Username and password required"})
		return
	}
	if c.Username != Username || c.Password != Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		return
	}
	writeJSON(w, 200, map[string]any{"message": "Login successful", "token": Token, "admin": domain.AdminInfo{ID: 1, Username: Username}})
}

func (b *Backend) stats(w http.ResponseWriter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	counts := map[string]int{}
	for _, g := range b.gifts {
		counts[g.Category]++
	}
	var cats []domain.CategoryStat
	for k, v := range counts {
		cats = append(cats, domain.CategoryStat{Category: k, Count: v})
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Category < cats[j].Category })
	writeJSON(w, 200, domain.Stats{
		TotalStores:    len(b.stores),
		TotalGifts:     len(b.gifts),
		TotalSearches:  b.searches,
		RecentSearches: []domain.SearchRecord{},
		CategoryStats:  cats,
	})
}

func (b *Backend) saveStore(w http.ResponseWriter, id int64, body []byte) {
	var s domain.Store
	if err := json.Unmarshal(body, &s); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}
	b.mu.Lock()
	status := http.StatusOK
	if id == 0 {
		b.nextID++
		id = b.nextID
		status = http.StatusCreated
	} else if _, ok := b.stores[id]; !ok {
		b.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Store not found"})
		return
	}
	s.ID = id
	b.stores[id] = s
	b.mu.Unlock()
	writeJSON(w, status, s)
}

func (b *Backend) saveGift(w http.ResponseWriter, id int64, body []byte) {
	var g domain.Gift
	if err := json.Unmarshal(body, &g); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}
	b.mu.Lock()
	status := http.StatusOK
	if id == 0 {
		b.nextID++
		id = b.nextID
		status = http.StatusCreated
	} else if _, ok := b.gifts[id]; !ok {
		b.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Gift not found"})
		return
	}
	g.ID = id
	b.gifts[id] = g
	b.mu.Unlock()
	writeJSON(w, status, g)
}

func (b *Backend) storeByID(w http.ResponseWriter, method, raw string, body []byte) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Store not found"})
		return
	}
	switch method {
	case http.MethodPut:
		b.saveStore(w, id, body)
	case http.MethodDelete:
		b.mu.Lock()
		delete(b.stores, id)
		b.mu.Unlock()
		writeJSON(w, 200, map[string]string{"message": "Store deleted successfully"})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
	}
}

func (b *Backend) giftByID(w http.ResponseWriter, method, raw string, body []byte) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Gift not found"})
		return
	}
	switch method {
	case http.MethodPut:
		b.saveGift(w, id, body)
	case http.MethodDelete:
		b.mu.Lock()
		delete(b.gifts, id)
		b.mu.Unlock()
		writeJSON(w, 200, map[string]string{"message": "Gift deleted successfully"})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// MemSession is an in-memory apiclient.Session.
type MemSession struct {
	mu  sync.Mutex
	tok string
}

func (s *MemSession) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tok, nil
}

func (s *MemSession) SetToken(t string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = t
	return nil
}

func (s *MemSession) ClearToken() error { return s.SetToken("") }
