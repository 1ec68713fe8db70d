package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"coopsite/internal/config"
	"coopsite/internal/http/handlers"
	"coopsite/internal/repos"
)

const adminPw = "Serra-2025!"

type harness struct {
	t    *testing.T
	app  *fiber.App
	deps *handlers.Deps
	jar  map[string]*http.Cookie
}

func newHarness(t *testing.T, lim handlers.Limits) *harness {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{SessionTTL: time.Hour}
	deps := handlers.NewDeps(db, cfg, nil)
	deps.AuthSvc.Cost = bcrypt.MinCost
	// bookings in the tests target Tuesday 2025-06-10
	deps.BookingHandler.Bookings.Now = func() time.Time { return time.Date(2025, 6, 9, 9, 0, 0, 0, time.UTC) }

	h := &harness{t: t, app: handlers.NewApp(cfg, deps, lim), deps: deps, jar: map[string]*http.Cookie{}}
	resp := h.do("GET", "/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: %d", resp.StatusCode)
	}
	if c := h.jar["csrf_"]; c == nil || c.Value == "" {
		t.Fatal("csrf token missing")
	}
	return h
}

func (h *harness) keep(resp *http.Response) {
	for _, c := range resp.Cookies() {
		if c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(time.Now())) {
			delete(h.jar, c.Name)
			continue
		}
		h.jar[c.Name] = c
	}
}

// do sends a JSON request carrying the cookie jar and the CSRF header.
func (h *harness) do(method, path string, body any) *http.Response {
	h.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			h.t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c := h.jar["csrf_"]; c != nil {
		req.Header.Set("X-Csrf-Token", c.Value)
	}
	for _, c := range h.jar {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	resp, err := h.app.Test(req, -1)
	if err != nil {
		h.t.Fatal(err)
	}
	h.keep(resp)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func expect(t *testing.T, resp *http.Response, code int) {
	t.Helper()
	if resp.StatusCode != code {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: want %d, got %d: %s", resp.Request.Method, resp.Request.URL.Path, code, resp.StatusCode, b)
	}
}

func (h *harness) loginAdmin() {
	h.t.Helper()
	if _, err := h.deps.AuthSvc.CreateAdmin(context.Background(), "staff", adminPw, ""); err != nil {
		h.t.Fatal(err)
	}
	resp := h.do("POST", "/admin/login", map[string]string{"username": "staff", "password": adminPw})
	expect(h.t, resp, http.StatusOK)
	if h.jar[handlers.AdminCookie] == nil {
		h.t.Fatal("admin session cookie missing")
	}
}

type logEntry struct {
	Level   string         `json:"level"`
	Action  string         `json:"action"`
	AdminID string         `json:"admin_id"`
	Fields  map[string]any `json:"fields"`
}

type lockedWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

// captureLogs swaps the standard logger output while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	w := &lockedWriter{}
	oldW, oldFlags := log.Writer(), log.Flags()
	log.SetOutput(w)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var out []logEntry
	for _, line := range strings.Split(strings.TrimSpace(w.buf.String()), "\n") {
		var e logEntry
		if json.Unmarshal([]byte(strings.TrimSpace(line)), &e) == nil {
			out = append(out, e)
		}
	}
	return out
}

func findAction(entries []logEntry, action string) *logEntry {
	for i := range entries {
		if entries[i].Action == action {
			return &entries[i]
		}
	}
	return nil
}
