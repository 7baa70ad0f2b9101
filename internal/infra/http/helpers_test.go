package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"meridian/internal/config"
	"meridian/internal/domain"
	"meridian/internal/infra/ratelimit"
	"meridian/internal/infra/token"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

var testClock = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type memDirectory struct {
	mu    sync.Mutex
	users map[string]domain.User
	err   error
}

func (d *memDirectory) FetchActiveUser(_ context.Context, id string) (domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return domain.User{}, d.err
	}
	user, ok := d.users[id]
	if !ok || !user.IsActive {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (d *memDirectory) FetchByEmail(_ context.Context, email string) (domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return domain.User{}, d.err
	}
	for _, user := range d.users {
		if user.Email == email {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (d *memDirectory) put(user domain.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[user.ID] = user
}

func (d *memDirectory) deactivate(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	user := d.users[id]
	user.IsActive = false
	d.users[id] = user
}

func bcryptHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(hash)
}

type testEnv struct {
	server    *Server
	directory *memDirectory
	codec     *token.Codec
}

func newTestEnv(t *testing.T, cfg config.Config, users ...domain.User) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if cfg.Environment == "" {
		cfg.Environment = "production"
	}
	dir := &memDirectory{users: make(map[string]domain.User)}
	for _, u := range users {
		dir.put(u)
	}
	codec := token.NewCodec("test-secret", 24*time.Hour, time.Hour, func() time.Time { return testClock })
	server := NewServerWithDeps(cfg, ServerDeps{
		Directory:   dir,
		Codec:       codec,
		Guard:       ratelimit.NewMemoryGuard(func() time.Time { return testClock }, 0),
		RateLimiter: ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{Now: func() time.Time { return testClock }}),
		Bindings:    BindingsFromConfig(cfg),
		Now:         func() time.Time { return testClock },
	})
	return &testEnv{server: server, directory: dir, codec: codec}
}

func (e *testEnv) do(t *testing.T, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.server.r.ServeHTTP(w, req)
	return w
}

func (e *testEnv) token(t *testing.T, user domain.User) string {
	t.Helper()
	raw, err := e.codec.Issue(user)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return raw
}

func bearer(raw string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + raw}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
	return out
}

func activeUser(id, email string, role domain.Role, org string, passwordHash string) domain.User {
	return domain.User{
		ID:             id,
		Email:          email,
		PasswordHash:   passwordHash,
		Role:           role,
		OrganizationID: org,
		IsActive:       true,
	}
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d: %s", w.Code, status, strings.TrimSpace(w.Body.String()))
	}
}

func wantErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	wantStatus(t, w, status)
	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Code != code {
		t.Fatalf("error code = %q, want %q", resp.Code, code)
	}
}

// downstreamRecorder is a stand-in domain service that remembers what the
// gateway forwarded to it.
type downstreamRecorder struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
	header   http.Header
}

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
	Header http.Header
}

func newDownstream(status int, body string) (*downstreamRecorder, *httptest.Server) {
	rec := &downstreamRecorder{status: status, body: body}
	srv := httptest.NewServer(rec)
	return rec, srv
}

func (d *downstreamRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	buf := new(strings.Builder)
	if r.Body != nil {
		b := make([]byte, 4096)
		for {
			n, err := r.Body.Read(b)
			buf.Write(b[:n])
			if err != nil {
				break
			}
		}
	}
	d.mu.Lock()
	d.requests = append(d.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Body:   buf.String(),
		Header: r.Header.Clone(),
	})
	d.mu.Unlock()
	for k, vv := range d.header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(d.status)
	_, _ = w.Write([]byte(d.body))
}

func (d *downstreamRecorder) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.requests)
}

func (d *downstreamRecorder) last(t *testing.T) recordedRequest {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.requests) == 0 {
		t.Fatal("downstream received no requests")
	}
	return d.requests[len(d.requests)-1]
}
