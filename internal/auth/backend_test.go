package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/malangee/malangee/internal/cache"
	"github.com/malangee/malangee/internal/token"
	"github.com/malangee/malangee/pkg/client"
)

// fakeBackend is a minimal in-memory MalangEE API.
type fakeBackend struct {
	t *testing.T

	mu       sync.Mutex
	users    map[string]*fakeUser // by login id
	tokens   map[string]string    // token -> login id
	nextID   int64
	meStatus int // forced status for /users/me, 0 = normal

	meCalls atomic.Int32
}

type fakeUser struct {
	id       int64
	loginID  string
	nickname string
	password string
	active   bool
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	fb := &fakeBackend{t: t, users: map[string]*fakeUser{}, tokens: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(srv.Close)
	return fb, srv
}

func (fb *fakeBackend) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func (fb *fakeBackend) profile(u *fakeUser) map[string]any {
	return map[string]any{"id": u.id, "login_id": u.loginID, "nickname": u.nickname, "is_active": u.active}
}

func (fb *fakeBackend) caller(r *http.Request) *fakeUser {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if id, ok := fb.tokens[tok]; ok {
		return fb.users[id]
	}
	return nil
}

func (fb *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	switch r.Method + " " + r.URL.Path {
	case "POST /auth/signup":
		var req struct {
			LoginID  string `json:"login_id"`
			Nickname string `json:"nickname"`
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		if _, ok := fb.users[req.LoginID]; ok {
			fb.writeJSON(w, 400, map[string]string{"detail": "이미 존재하는 사용자 이름(ID)입니다."})
			return
		}
		fb.nextID++
		u := &fakeUser{id: fb.nextID, loginID: req.LoginID, nickname: req.Nickname, password: req.Password, active: true}
		fb.users[req.LoginID] = u
		fb.writeJSON(w, 200, fb.profile(u))
	case "POST /auth/login":
		r.ParseForm() //nolint:errcheck
		u, ok := fb.users[r.PostForm.Get("username")]
		if !ok || u.password != r.PostForm.Get("password") || !u.active {
			fb.writeJSON(w, 400, map[string]string{"detail": "Incorrect login ID or password"})
			return
		}
		tok := signedToken(fb.t, u.loginID, time.Now().Add(time.Hour))
		fb.tokens[tok] = u.loginID
		fb.writeJSON(w, 200, map[string]string{"access_token": tok, "token_type": "bearer"})
	case "GET /users/me":
		fb.meCalls.Add(1)
		if fb.meStatus != 0 {
			fb.writeJSON(w, fb.meStatus, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		u := fb.caller(r)
		if u == nil {
			fb.writeJSON(w, 401, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		fb.writeJSON(w, 200, fb.profile(u))
	case "PUT /users/me":
		u := fb.caller(r)
		if u == nil {
			fb.writeJSON(w, 401, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		var upd struct {
			Nickname *string `json:"nickname"`
		}
		json.NewDecoder(r.Body).Decode(&upd) //nolint:errcheck
		if upd.Nickname != nil {
			u.nickname = *upd.Nickname
		}
		fb.writeJSON(w, 200, fb.profile(u))
	case "DELETE /users/me":
		u := fb.caller(r)
		if u == nil {
			fb.writeJSON(w, 401, map[string]string{"detail": "Could not validate credentials"})
			return
		}
		u.active = false
		fb.writeJSON(w, 200, fb.profile(u))
	default:
		http.NotFound(w, r)
	}
}

func (fb *fakeBackend) setMeStatus(code int) {
	fb.mu.Lock()
	fb.meStatus = code
	fb.mu.Unlock()
}

func signedToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString() error: %v", err)
	}
	return s
}

// recorder is a Navigator that remembers every route.
type recorder struct {
	mu     sync.Mutex
	routes []Route
}

func (r *recorder) Navigate(route Route) {
	r.mu.Lock()
	r.routes = append(r.routes, route)
	r.mu.Unlock()
}

func (r *recorder) Last() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routes) == 0 {
		return ""
	}
	return r.routes[len(r.routes)-1]
}

type harness struct {
	backend *fakeBackend
	tokens  *token.MemoryStore
	cache   *cache.Cache
	nav     *recorder
	session *Session
	api     *client.Client
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	fb, srv := newFakeBackend(t)
	tokens := token.NewMemoryStore("")
	c := cache.New(time.Minute)
	t.Cleanup(c.Close)
	api := client.New(srv.URL, tokens.Get)
	nav := &recorder{}
	return &harness{
		backend: fb,
		tokens:  tokens,
		cache:   c,
		nav:     nav,
		api:     api,
		session: NewSession(api, tokens, c, nav, opts...),
	}
}
