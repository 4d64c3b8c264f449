package tui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/malangee/malangee/internal/auth"
	"github.com/malangee/malangee/internal/availability"
	"github.com/malangee/malangee/internal/cache"
	"github.com/malangee/malangee/internal/prefs"
	"github.com/malangee/malangee/internal/token"
	"github.com/malangee/malangee/pkg/client"
)

// fakeServer is an in-memory MalangEE backend for view tests.
type fakeServer struct {
	mu       sync.Mutex
	users    map[string]*fakeUser // by login id
	sessions []map[string]any
	details  map[string]map[string]any
	listErr  int // forced status for /chat/sessions, 0 = normal
}

type fakeUser struct {
	id       int
	loginID  string
	nickname string
	password string
	active   bool
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	t.Helper()
	fs := &fakeServer{users: map[string]*fakeUser{}, details: map[string]map[string]any{}}
	fs.users["malang01"] = &fakeUser{id: 1, loginID: "malang01", nickname: "말랭", password: "password123", active: true}
	srv := httptest.NewServer(http.HandlerFunc(fs.serve))
	t.Cleanup(srv.Close)
	return fs, srv
}

// addSessions appends n recorded conversations of 60s each, 30s spoken.
func (fs *fakeServer) addSessions(n int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("sess-%02d", len(fs.sessions)+1)
		fs.sessions = append(fs.sessions, map[string]any{
			"session_id":               id,
			"title":                    "Ordering coke at Mcdonald's " + id,
			"started_at":               "2026-01-09T10:30:00Z",
			"ended_at":                 "2026-01-09T10:31:00Z",
			"total_duration_sec":       60,
			"user_speech_duration_sec": 30,
		})
		fs.details[id] = map[string]any{
			"session_id": id,
			"title":      "Ordering coke",
			"messages": []map[string]any{
				{"role": "assistant", "content": "Hello! How are you today?"},
				{"role": "user", "content": "I'm good, thanks!"},
			},
		}
	}
}

func (fs *fakeServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func (fs *fakeServer) profile(u *fakeUser) map[string]any {
	return map[string]any{"id": u.id, "login_id": u.loginID, "nickname": u.nickname, "is_active": u.active}
}

func (fs *fakeServer) caller(r *http.Request) *fakeUser {
	id, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer tok-")
	if !ok {
		return nil
	}
	u := fs.users[id]
	if u == nil || !u.active {
		return nil
	}
	return u
}

func (fs *fakeServer) nicknameTaken(nick string) bool {
	for _, u := range fs.users {
		if u.nickname == nick {
			return true
		}
	}
	return false
}

func (fs *fakeServer) serve(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	unauthorized := map[string]string{"detail": "Could not validate credentials"}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")

	switch {
	case r.Method == http.MethodGet && path == "/openapi.json":
		fs.writeJSON(w, 200, map[string]any{"info": map[string]string{"title": "MalangEE API", "version": "1.0.0"}})
	case r.Method == http.MethodPost && path == "/auth/login":
		r.ParseForm() //nolint:errcheck
		u, ok := fs.users[r.PostForm.Get("username")]
		if !ok || u.password != r.PostForm.Get("password") || !u.active {
			fs.writeJSON(w, 400, map[string]string{"detail": "Incorrect login ID or password"})
			return
		}
		fs.writeJSON(w, 200, map[string]string{"access_token": "tok-" + u.loginID, "token_type": "bearer"})
	case r.Method == http.MethodPost && path == "/auth/signup":
		var req struct {
			LoginID  string `json:"login_id"`
			Nickname string `json:"nickname"`
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		if _, ok := fs.users[req.LoginID]; ok {
			fs.writeJSON(w, 400, map[string]string{"detail": "이미 존재하는 사용자 이름(ID)입니다."})
			return
		}
		u := &fakeUser{id: len(fs.users) + 1, loginID: req.LoginID, nickname: req.Nickname, password: req.Password, active: true}
		fs.users[req.LoginID] = u
		fs.writeJSON(w, 200, fs.profile(u))
	case r.Method == http.MethodPost && path == "/auth/check-login-id":
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		_, taken := fs.users[req["login_id"]]
		fs.writeJSON(w, 200, map[string]bool{"is_available": !taken})
	case r.Method == http.MethodPost && path == "/auth/check-nickname":
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		fs.writeJSON(w, 200, map[string]bool{"is_available": !fs.nicknameTaken(req["nickname"])})
	case path == "/users/me":
		u := fs.caller(r)
		if u == nil {
			fs.writeJSON(w, 401, unauthorized)
			return
		}
		switch r.Method {
		case http.MethodPut:
			var upd struct {
				Nickname *string `json:"nickname"`
			}
			json.NewDecoder(r.Body).Decode(&upd) //nolint:errcheck
			if upd.Nickname != nil {
				if fs.nicknameTaken(*upd.Nickname) {
					fs.writeJSON(w, 400, map[string]string{"detail": "이미 사용중인 닉네임입니다"})
					return
				}
				u.nickname = *upd.Nickname
			}
		case http.MethodDelete:
			u.active = false
		}
		fs.writeJSON(w, 200, fs.profile(u))
	case r.Method == http.MethodGet && path == "/chat/sessions":
		if fs.caller(r) == nil {
			fs.writeJSON(w, 401, unauthorized)
			return
		}
		if fs.listErr != 0 {
			fs.writeJSON(w, fs.listErr, map[string]string{"detail": "boom"})
			return
		}
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))   //nolint:errcheck
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit")) //nolint:errcheck
		end := min(skip+limit, len(fs.sessions))
		page := []map[string]any{}
		if skip < end {
			page = fs.sessions[skip:end]
		}
		fs.writeJSON(w, 200, page)
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/chat/sessions/"):
		d, ok := fs.details[strings.TrimPrefix(path, "/chat/sessions/")]
		if !ok {
			fs.writeJSON(w, 404, map[string]string{"detail": "Session not found"})
			return
		}
		fs.writeJSON(w, 200, d)
	default:
		http.NotFound(w, r)
	}
}

type testEnv struct {
	server *fakeServer
	tokens *token.MemoryStore
	prefs  *prefs.Store
	app    App
}

// newTestEnv wires a real session and client against the fake server.
// tok pre-seeds the token store.
func newTestEnv(t *testing.T, tok string) *testEnv {
	t.Helper()
	fs, srv := newFakeServer(t)
	tokens := token.NewMemoryStore(tok)
	c := cache.New(time.Minute)
	t.Cleanup(c.Close)
	api := client.New(srv.URL+"/api/v1", tokens.Get)
	bus := NewBus()
	p := prefs.New()
	s := auth.NewSession(api, tokens, c, bus, auth.WithLogoutHook(p.Clear))
	a := NewApp(Deps{
		Session: s,
		API:     api,
		Prefs:   p,
		Checks:  availability.Config{Debounce: time.Millisecond},
		Bus:     bus,
		WebURL:  "http://localhost:3000",
	})
	a.width, a.height = 100, 40
	return &testEnv{server: fs, tokens: tokens, prefs: p, app: a}
}

// send applies msg and returns the command it produced.
func (e *testEnv) send(msg tea.Msg) tea.Cmd {
	model, cmd := e.app.Update(msg)
	e.app = model.(App)
	return cmd
}

// run applies msg, then feeds the result of the returned command back in.
// Only use it where the command is a single synchronous call.
func (e *testEnv) run(t *testing.T, msg tea.Msg) {
	t.Helper()
	cmd := e.send(msg)
	if cmd == nil {
		t.Fatalf("expected a command for %T", msg)
	}
	if out := cmd(); out != nil {
		e.send(out)
	}
}

// pump feeds bus messages into the app until cond holds.
func (e *testEnv) pump(t *testing.T, cond func(App) bool) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for !cond(e.app) {
		select {
		case msg := <-e.app.deps.Bus.ch:
			e.send(busMsg{msg: msg})
		case <-deadline:
			t.Fatalf("timed out: view=%d decision=%v phase=%v", e.app.view, e.app.decision.View, e.app.auth.Phase())
		}
	}
}

// login drives the app from a cold start to the home menu as malang01.
func (e *testEnv) login(t *testing.T) {
	t.Helper()
	e.send(navigateMsg{route: auth.RouteHome})
	e.typeText("malang01")
	e.send(tea.KeyMsg{Type: tea.KeyTab})
	e.typeText("password123")
	e.run(t, tea.KeyMsg{Type: tea.KeyEnter})
	e.pump(t, func(a App) bool { return a.view == viewTopics && a.entered })
}

// typeText sends s one key press per rune.
func (e *testEnv) typeText(s string) {
	for _, r := range s {
		e.send(keyRune(r))
	}
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}
