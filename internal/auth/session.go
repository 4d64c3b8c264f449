// Package auth holds the client-side authentication state: the current-user
// query, the session derived from it, and the route guards that read it.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/malangee/malangee/internal/cache"
	"github.com/malangee/malangee/internal/token"
	"github.com/malangee/malangee/pkg/client"
	"github.com/malangee/malangee/pkg/domain"
)

// API is the subset of the backend the session drives.
type API interface {
	ProfileFetcher
	Login(ctx context.Context, username, password string) (*domain.Token, error)
	Signup(ctx context.Context, loginID, nickname, password string) (*domain.User, error)
	UpdateMe(ctx context.Context, upd domain.UserUpdate) (*domain.User, error)
	DeleteMe(ctx context.Context) (*domain.User, error)
}

// Navigator moves the UI to a route. Implementations must not block; the
// session calls Navigate while holding its lock.
type Navigator interface {
	Navigate(route Route)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(Route)

func (f NavigatorFunc) Navigate(r Route) { f(r) }

// State is the derived authentication state.
type State struct {
	HasToken        bool
	IsLoading       bool
	IsAuthError     bool
	IsAuthenticated bool
	User            *domain.User
	Err             error
}

// Phase maps the state onto the guard state machine.
func (s State) Phase() Phase {
	switch {
	case !s.HasToken:
		return PhaseNoToken
	case s.IsLoading:
		return PhaseChecking
	case s.IsAuthenticated:
		return PhaseAuthenticated
	default:
		return PhaseUnauthenticated
	}
}

// Session owns the token, the query cache and the current-user query.
type Session struct {
	api    API
	tokens token.Store
	cache  *cache.Cache
	query  *UserQuery
	nav    Navigator
	log    *slog.Logger

	onLogout []func()

	// mu serializes teardown against State so no reader sees a half-cleared session.
	mu sync.RWMutex
}

// Option configures a Session.
type Option func(*Session)

// WithStaleTime overrides DefaultStaleTime.
func WithStaleTime(d time.Duration) Option {
	return func(s *Session) { s.query.staleTime = d }
}

// WithLogoutHook registers fn to run during logout teardown, under the
// session lock. Use it to clear other per-session state.
func WithLogoutHook(fn func()) Option {
	return func(s *Session) { s.onLogout = append(s.onLogout, fn) }
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// NewSession wires the session. nav may be nil when nothing navigates.
func NewSession(api API, tokens token.Store, c *cache.Cache, nav Navigator, opts ...Option) *Session {
	if nav == nil {
		nav = NavigatorFunc(func(Route) {})
	}
	s := &Session{
		api:    api,
		tokens: tokens,
		cache:  c,
		query:  NewUserQuery(api, tokens, c, DefaultStaleTime),
		nav:    nav,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Query exposes the current-user query.
func (s *Session) Query() *UserQuery {
	return s.query
}

// State derives the authentication state from the token and the query.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hasToken := s.tokens.Exists()
	snap := s.query.Snapshot()
	authErr := client.IsAuth(snap.Err)
	return State{
		HasToken:        hasToken,
		IsLoading:       hasToken && snap.Loading,
		IsAuthError:     authErr,
		IsAuthenticated: hasToken && snap.User != nil && !authErr,
		User:            snap.User,
		Err:             snap.Err,
	}
}

// Load runs the current-user query, honoring freshness.
func (s *Session) Load(ctx context.Context) State {
	if _, err := s.query.Fetch(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		s.log.Debug("load profile", "error", err)
	}
	return s.State()
}

// RefreshUser refetches the profile. Token and cache identity are untouched.
func (s *Session) RefreshUser(ctx context.Context) (*domain.User, error) {
	u, err := s.query.Refetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth.RefreshUser: %w", err)
	}
	return u, nil
}

// Login exchanges credentials for a token, stores it, refetches the profile
// and navigates home. On failure nothing is stored.
func (s *Session) Login(ctx context.Context, username, password string) error {
	if err := domain.ValidateLogin(username, password); err != nil {
		return err
	}
	tok, err := s.api.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("auth.Login: %w", err)
	}
	if tok == nil || tok.AccessToken == "" {
		return fmt.Errorf("auth.Login: empty access token")
	}
	if err := s.tokens.Set(tok.AccessToken); err != nil {
		return fmt.Errorf("auth.Login: %w", err)
	}
	s.query.Reset()
	if _, err := s.query.Fetch(ctx); err != nil {
		if client.IsAuth(err) {
			return fmt.Errorf("auth.Login: %w", err)
		}
		s.log.Warn("profile after login", "error", err)
	}
	s.log.Info("logged in", "login_id", username)
	s.nav.Navigate(RouteHome)
	return nil
}

// Register creates an account and navigates to the login route.
func (s *Session) Register(ctx context.Context, req domain.SignupRequest) (*domain.User, error) {
	if err := domain.ValidateSignup(req); err != nil {
		return nil, err
	}
	u, err := s.api.Signup(ctx, req.LoginID, req.Nickname, req.Password)
	if err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}
	s.log.Info("registered", "login_id", u.LoginID)
	s.nav.Navigate(RouteLogin)
	return u, nil
}

// UpdateNickname changes the nickname and writes the new profile into the cache.
func (s *Session) UpdateNickname(ctx context.Context, nickname string) (*domain.User, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, domain.ErrNewNickname
	}
	u, err := s.api.UpdateMe(ctx, domain.UserUpdate{Nickname: &nickname})
	if err != nil {
		return nil, fmt.Errorf("auth.UpdateNickname: %w", err)
	}
	s.query.SetData(u)
	return u, nil
}

// DeleteAccount deactivates the account, then tears the session down like Logout.
func (s *Session) DeleteAccount(ctx context.Context) error {
	if _, err := s.api.DeleteMe(ctx); err != nil {
		return fmt.Errorf("auth.DeleteAccount: %w", err)
	}
	s.Logout()
	return nil
}

// Logout removes the token, clears the whole query cache and navigates to
// the login route as one step.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.tokens.Remove(); err != nil {
		s.log.Warn("remove token", "error", err)
	}
	s.cache.Clear()
	s.query.Reset()
	for _, fn := range s.onLogout {
		fn()
	}
	s.log.Info("logged out")
	s.nav.Navigate(RouteLogin)
}

// Expiry decodes the token's exp claim without verifying the signature.
// It is informational only.
func (s *Session) Expiry() (time.Time, bool) {
	tok, ok := s.tokens.Get()
	if !ok {
		return time.Time{}, false
	}
	return TokenExpiry(tok)
}

// TokenExpiry reads the exp claim of a JWT without verification.
func TokenExpiry(raw string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
