// Package availability implements the live duplicate checks for login ids
// and nicknames shown while the user types.
package availability

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/malangee/malangee/internal/debounce"
	"github.com/malangee/malangee/pkg/client"
	"github.com/malangee/malangee/pkg/domain"
)

// Kind selects which value a Checker verifies.
type Kind int

const (
	LoginID Kind = iota
	Nickname
)

func (k Kind) String() string {
	if k == Nickname {
		return "nickname"
	}
	return "login-id"
}

// User-facing messages.
const (
	MsgLoginIDTaken  = "이미 사용중인 아이디입니다"
	MsgNicknameTaken = "이미 사용중인 닉네임입니다"
	MsgNetwork       = "서버에 연결할 수 없습니다. 네트워크를 확인해주세요."
	MsgUnauthorized  = "인증이 필요합니다."
	MsgNotFound      = "API 엔드포인트를 찾을 수 없습니다."
	MsgServer        = "서버 오류가 발생했습니다. 잠시 후 다시 시도해주세요."
)

// Defaults for Config.
const (
	DefaultDebounce  = 500 * time.Millisecond
	DefaultMinLength = 1
)

// API is the pair of duplicate-check endpoints.
type API interface {
	CheckLoginID(ctx context.Context, loginID string) (*domain.Availability, error)
	CheckNickname(ctx context.Context, nickname string) (*domain.Availability, error)
}

// Config tunes a Checker. Zero fields take the defaults.
type Config struct {
	Debounce  time.Duration
	MinLength int
}

// State is the check result for the current input.
type State struct {
	// Error is the message to show, nil when there is nothing to show.
	Error *string
	// Checking is true from the moment the debounce fires until the result lands.
	Checking bool
	// Available is nil while unknown.
	Available *bool
}

// IsAvailable reports a confirmed available result.
func (s State) IsAvailable() bool {
	return s.Available != nil && *s.Available
}

// ErrorText returns the error message or "".
func (s State) ErrorText() string {
	if s.Error == nil {
		return ""
	}
	return *s.Error
}

// Checker tracks availability of a single input field.
type Checker struct {
	kind      Kind
	api       API
	minLength int
	onChange  func(State)
	log       *slog.Logger

	mu    sync.Mutex
	state State
	value string

	deb *debounce.Debouncer[string, *domain.Availability]
}

// NewChecker returns a checker of kind. onChange, if non-nil, receives every
// state change; it must not call back into the checker.
func NewChecker(kind Kind, api API, cfg Config, onChange func(State)) *Checker {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultMinLength
	}
	c := &Checker{
		kind:      kind,
		api:       api,
		minLength: cfg.MinLength,
		onChange:  onChange,
		log:       slog.Default().With("check", kind.String()),
	}
	c.deb = debounce.New(debounce.Config[string, *domain.Availability]{
		Wait:   cfg.Debounce,
		Call:   c.call,
		Fire:   c.fire,
		Commit: c.commit,
	})
	return c
}

// Kind returns the checked field.
func (c *Checker) Kind() Kind { return c.kind }

// State returns the current state.
func (c *Checker) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Value returns the last input passed to Update.
func (c *Checker) Value() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Update feeds a new input value. Values shorter than the minimum length
// reset the state and never reach the API. Values equal to the last one are
// ignored. A result for the previous value is cleared until the new check lands.
func (c *Checker) Update(value string) {
	c.mu.Lock()
	if value == c.value {
		c.mu.Unlock()
		return
	}
	c.value = value
	stale := c.state.Available != nil || c.state.Error != nil
	c.mu.Unlock()

	if utf8.RuneCountInString(value) < c.minLength {
		c.deb.Cancel()
		c.set(State{})
		return
	}
	if stale {
		c.set(State{})
	}
	c.deb.Trigger(value)
}

// Close stops pending work. No state changes are reported afterwards.
func (c *Checker) Close() {
	c.deb.Close()
}

func (c *Checker) call(ctx context.Context, value string) (*domain.Availability, error) {
	if c.kind == Nickname {
		return c.api.CheckNickname(ctx, value)
	}
	return c.api.CheckLoginID(ctx, value)
}

func (c *Checker) fire(string) {
	c.mu.Lock()
	st := c.state
	st.Checking = true
	c.mu.Unlock()
	c.set(st)
}

func (c *Checker) commit(value string, res *domain.Availability, err error) {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.log.Debug("availability check failed", "value", value, "error", err)
		msg := errorMessage(err)
		c.set(State{Error: &msg})
		return
	}
	available := res != nil && res.IsAvailable
	st := State{Available: &available}
	if !available {
		msg := MsgLoginIDTaken
		if c.kind == Nickname {
			msg = MsgNicknameTaken
		}
		st.Error = &msg
	}
	c.set(st)
}

func (c *Checker) set(st State) {
	c.mu.Lock()
	c.state = st
	c.mu.Unlock()
	if c.onChange != nil {
		c.onChange(st)
	}
}

// errorMessage maps a failed check to its user-facing message.
func errorMessage(err error) string {
	switch {
	case client.KindOf(err) == client.KindNetwork:
		return MsgNetwork
	case client.IsStatus(err, http.StatusUnauthorized):
		return MsgUnauthorized
	case client.IsStatus(err, http.StatusNotFound):
		return MsgNotFound
	case client.StatusOf(err) >= 500:
		return MsgServer
	}
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	return err.Error()
}
