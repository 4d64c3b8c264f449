package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/malangee/malangee/internal/auth"
	"github.com/malangee/malangee/internal/availability"
	"github.com/malangee/malangee/pkg/domain"
)

const (
	fieldLoginID = iota
	fieldPassword
	fieldNickname
)

// checkMsg carries a duplicate-check state change off the bus.
type checkMsg struct {
	scope
	kind  availability.Kind
	state availability.State
}

type signupDoneMsg struct {
	scope
	err error
}

type signupModel struct {
	session   *auth.Session
	gen       int
	inputs    []textinput.Model
	focus     int
	idCheck   *availability.Checker
	nickCheck *availability.Checker
	idState   availability.State
	nickState availability.State
	pwErr     string

	submitting bool
	err        string
}

// checkerFor builds a checker whose state changes reach the loop as checkMsg.
func checkerFor(kind availability.Kind, d Deps, gen int) *availability.Checker {
	bus := d.Bus
	return availability.NewChecker(kind, d.API, d.Checks, func(st availability.State) {
		bus.Send(checkMsg{scope: scope{gen: gen}, kind: kind, state: st})
	})
}

func newSignupModel(d Deps, gen int) signupModel {
	id := textinput.New()
	id.Prompt = "아이디    "
	id.Placeholder = "아이디를 입력해주세요"
	id.CharLimit = 64
	id.Focus()

	pw := textinput.New()
	pw.Prompt = "비밀번호  "
	pw.Placeholder = "영문+숫자 조합 10자리 이상"
	pw.CharLimit = 128
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'

	nick := textinput.New()
	nick.Prompt = "닉네임    "
	nick.Placeholder = "닉네임을 입력해주세요"
	nick.CharLimit = 32

	return signupModel{
		session:   d.Session,
		gen:       gen,
		inputs:    []textinput.Model{id, pw, nick},
		idCheck:   checkerFor(availability.LoginID, d, gen),
		nickCheck: checkerFor(availability.Nickname, d, gen),
	}
}

func (m signupModel) Init() tea.Cmd {
	return textinput.Blink
}

// close stops both checkers.
func (m signupModel) close() {
	if m.idCheck != nil {
		m.idCheck.Close()
	}
	if m.nickCheck != nil {
		m.nickCheck.Close()
	}
}

func (m signupModel) Update(msg tea.Msg) (signupModel, tea.Cmd) {
	switch msg := msg.(type) {
	case checkMsg:
		if msg.kind == availability.Nickname {
			m.nickState = msg.state
		} else {
			m.idState = msg.state
		}
		return m, nil

	case signupDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = userMessage(msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			return m.focusOn((m.focus + 1) % len(m.inputs)), nil
		case "shift+tab", "up":
			return m.focusOn((m.focus + len(m.inputs) - 1) % len(m.inputs)), nil
		case "esc":
			return m, navigateCmd(auth.RouteLogin)
		case "enter":
			if m.focus < fieldNickname {
				return m.focusOn(m.focus + 1), nil
			}
			return m.submit()
		}
		m.err = ""
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	m.fieldChanged(m.focus)
	return m, cmd
}

// fieldChanged feeds the edited field to its checker or validator.
func (m *signupModel) fieldChanged(field int) {
	v := m.inputs[field].Value()
	switch field {
	case fieldLoginID:
		m.idCheck.Update(v)
	case fieldNickname:
		m.nickCheck.Update(v)
	case fieldPassword:
		m.pwErr = ""
		if v != "" {
			if err := domain.ValidatePassword(v); err != nil {
				m.pwErr = err.Error()
			}
		}
	}
}

func (m signupModel) focusOn(i int) signupModel {
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	return m
}

func (m signupModel) request() domain.SignupRequest {
	return domain.SignupRequest{
		LoginID:  m.inputs[fieldLoginID].Value(),
		Password: m.inputs[fieldPassword].Value(),
		Nickname: m.inputs[fieldNickname].Value(),
		IsActive: true,
	}
}

// canSubmit requires both checks to have passed for the current input and
// the form to validate.
func (m signupModel) canSubmit() bool {
	return checked(m.idCheck, m.idState) && checked(m.nickCheck, m.nickState) &&
		domain.ValidateSignup(m.request()) == nil
}

// checked reads the checker directly since the last checkMsg may predate an edit.
func checked(c *availability.Checker, last availability.State) bool {
	if c == nil {
		return last.IsAvailable()
	}
	return last.IsAvailable() && c.State().IsAvailable()
}

func (m signupModel) submit() (signupModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	if !m.canSubmit() {
		if err := domain.ValidateSignup(m.request()); err != nil {
			m.err = err.Error()
		}
		return m, nil
	}
	m.submitting = true
	m.err = ""
	s, gen, req := m.session, m.gen, m.request()
	return m, func() tea.Msg {
		_, err := s.Register(context.Background(), req)
		return signupDoneMsg{scope: scope{gen: gen}, err: err}
	}
}

func checkLine(st availability.State, okText string) string {
	switch {
	case st.Checking:
		return checkingStyle.Render("확인 중...")
	case st.ErrorText() != "":
		return errorStyle.Render(st.ErrorText())
	case st.IsAvailable():
		return okStyle.Render(okText)
	}
	return ""
}

func (m signupModel) View() string {
	var b strings.Builder
	b.WriteString("\n " + titleStyle.Render("회원가입") + "\n\n")

	notes := []string{
		checkLine(m.idState, "사용 가능한 아이디입니다"),
		errorStyle.Render(m.pwErr),
		checkLine(m.nickState, "사용 가능한 닉네임입니다"),
	}
	for i, in := range m.inputs {
		b.WriteString(" " + in.View() + "\n")
		b.WriteString("           " + notes[i] + "\n")
	}
	b.WriteString("\n")
	if m.err != "" {
		b.WriteString(" " + errorStyle.Render(m.err) + "\n\n")
	}
	switch {
	case m.submitting:
		b.WriteString(" " + buttonDisabledStyle.Render("가입 중...") + "\n")
	case m.canSubmit():
		b.WriteString(" " + buttonStyle.Render("회원가입") + "\n")
	default:
		b.WriteString(" " + buttonDisabledStyle.Render("회원가입") + "\n")
	}
	b.WriteString("\n " + dimStyle.Render("이미 계정이 있으신가요? ") + accentStyle.Render("esc 로그인") + "\n")
	return b.String()
}
