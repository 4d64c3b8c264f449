package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/malangee/malangee/internal/auth"
)

type loginDoneMsg struct {
	scope
	err error
}

type loginModel struct {
	session    *auth.Session
	gen        int
	inputs     []textinput.Model
	focus      int
	submitting bool
	err        string
}

func newLoginModel(s *auth.Session, gen int) loginModel {
	id := textinput.New()
	id.Prompt = "아이디    "
	id.Placeholder = "아이디를 입력해주세요"
	id.CharLimit = 64
	id.Focus()

	pw := textinput.New()
	pw.Prompt = "비밀번호  "
	pw.Placeholder = "비밀번호를 입력해주세요"
	pw.CharLimit = 128
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'

	return loginModel{session: s, gen: gen, inputs: []textinput.Model{id, pw}}
}

func (m loginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = userMessage(msg.err)
			m.inputs[1].SetValue("")
			m = m.focusOn(1)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down", "shift+tab", "up":
			return m.focusOn(1 - m.focus), nil
		case "ctrl+n":
			return m, navigateCmd(routeSignup)
		case "enter":
			if m.focus == 0 {
				return m.focusOn(1), nil
			}
			return m.submit()
		}
		m.err = ""
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m loginModel) focusOn(i int) loginModel {
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

func (m loginModel) submit() (loginModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	m.submitting = true
	m.err = ""
	s, gen := m.session, m.gen
	username := strings.TrimSpace(m.inputs[0].Value())
	password := m.inputs[1].Value()
	return m, func() tea.Msg {
		err := s.Login(context.Background(), username, password)
		return loginDoneMsg{scope: scope{gen: gen}, err: err}
	}
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString("\n " + titleStyle.Render("로그인") + "\n\n")
	for _, in := range m.inputs {
		b.WriteString(" " + in.View() + "\n")
	}
	b.WriteString("\n")
	if m.err != "" {
		b.WriteString(" " + errorStyle.Render(m.err) + "\n\n")
	}
	if m.submitting {
		b.WriteString(" " + buttonDisabledStyle.Render("로그인 중...") + "\n")
	} else {
		b.WriteString(" " + buttonStyle.Render("로그인") + "\n")
	}
	b.WriteString("\n " + dimStyle.Render("계정이 없으신가요? ") + accentStyle.Render("ctrl+n 회원가입") + "\n")
	return b.String()
}
