package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/malangee/malangee/internal/auth"
	"github.com/malangee/malangee/internal/browser"
	"github.com/malangee/malangee/pkg/domain"
)

type topicAction int

const (
	actionStart topicAction = iota
	actionHistory
	actionWeb
	actionLogout
)

type topicItem struct {
	label  string
	desc   string
	action topicAction
}

var topicItems = []topicItem{
	{"대화 시작하기", "말랭이와 영어로 대화해요", actionStart},
	{"대화 기록 보기", "지난 대화와 스크립트를 확인해요", actionHistory},
	{"웹에서 열기", "브라우저로 MalangEE를 열어요", actionWeb},
	{"로그아웃", "", actionLogout},
}

// topicsModel is the home menu.
type topicsModel struct {
	session *auth.Session
	webURL  string
	user    *domain.User
	cursor  int
	err     string
}

func newTopicsModel(d Deps, u *domain.User) topicsModel {
	return topicsModel{session: d.Session, webURL: d.WebURL, user: u}
}

func (m topicsModel) Update(msg tea.Msg) (topicsModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "j", "down":
		if m.cursor < len(topicItems)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		return m.run(topicItems[m.cursor].action)
	}
	return m, nil
}

func (m topicsModel) run(a topicAction) (topicsModel, tea.Cmd) {
	switch a {
	case actionStart:
		return m, navigateCmd(routeSetup)
	case actionHistory:
		return m, navigateCmd(routeHistory)
	case actionWeb:
		m.err = ""
		if err := browser.Open(browser.PageURL(m.webURL, string(auth.RouteHome))); err != nil {
			m.err = err.Error()
		}
		return m, nil
	case actionLogout:
		return m, logoutCmd(m.session)
	}
	return m, nil
}

// logoutCmd tears the session down; the session itself navigates to login.
func logoutCmd(s *auth.Session) tea.Cmd {
	return func() tea.Msg {
		s.Logout()
		return nil
	}
}

func (m topicsModel) View() string {
	var b strings.Builder
	greeting := "반가워요!"
	if name := m.user.DisplayName(); name != "" {
		greeting = "반가워요, " + name + "님!"
	}
	b.WriteString("\n " + selectedStyle.Render(greeting) + "\n")
	b.WriteString(" " + dimStyle.Render("오늘은 무엇을 할까요?") + "\n\n")

	for i, item := range topicItems {
		line := "   " + normalStyle.Render(item.label)
		if i == m.cursor {
			line = " " + accentStyle.Render("> ") + selectedStyle.Render(item.label)
		}
		if item.desc != "" {
			line += "  " + metaStyle.Render(item.desc)
		}
		b.WriteString(line + "\n")
	}
	if m.err != "" {
		b.WriteString("\n " + errorStyle.Render(m.err) + "\n")
	}
	return b.String()
}
