package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/malangee/malangee/internal/auth"
	"github.com/malangee/malangee/internal/availability"
	"github.com/malangee/malangee/pkg/client"
	"github.com/malangee/malangee/pkg/domain"
)

const (
	// historyPageSize is how many sessions are requested per call.
	historyPageSize = 20
	// historyShowStep is how many more rows are revealed when scrolling past the end.
	historyShowStep = 10
)

const (
	msgNicknameConfirm = "새로운 닉네임을 확인해주세요"
	msgNicknameFailed  = "닉네임 변경에 실패했습니다. 입력 정보를 확인해주세요."
)

type historyLoadedMsg struct {
	scope
	skip     int
	sessions []domain.ChatSession
	err      error
}

type detailLoadedMsg struct {
	scope
	detail *domain.ChatSessionDetail
	err    error
}

type nicknameDoneMsg struct {
	scope
	user *domain.User
	err  error
}

type deleteDoneMsg struct {
	scope
	err error
}

type copiedMsg struct {
	scope
	err error
}

type historyPopup int

const (
	popupNone historyPopup = iota
	popupDetail
	popupNickname
	popupDelete
)

// historyModel lists past conversations and hosts the account popups.
type historyModel struct {
	deps Deps
	gen  int
	user *domain.User

	items   []domain.HistoryItem
	shown   int
	more    bool
	loading bool
	err     string
	cursor  int

	popup  historyPopup
	detail *domain.ChatSessionDetail
	notice string

	nickInput  string
	nickCheck  *availability.Checker
	nickState  availability.State
	nickErr    string
	submitting bool
}

func newHistoryModel(d Deps, u *domain.User, gen int) historyModel {
	return historyModel{deps: d, user: u, gen: gen, loading: true}
}

func (m historyModel) Init() tea.Cmd {
	return m.load(0)
}

func (m historyModel) load(skip int) tea.Cmd {
	api, gen := m.deps.API, m.gen
	return func() tea.Msg {
		sessions, err := api.ListChatSessions(context.Background(), skip, historyPageSize)
		return historyLoadedMsg{scope: scope{gen: gen}, skip: skip, sessions: sessions, err: err}
	}
}

// close stops the nickname checker, if any.
func (m historyModel) close() {
	if m.nickCheck != nil {
		m.nickCheck.Close()
	}
}

// authFailed asks the App to recheck the session when err is an auth error.
func authFailed(err error) tea.Cmd {
	if !client.IsAuth(err) {
		return nil
	}
	return func() tea.Msg { return authErrMsg{} }
}

func (m historyModel) Update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = userMessage(msg.err)
			return m, authFailed(msg.err)
		}
		m.err = ""
		if msg.skip == 0 {
			m.items = nil
			m.cursor = 0
			m.shown = 0
		}
		for _, s := range msg.sessions {
			m.items = append(m.items, domain.NewHistoryItem(s))
		}
		m.more = len(msg.sessions) == historyPageSize
		m.shown = min(m.shown+historyShowStep, len(m.items))
		return m, nil

	case detailLoadedMsg:
		if msg.err != nil {
			m.popup = popupNone
			m.err = userMessage(msg.err)
			return m, authFailed(msg.err)
		}
		m.detail = msg.detail
		return m, nil

	case checkMsg:
		if msg.kind == availability.Nickname {
			m.nickState = msg.state
		}
		return m, nil

	case nicknameDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.nickErr = msgNicknameFailed
			if text := userMessage(msg.err); strings.Contains(text, "이미") {
				m.nickErr = text
			}
			return m, authFailed(msg.err)
		}
		m.user = msg.user
		m = m.closePopup()
		m.notice = "닉네임을 변경했어요"
		s := m.deps.Session
		return m, func() tea.Msg { return authStateMsg{state: s.State()} }

	case deleteDoneMsg:
		if msg.err != nil {
			m.popup = popupNone
			m.err = userMessage(msg.err)
			return m, authFailed(msg.err)
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.notice = "복사하지 못했어요: " + msg.err.Error()
		} else {
			m.notice = "스크립트를 복사했어요"
		}
		return m, nil

	case tea.KeyMsg:
		m.notice = ""
		switch m.popup {
		case popupDetail:
			return m.updateDetail(msg)
		case popupNickname:
			return m.updateNickname(msg)
		case popupDelete:
			return m.updateDelete(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m historyModel) updateList(msg tea.KeyMsg) (historyModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < m.shown-1 {
			m.cursor++
			return m, nil
		}
		return m.showMore()
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if m.cursor < m.shown {
			m.popup = popupDetail
			m.detail = nil
			api, gen, id := m.deps.API, m.gen, m.items[m.cursor].ID
			return m, func() tea.Msg {
				d, err := api.GetChatSession(context.Background(), id)
				return detailLoadedMsg{scope: scope{gen: gen}, detail: d, err: err}
			}
		}
	case "n":
		m.popup = popupNickname
		m.nickInput = ""
		m.nickErr = ""
		m.nickState = availability.State{}
		m.nickCheck = checkerFor(availability.Nickname, m.deps, m.gen)
	case "d":
		m.popup = popupDelete
	case "r":
		m.loading = true
		return m, m.load(0)
	case "s":
		return m, navigateCmd(routeSetup)
	case "o":
		return m, logoutCmd(m.deps.Session)
	case "esc":
		return m, navigateCmd(auth.RouteHome)
	}
	return m, nil
}

// showMore reveals the next rows, fetching another page once the loaded rows run out.
func (m historyModel) showMore() (historyModel, tea.Cmd) {
	if m.shown < len(m.items) {
		m.shown = min(m.shown+historyShowStep, len(m.items))
		m.cursor++
		return m, nil
	}
	if m.more && !m.loading {
		m.loading = true
		return m, m.load(len(m.items))
	}
	return m, nil
}

func (m historyModel) updateDetail(msg tea.KeyMsg) (historyModel, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.popup = popupNone
		m.detail = nil
	case "c":
		if m.detail != nil {
			text, gen := transcriptText(m.detail), m.gen
			return m, func() tea.Msg {
				err := clipboard.WriteAll(text)
				return copiedMsg{scope: scope{gen: gen}, err: err}
			}
		}
	}
	return m, nil
}

func (m historyModel) updateNickname(msg tea.KeyMsg) (historyModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.closePopup(), nil
	case "enter":
		return m.submitNickname()
	}
	next := editRune(m.nickInput, msg.String())
	if next != m.nickInput {
		m.nickInput = next
		m.nickErr = ""
		m.nickCheck.Update(next)
	}
	return m, nil
}

func (m historyModel) submitNickname() (historyModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	if err := domain.ValidateNicknameChange(m.user.DisplayName(), m.nickInput); err != nil {
		m.nickErr = err.Error()
		return m, nil
	}
	if m.nickState.Checking || m.nickState.ErrorText() != "" || !checked(m.nickCheck, m.nickState) {
		m.nickErr = msgNicknameConfirm
		return m, nil
	}
	m.submitting = true
	s, gen, nick := m.deps.Session, m.gen, m.nickInput
	return m, func() tea.Msg {
		u, err := s.UpdateNickname(context.Background(), nick)
		return nicknameDoneMsg{scope: scope{gen: gen}, user: u, err: err}
	}
}

func (m historyModel) closePopup() historyModel {
	if m.nickCheck != nil {
		m.nickCheck.Close()
		m.nickCheck = nil
	}
	m.popup = popupNone
	return m
}

func (m historyModel) updateDelete(msg tea.KeyMsg) (historyModel, tea.Cmd) {
	switch msg.String() {
	case "y":
		s, gen := m.deps.Session, m.gen
		return m, func() tea.Msg {
			err := s.DeleteAccount(context.Background())
			return deleteDoneMsg{scope: scope{gen: gen}, err: err}
		}
	case "n", "esc":
		m.popup = popupNone
	}
	return m, nil
}

func (m historyModel) helpKeys() []string {
	switch m.popup {
	case popupDetail:
		return []string{helpEntry("c", "copy"), helpEntry("esc", "close")}
	case popupNickname:
		return []string{helpEntry("enter", "change"), helpEntry("esc", "cancel")}
	case popupDelete:
		return []string{helpEntry("y", "delete"), helpEntry("n", "cancel")}
	}
	return []string{
		helpEntry("j/k", "nav"), helpEntry("enter", "script"), helpEntry("n", "nickname"),
		helpEntry("s", "new chat"), helpEntry("d", "delete"), helpEntry("o", "logout"), helpEntry("q", "quit"),
	}
}

// speaker names the author of a transcript line.
func speaker(role string) string {
	switch role {
	case "assistant", "ai", "system":
		return "말랭이"
	}
	return "사용자"
}

// transcriptText renders a transcript as plain text for the clipboard.
func transcriptText(d *domain.ChatSessionDetail) string {
	var b strings.Builder
	b.WriteString(cleanTitle(d.Title) + "\n\n")
	for _, msg := range d.Messages {
		fmt.Fprintf(&b, "%s: %s\n", speaker(msg.Role), msg.Content)
	}
	return b.String()
}

func (m historyModel) View() string {
	switch m.popup {
	case popupDetail:
		return m.detailView()
	case popupNickname:
		return m.nicknameView()
	case popupDelete:
		return "\n" + popupStyle.Render("정말 탈퇴할까요?\n"+dimStyle.Render("대화 기록을 더 이상 볼 수 없어요.")+"\n\n"+
			helpEntry("y", "탈퇴하기")+"  "+helpEntry("n", "취소")) + "\n"
	}

	var b strings.Builder
	total, user := domain.Totals(m.items)
	b.WriteString("\n " + selectedStyle.Render(m.user.DisplayName()) + "  " + metaStyle.Render("n 닉네임 변경") + "\n")
	b.WriteString(" " + dimStyle.Render("말랭이와 함께한 시간 ") + accentStyle.Render(domain.FormatHours(total)) + "\n")
	b.WriteString(" " + dimStyle.Render("내가 말한 시간       ") + accentStyle.Render(domain.FormatHours(user)) + "\n\n")

	b.WriteString(" " + titleStyle.Render("대화 내역") + "\n\n")
	switch {
	case m.loading && len(m.items) == 0:
		b.WriteString(" " + dimStyle.Render("불러오는 중...") + "\n")
	case m.err != "" && len(m.items) == 0:
		b.WriteString(" " + errorStyle.Render(m.err) + "\n")
	case len(m.items) == 0:
		b.WriteString(" " + dimStyle.Render("대화 내역이 없습니다") + "\n")
	default:
		for i, it := range m.items[:m.shown] {
			line := fmt.Sprintf(" %-12s %-36s %s", it.Date, truncStr(cleanTitle(it.Title), 34), it.Duration)
			if i == m.cursor {
				b.WriteString(selectedRowBg.Render(selectedStyle.Render(line)) + "\n")
			} else {
				b.WriteString(normalStyle.Render(line) + "\n")
			}
		}
		if m.loading {
			b.WriteString(" " + dimStyle.Render("더 불러오는 중...") + "\n")
		} else if m.err != "" {
			b.WriteString(" " + errorStyle.Render(m.err) + "\n")
		}
	}
	if m.notice != "" {
		b.WriteString("\n " + okStyle.Render(m.notice) + "\n")
	}
	return b.String()
}

func (m historyModel) detailView() string {
	if m.detail == nil {
		return "\n " + dimStyle.Render("불러오는 중...")
	}
	d := m.detail
	var b strings.Builder
	b.WriteString(selectedStyle.Render("전문 스크립트") + "\n")
	b.WriteString(dimStyle.Render(cleanTitle(d.Title)) + "\n\n")
	if len(d.Messages) == 0 {
		b.WriteString(dimStyle.Render("대화 내용이 없습니다") + "\n")
	}
	for _, msg := range d.Messages {
		who := speaker(msg.Role)
		style := userStyle
		if who == "말랭이" {
			style = malangStyle
		}
		b.WriteString(style.Render(who) + "  " + normalStyle.Render(msg.Content) + "\n")
	}
	out := "\n" + popupStyle.Render(strings.TrimRight(b.String(), "\n")) + "\n"
	if m.notice != "" {
		out += " " + okStyle.Render(m.notice) + "\n"
	}
	return out
}

func (m historyModel) nicknameView() string {
	var b strings.Builder
	b.WriteString(selectedStyle.Render("닉네임 변경") + "\n\n")
	b.WriteString(dimStyle.Render("기존 닉네임   ") + normalStyle.Render(m.user.DisplayName()) + "\n")
	input := inputPlaceholderStyle.Render("새로운 닉네임을 입력해주세요")
	if m.nickInput != "" {
		input = normalStyle.Render(m.nickInput)
	}
	b.WriteString(dimStyle.Render("새로운 닉네임 ") + inputPromptStyle.Render("> ") + input + accentStyle.Render("█") + "\n")
	if line := checkLine(m.nickState, "사용 가능한 닉네임입니다"); line != "" {
		b.WriteString("              " + line + "\n")
	}
	if m.nickErr != "" {
		b.WriteString("\n" + errorStyle.Render(m.nickErr) + "\n")
	}
	if m.submitting {
		b.WriteString("\n" + buttonDisabledStyle.Render("변경 중...") + "\n")
	}
	return "\n" + popupStyle.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}
