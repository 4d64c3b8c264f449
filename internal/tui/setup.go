package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/malangee/malangee/internal/auth"
	"github.com/malangee/malangee/internal/prefs"
)

type setupStep int

const (
	stepSubtitles setupStep = iota
	stepVoice
)

// setupModel walks through the subtitle choice and the voice carousel
// before a conversation starts.
type setupModel struct {
	prefs     *prefs.Store
	step      setupStep
	subtitles bool
	voice     int
}

func newSetupModel(p *prefs.Store) setupModel {
	m := setupModel{prefs: p, subtitles: p.Subtitles()}
	cur := p.Voice()
	for i, v := range prefs.Voices {
		if v.ID == cur.ID {
			m.voice = i
		}
	}
	return m
}

func (m setupModel) Update(msg tea.Msg) (setupModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch m.step {
	case stepSubtitles:
		switch key.String() {
		case "h", "left", "k", "up", "l", "right", "j", "down":
			m.subtitles = !m.subtitles
		case "y":
			m.subtitles = true
		case "n":
			m.subtitles = false
		case "enter":
			m.prefs.SetSubtitles(m.subtitles)
			m.step = stepVoice
		case "esc":
			return m, navigateCmd(auth.RouteHome)
		}
	case stepVoice:
		n := len(prefs.Voices)
		switch key.String() {
		case "h", "left":
			m.voice = (m.voice + n - 1) % n
		case "l", "right":
			m.voice = (m.voice + 1) % n
		case "enter":
			m.prefs.SetVoice(prefs.Voices[m.voice].ID)
			return m, navigateCmd(routeConversation)
		case "esc":
			m.step = stepSubtitles
		}
	}
	return m, nil
}

func (m setupModel) helpKeys() []string {
	if m.step == stepVoice {
		return []string{helpEntry("h/l", "voice"), helpEntry("enter", "start"), helpEntry("esc", "back")}
	}
	return []string{helpEntry("h/l", "toggle"), helpEntry("enter", "next"), helpEntry("esc", "home")}
}

func option(label string, on bool) string {
	if on {
		return accentStyle.Render("● ") + selectedStyle.Render(label)
	}
	return dimStyle.Render("○ " + label)
}

func (m setupModel) View() string {
	var b strings.Builder
	if m.step == stepSubtitles {
		b.WriteString("\n " + selectedStyle.Render("대화 중에 자막을 볼까요?") + "\n")
		b.WriteString(" " + dimStyle.Render("말랭이가 하는 말을 글로 함께 보여드려요.") + "\n\n")
		b.WriteString("   " + option("자막 켜기", m.subtitles) + "    " + option("자막 끄기", !m.subtitles) + "\n")
		return b.String()
	}

	v := prefs.Voices[m.voice]
	b.WriteString("\n " + selectedStyle.Render("말랭이의 목소리를 골라주세요") + "\n\n")
	card := popupStyle.Render(selectedStyle.Render(v.Name) + "\n" + dimStyle.Render(v.Description))
	for _, line := range strings.Split(card, "\n") {
		b.WriteString("   " + line + "\n")
	}
	dots := make([]string, len(prefs.Voices))
	for i := range prefs.Voices {
		if i == m.voice {
			dots[i] = accentStyle.Render("●")
		} else {
			dots[i] = metaStyle.Render("○")
		}
	}
	b.WriteString("\n   " + dimStyle.Render("‹ ") + strings.Join(dots, " ") + dimStyle.Render(" ›"))
	b.WriteString("  " + metaStyle.Render(fmt.Sprintf("%d/%d", m.voice+1, len(prefs.Voices))) + "\n")
	return b.String()
}
