package tui

import (
	"math/rand/v2"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/malangee/malangee/internal/prefs"
)

type convState int

const (
	convAISpeaking convState = iota
	convUserTurn
	convUserSpeaking
)

func (s convState) String() string {
	switch s {
	case convAISpeaking:
		return "ai-speaking"
	case convUserTurn:
		return "user-turn"
	default:
		return "user-speaking"
	}
}

// Simulated conversation pacing.
const (
	firstTurnDelay = 3 * time.Second
	replyDelay     = 300 * time.Millisecond
	nextTurnDelay  = 4 * time.Second
	idleDelay      = 15 * time.Second
	waitDelay      = 5 * time.Second
)

// Durations recorded when a conversation ends.
const (
	simulatedTotalSec = 240
	simulatedUserSec  = 150
)

const (
	openingMessage = "Hello! How are you today?"
	hintMessage    = "Try saying: I'm doing great, thanks for asking!"
	idleMessage    = "말랭이가 대답을 기다리고 있어요. Cheer up!"
)

var aiResponses = []string{
	"That's wonderful to hear! What brings you here today?",
	"Great! Tell me more about yourself.",
	"Nice! How can I help you practice English?",
}

type timerKind int

const (
	timerUserTurn timerKind = iota
	timerReply
	timerIdle
	timerWait
)

// convTimerMsg fires a scheduled step. seq must match the model's current
// sequence for the timer family, otherwise the timer was superseded.
type convTimerMsg struct {
	scope
	kind timerKind
	seq  int
}

type convPopup int

const (
	convPopupNone convPopup = iota
	convPopupWait
	convPopupEnd
)

// convModel simulates a voice conversation with the tutor.
type convModel struct {
	prefs *prefs.Store
	gen   int
	rng   func(n int) int

	state     convState
	aiMessage string
	showHint  bool
	subtitles bool
	muted     bool
	idle      bool
	popup     convPopup

	turnSeq int // timerUserTurn, timerReply
	idleSeq int // timerIdle, timerWait
}

// newConvModel starts a conversation. rng picks a reply index; nil uses math/rand.
func newConvModel(p *prefs.Store, gen int, rng func(n int) int) convModel {
	if rng == nil {
		rng = rand.IntN
	}
	return convModel{
		prefs:     p,
		gen:       gen,
		rng:       rng,
		state:     convAISpeaking,
		aiMessage: openingMessage,
		subtitles: p.Subtitles(),
	}
}

func (m convModel) Init() tea.Cmd {
	return m.after(firstTurnDelay, timerUserTurn, m.turnSeq)
}

func (m convModel) after(d time.Duration, kind timerKind, seq int) tea.Cmd {
	gen := m.gen
	return tea.Tick(d, func(time.Time) tea.Msg {
		return convTimerMsg{scope: scope{gen: gen}, kind: kind, seq: seq}
	})
}

// startIdle arms the inactivity timer, superseding any pending one.
func (m convModel) startIdle() (convModel, tea.Cmd) {
	m.idleSeq++
	return m, m.after(idleDelay, timerIdle, m.idleSeq)
}

// resetIdle cancels the inactivity and wait timers.
func (m convModel) resetIdle() convModel {
	m.idleSeq++
	m.idle = false
	return m
}

func (m convModel) Update(msg tea.Msg) (convModel, tea.Cmd) {
	switch msg := msg.(type) {
	case convTimerMsg:
		return m.fire(msg)
	case tea.KeyMsg:
		if m.popup != convPopupNone {
			return m.updatePopup(msg)
		}
		switch msg.String() {
		case " ", "enter":
			return m.micClick()
		case "?":
			if m.state == convUserTurn {
				m.showHint = !m.showHint
			}
		case "s":
			m.subtitles = !m.subtitles
			m.prefs.SetSubtitles(m.subtitles)
		case "m":
			m.muted = !m.muted
		case "e":
			m.popup = convPopupEnd
		}
	}
	return m, nil
}

func (m convModel) fire(msg convTimerMsg) (convModel, tea.Cmd) {
	switch msg.kind {
	case timerUserTurn:
		if msg.seq != m.turnSeq {
			return m, nil
		}
		m.state = convUserTurn
		return m.startIdle()
	case timerReply:
		if msg.seq != m.turnSeq {
			return m, nil
		}
		m.state = convAISpeaking
		m.aiMessage = aiResponses[m.rng(len(aiResponses))]
		return m, m.after(nextTurnDelay, timerUserTurn, m.turnSeq)
	case timerIdle:
		if msg.seq != m.idleSeq {
			return m, nil
		}
		m.idle = true
		m.state = convUserTurn
		return m, m.after(waitDelay, timerWait, m.idleSeq)
	case timerWait:
		if msg.seq != m.idleSeq {
			return m, nil
		}
		m.popup = convPopupWait
	}
	return m, nil
}

func (m convModel) micClick() (convModel, tea.Cmd) {
	if m.state == convAISpeaking {
		return m, nil
	}
	m = m.resetIdle()
	switch m.state {
	case convUserTurn:
		m.state = convUserSpeaking
		m.showHint = false
	case convUserSpeaking:
		m.turnSeq++
		return m, m.after(replyDelay, timerReply, m.turnSeq)
	}
	return m, nil
}

func (m convModel) updatePopup(msg tea.KeyMsg) (convModel, tea.Cmd) {
	switch msg.String() {
	case "y", "e":
		return m, m.finish()
	case "n", "c", "esc", "enter":
		m.popup = convPopupNone
		m = m.resetIdle()
		return m.startIdle()
	}
	return m, nil
}

// finish records the conversation durations and moves to the summary.
func (m convModel) finish() tea.Cmd {
	m.prefs.SaveDurations(prefs.Durations{TotalSec: simulatedTotalSec, UserSec: simulatedUserSec})
	return navigateCmd(routeComplete)
}

func (m convModel) statusText() string {
	if m.idle {
		return idleMessage
	}
	switch m.state {
	case convAISpeaking:
		return "말랭이가 말하는 중..."
	case convUserTurn:
		return "당신의 차례예요"
	default:
		return "듣는 중..."
	}
}

func (m convModel) helpKeys() []string {
	switch m.popup {
	case convPopupEnd:
		return []string{helpEntry("y", "end"), helpEntry("n", "continue")}
	case convPopupWait:
		return []string{helpEntry("c", "continue"), helpEntry("e", "end")}
	}
	keys := []string{helpEntry("space", "mic")}
	if m.state == convUserTurn {
		keys = append(keys, helpEntry("?", "hint"))
	}
	return append(keys, helpEntry("s", "subtitles"), helpEntry("m", "mute"), helpEntry("e", "end"), helpEntry("q", "quit"))
}

func (m convModel) View() string {
	var b strings.Builder
	b.WriteString("\n   " + malangStyle.Render("( ˘ ᵕ ˘ )") + "  " + metaStyle.Render(m.prefs.Voice().Name) + "\n\n")

	if m.subtitles {
		b.WriteString("   " + normalStyle.Render(m.aiMessage) + "\n")
	} else {
		b.WriteString("   " + metaStyle.Render("(자막 꺼짐)") + "\n")
	}

	if m.state == convUserTurn {
		if m.showHint {
			b.WriteString("   " + hintStyle.Render(hintMessage) + "\n")
		} else {
			b.WriteString("   " + metaStyle.Render("Lost your words? (? for a hint)") + "\n")
		}
	} else {
		b.WriteString("\n")
	}

	b.WriteString("\n   " + stateStyle(m.state).Render(m.statusText()) + "\n\n")

	mic := "🎤 mic off"
	if m.state == convUserSpeaking {
		mic = "🎤 listening"
	}
	if m.muted {
		mic += " (muted)"
	}
	b.WriteString("   " + dimStyle.Render(mic) + "\n")

	switch m.popup {
	case convPopupEnd:
		b.WriteString("\n" + popupStyle.Render("대화를 종료할까요?\n\n"+helpEntry("y", "종료")+"  "+helpEntry("n", "계속하기")) + "\n")
	case convPopupWait:
		b.WriteString("\n" + popupStyle.Render("말랭이가 기다리고 있어요.\n대화를 계속할까요?\n\n"+helpEntry("c", "계속하기")+"  "+helpEntry("e", "그만하기")) + "\n")
	}
	return b.String()
}
