package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/malangee/malangee/internal/auth"
)

// Shimmer animation for the MalangEE logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "MalangEE" as a flowing wave of violet light.
// Deep indigo (#2e2666) -> bright lavender (#b4a8ff).
func renderShimmerLogo(frame int) string {
	const text = "MalangEE"
	n := len(text)

	var out string
	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)

		tide := math.Sin(t*0.035) * 0.12
		b = b*0.75 + tide + 0.18

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(46 + b*(180-46))
		g := clampByte(38 + b*(168-38))
		bl := clampByte(102 + b*(255-102))

		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(color))
		out += s.Render(string(text[i]))

		if i < n-1 {
			out += " "
		}
	}

	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	// Base styles
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8c88a8"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f1efff")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c9c5e0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5c5878"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8c88a8"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5c5878"))

	// Accent / action styles
	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7b6cf6"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1f1c2b")).
			Background(lipgloss.Color("#b4a8ff")).
			Bold(true).
			Padding(0, 1)

	// Speaker styles (conversation + transcript)
	malangStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7b6cf6")).
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5f51d9")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844")).
			Italic(true)

	// Field feedback
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4ade80"))

	checkingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#60a0e0"))

	// Inputs
	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#7b6cf6")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#3c3852"))

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f1efff")).
			Background(lipgloss.Color("#7b6cf6")).
			Bold(true).
			Padding(0, 2)

	buttonDisabledStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#5c5878")).
				Background(lipgloss.Color("#1e1c2a")).
				Padding(0, 2)

	// Popups
	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7b6cf6")).
			Padding(1, 2)

	// Selected row background
	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e1c2a"))
)

// stateStyle colors the conversation status pill.
func stateStyle(s convState) lipgloss.Style {
	switch s {
	case convAISpeaking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#60a0e0")).Bold(true)
	case convUserSpeaking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80")).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#c9c5e0"))
	}
}

// phaseStyle colors the auth phase badge in the header.
func phaseStyle(p auth.Phase) lipgloss.Style {
	switch p {
	case auth.PhaseAuthenticated:
		return okStyle
	case auth.PhaseChecking:
		return checkingStyle
	default:
		return metaStyle
	}
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpBar joins entries into a help line.
func helpBar(entries ...string) string {
	return " " + strings.Join(entries, "  ")
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	route auth.Route
}

var helpItems = []helpItem{
	{"웹에서 로그인", auth.RouteLogin},
	{"웹에서 대화 시작", auth.RouteHome},
	{"웹에서 대화 기록", routeHistory},
}

// helpView renders the interactive help overlay with a cursor.
func helpView(cursor int, webURL string) string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#b4a8ff")).
		Bold(true).
		Render("M a l a n g E E")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(`"말랭이랑 영어로 편하게 이야기해요."`)

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	selStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#b4a8ff"))
	linkDescStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	commands := []struct{ cmd, desc string }{
		{"malangee", "터미널 앱 실행"},
		{"malangee login", "아이디/비밀번호로 로그인"},
		{"malangee signup", "회원가입"},
		{"malangee whoami", "현재 사용자와 토큰 만료 시각"},
		{"malangee history", "대화 기록 출력"},
		{"malangee logout", "로그아웃"},
		{"malangee version", "버전 확인"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n  %s\n\n", title, quote)

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Links (enter to open)"))
	for i, item := range helpItems {
		label := cmdStyle.Render(padRight(item.label, 20))
		prefix := "    "
		if i == cursor {
			label = selStyle.Render(padRight(item.label, 20))
			prefix = "  > "
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, linkDescStyle.Render(strings.TrimRight(webURL, "/")+string(item.route)))
	}
	return b.String()
}

// padRight pads s with spaces to width terminal cells.
func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// center pads s so it sits in the middle of width cells.
func center(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}
