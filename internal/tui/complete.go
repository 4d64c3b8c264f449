package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/malangee/malangee/internal/auth"
	"github.com/malangee/malangee/internal/prefs"
	"github.com/malangee/malangee/pkg/domain"
)

type completeModel struct {
	durations prefs.Durations
}

func newCompleteModel(d prefs.Durations) completeModel {
	return completeModel{durations: d}
}

func (m completeModel) Update(msg tea.Msg) (completeModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "h":
			return m, navigateCmd(routeHistory)
		case "enter", "esc":
			return m, navigateCmd(auth.RouteHome)
		}
	}
	return m, nil
}

func (m completeModel) View() string {
	var b strings.Builder
	b.WriteString("\n   " + malangStyle.Render("( ˘ ᵕ ˘ )") + "\n\n")
	b.WriteString(" " + selectedStyle.Render("오늘도 잘 해냈어요!") + "\n\n")
	b.WriteString(" " + dimStyle.Render("말랭이와 함께한 시간  ") + accentStyle.Render(domain.FormatSpoken(m.durations.TotalSec)) + "\n")
	b.WriteString(" " + dimStyle.Render("내가 말한 시간        ") + accentStyle.Render(domain.FormatSpoken(m.durations.UserSec)) + "\n")
	return b.String()
}
