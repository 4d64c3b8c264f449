package main

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/malangee/malangee/pkg/client"
	"github.com/malangee/malangee/pkg/domain"
)

var (
	errNotLoggedIn    = errors.New("로그인이 필요합니다. malangee login 을 실행해주세요")
	errSessionExpired = errors.New("로그인이 만료되었습니다. malangee login 으로 다시 로그인해주세요")
)

var malangGreetings = [...]string{
	"Hi there! Ready for a little small talk?",
	"말랭이가 기다리고 있었어요. 오늘은 어떤 이야기를 해볼까요?",
	"Ordering coffee, asking for directions, chatting about the weekend. Pick one!",
	"하루 5분만 말해봐도 달라져요.",
	"Mistakes are welcome here. Malang never judges.",
	"오늘도 영어로 한 마디, 어때요?",
}

var (
	wordmarkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b5cf6")).Bold(true)
	quoteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	attribStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#c4b5fd"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle    = lipgloss.NewStyle().Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#34d474"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#d4a844"))
)

func wordmark() string {
	return wordmarkStyle.Render("M A L A N G E E")
}

// printGreeting prints the wordmark with a random line from Malang.
func printGreeting(w io.Writer, hint string) {
	msg := malangGreetings[rand.IntN(len(malangGreetings))]
	fmt.Fprintf(w, "\n  %s\n\n  %s\n  %s\n\n  %s\n\n", //nolint:errcheck
		wordmark(), quoteStyle.Render(msg), attribStyle.Render("— 말랭이"), labelStyle.Render(hint))
}

// cliError drops the wrapping of API errors so the user sees the backend's
// message rather than the call chain.
func cliError(err error) error {
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		return errors.New(httpErr.Message)
	}
	var netErr *client.NetworkError
	if errors.As(err, &netErr) {
		return netErr
	}
	return err
}

func row(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-10s", label)), valueStyle.Render(value)) //nolint:errcheck
}

// formatUser renders the profile block shown by whoami and login.
func formatUser(w io.Writer, u *domain.User, exp time.Time, hasExp bool, now time.Time) {
	fmt.Fprintf(w, "\n  %s\n\n", wordmark()) //nolint:errcheck
	row(w, "닉네임", u.DisplayName())
	row(w, "아이디", u.LoginID)
	if hasExp {
		left := exp.Sub(now).Round(time.Minute)
		value := exp.Local().Format("2006-01-02 15:04")
		if left > 0 {
			value += fmt.Sprintf(" (%s 남음)", left)
		} else {
			value += " (만료됨)"
		}
		row(w, "토큰 만료", value)
	}
	fmt.Fprintln(w) //nolint:errcheck
}

// formatHistory renders the totals header and one line per session.
func formatHistory(w io.Writer, items []domain.HistoryItem) {
	total, user := domain.Totals(items)
	fmt.Fprintln(w) //nolint:errcheck
	row(w, "함께한 시간", domain.FormatHours(total))
	row(w, "내가 말한 시간", domain.FormatHours(user))
	fmt.Fprintln(w) //nolint:errcheck
	if len(items) == 0 {
		fmt.Fprintf(w, "  %s\n\n", labelStyle.Render("대화 내역이 없습니다")) //nolint:errcheck
		return
	}
	for _, it := range items {
		fmt.Fprintf(w, "  %-12s %-40s %s\n", it.Date, it.Title, it.Duration) //nolint:errcheck
	}
	fmt.Fprintln(w) //nolint:errcheck
}
