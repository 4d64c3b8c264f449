package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/malangee/malangee/pkg/domain"
)

// SupportedAPIVersion is the backend API version this client was built against.
const SupportedAPIVersion = "1.0.0"

// serverCheckMsg carries the result of the background backend version check.
type serverCheckMsg struct {
	info   *domain.ServerInfo
	notice string
}

type serverInfoer interface {
	ServerInfo(ctx context.Context) (*domain.ServerInfo, error)
}

// checkServer asks the backend for its API version without blocking startup.
// A newer major or minor version yields a notice; failures are silent since
// every other request will surface connectivity problems on its own.
func checkServer(api serverInfoer, current string) tea.Cmd {
	if api == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		info, err := api.ServerInfo(ctx)
		if err != nil || info == nil {
			return serverCheckMsg{}
		}
		return serverCheckMsg{info: info, notice: ServerNotice(info, current)}
	}
}

// ServerNotice warns when the backend reports a newer API than
// SupportedAPIVersion. It returns "" otherwise.
func ServerNotice(info *domain.ServerInfo, current string) string {
	if info == nil || !isNewerVersion(info.Version, SupportedAPIVersion) {
		return ""
	}
	return fmt.Sprintf("server API v%s is newer than this client (%s)", strings.TrimPrefix(info.Version, "v"), displayVersion(current))
}

func displayVersion(v string) string {
	if v == "" {
		return "dev"
	}
	return v
}

// isNewerVersion returns true if latest is a newer semver than current.
func isNewerVersion(latest, current string) bool {
	parse := func(v string) (int, int, int) {
		v = strings.TrimPrefix(v, "v")
		parts := strings.SplitN(v, ".", 3)
		atoi := func(s string) int {
			n, _ := strconv.Atoi(s) //nolint:errcheck
			return n
		}
		var maj, min, patch int
		if len(parts) > 0 {
			maj = atoi(parts[0])
		}
		if len(parts) > 1 {
			min = atoi(parts[1])
		}
		if len(parts) > 2 {
			patch = atoi(parts[2])
		}
		return maj, min, patch
	}
	lMaj, lMin, lPatch := parse(latest)
	cMaj, cMin, cPatch := parse(current)
	if lMaj != cMaj {
		return lMaj > cMaj
	}
	if lMin != cMin {
		return lMin > cMin
	}
	return lPatch > cPatch
}
