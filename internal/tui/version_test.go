package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/malangee/malangee/pkg/domain"
)

func TestIsNewerVersion(t *testing.T) {
	tests := []struct {
		latest  string
		current string
		want    bool
	}{
		{"1.0.1", "1.0.0", true},
		{"1.1.0", "1.0.0", true},
		{"2.0.0", "1.9.9", true},
		{"v1.0.1", "v1.0.0", true},
		{"1.0.0", "1.0.0", false},
		{"1.0.0", "1.0.1", false},
		{"0.9.0", "1.0.0", false},
		{"dev", "dev", false},
		{"v0.5.0", "0.4.2", true},
	}

	for _, tc := range tests {
		t.Run(tc.latest+"_vs_"+tc.current, func(t *testing.T) {
			got := isNewerVersion(tc.latest, tc.current)
			if got != tc.want {
				t.Errorf("isNewerVersion(%q, %q) = %v, want %v", tc.latest, tc.current, got, tc.want)
			}
		})
	}
}

type stubInfo struct {
	info *domain.ServerInfo
	err  error
}

func (s stubInfo) ServerInfo(context.Context) (*domain.ServerInfo, error) {
	return s.info, s.err
}

func TestCheckServer(t *testing.T) {
	if cmd := checkServer(nil, "dev"); cmd != nil {
		t.Error("expected nil cmd without an API")
	}

	msg := checkServer(stubInfo{info: &domain.ServerInfo{Version: "1.0.0"}}, "0.3.0")().(serverCheckMsg)
	if msg.notice != "" {
		t.Errorf("expected no notice for matching version, got %q", msg.notice)
	}
	if msg.info == nil || msg.info.Version != "1.0.0" {
		t.Errorf("info = %+v", msg.info)
	}

	msg = checkServer(stubInfo{info: &domain.ServerInfo{Version: "1.2.0"}}, "")().(serverCheckMsg)
	if !strings.Contains(msg.notice, "v1.2.0") || !strings.Contains(msg.notice, "dev") {
		t.Errorf("notice = %q", msg.notice)
	}

	msg = checkServer(stubInfo{err: errors.New("connection refused")}, "0.3.0")().(serverCheckMsg)
	if msg.notice != "" || msg.info != nil {
		t.Errorf("expected empty msg on error, got %+v", msg)
	}
}
