package browser

import (
	"runtime"
	"testing"
)

func TestOpen(t *testing.T) {
	var gotName string
	var gotArgs []string
	orig := start
	start = func(name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}
	t.Cleanup(func() { start = orig })

	if err := Open("http://localhost:3000/chat-history"); err != nil {
		if runtime.GOOS != "darwin" && runtime.GOOS != "linux" && runtime.GOOS != "windows" {
			t.Skipf("unsupported OS: %v", err)
		}
		t.Fatalf("Open() error: %v", err)
	}
	if gotName == "" {
		t.Fatal("opener was not started")
	}
	if last := gotArgs[len(gotArgs)-1]; last != "http://localhost:3000/chat-history" {
		t.Errorf("url arg = %q", last)
	}
}

func TestOpen_RejectsNonHTTP(t *testing.T) {
	for _, u := range []string{"file:///etc/passwd", "javascript:alert(1)", "", "http://"} {
		if err := Open(u); err == nil {
			t.Errorf("Open(%q) expected error", u)
		}
	}
}

func TestPageURL(t *testing.T) {
	tests := []struct{ base, route, want string }{
		{"http://localhost:3000", "/chat-history", "http://localhost:3000/chat-history"},
		{"http://localhost:3000/", "auth/login", "http://localhost:3000/auth/login"},
		{"https://malangee.io", "/", "https://malangee.io/"},
	}
	for _, tt := range tests {
		if got := PageURL(tt.base, tt.route); got != tt.want {
			t.Errorf("PageURL(%q, %q) = %q, want %q", tt.base, tt.route, got, tt.want)
		}
	}
}
